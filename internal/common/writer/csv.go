package writer

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/chikocharles/job-scraper/internal/domain"
)

var csvHeader = []string{
	"title", "company", "location", "expiry_date",
	"description", "category", "source", "apply_email",
}

func (w *Writer) writeCSV(path string, jobs []*domain.Job) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, job := range jobs {
		row := []string{
			job.Title,
			job.Company,
			job.Location,
			job.Expiry.Format(domain.DisplayDate),
			job.Description,
			job.Category,
			string(job.Source),
			job.ApplyEmail,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
