package writer

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/chikocharles/job-scraper/internal/domain"
)

type jsonJob struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Category    string `json:"category"`
	SourceSite  string `json:"sourceSite"`
	ApplyEmail  string `json:"applyEmail"`
	ClosingDate string `json:"closingDate"`
}

func (w *Writer) writeJSON(path string, jobs []*domain.Job) error {
	payload := make([]jsonJob, 0, len(jobs))
	for _, job := range jobs {
		payload = append(payload, jsonJob{
			ID:          job.ID,
			Title:       job.Title,
			Company:     job.Company,
			Location:    job.Location,
			Description: job.Description,
			Category:    job.Category,
			SourceSite:  string(job.Source),
			ApplyEmail:  job.ApplyEmail,
			ClosingDate: job.Expiry.Format(domain.DisplayDate),
		})
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal jobs: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
