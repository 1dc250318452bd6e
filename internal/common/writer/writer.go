package writer

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/chikocharles/job-scraper/internal/domain"
)

// Writer persists kept jobs as CSV and JSON. Each run produces a timestamped
// pair plus fixed "latest" copies that downstream consumers can point at.
type Writer struct {
	dir        string
	latestCSV  string
	latestJSON string
	log        *slog.Logger
	now        func() time.Time
}

// Config holds the output locations. Zero values fall back to defaults.
type Config struct {
	Dir        string
	LatestCSV  string
	LatestJSON string
}

func NewWriter(cfg Config, log *slog.Logger) *Writer {
	if cfg.Dir == "" {
		cfg.Dir = "."
	}
	if cfg.LatestCSV == "" {
		cfg.LatestCSV = "scraped_data.csv"
	}
	if cfg.LatestJSON == "" {
		cfg.LatestJSON = "scraped_data.json"
	}
	if log == nil {
		log = slog.Default()
	}
	return &Writer{
		dir:        cfg.Dir,
		latestCSV:  cfg.LatestCSV,
		latestJSON: cfg.LatestJSON,
		log:        log,
		now:        time.Now,
	}
}

// WriteAll writes all four output files and returns the paths that were
// persisted. A failed latest copy is only logged; the whole previous run's
// copy simply stays in place. The returned error is non-nil only when not a
// single file could be written.
func (w *Writer) WriteAll(jobs []*domain.Job) ([]string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	stamp := w.now().Format("20060102_150405")
	targets := []struct {
		path   string
		write  func(string, []*domain.Job) error
		latest bool
	}{
		{filepath.Join(w.dir, "scraped_data_"+stamp+".csv"), w.writeCSV, false},
		{filepath.Join(w.dir, "scraped_data_"+stamp+".json"), w.writeJSON, false},
		{filepath.Join(w.dir, w.latestCSV), w.writeCSV, true},
		{filepath.Join(w.dir, w.latestJSON), w.writeJSON, true},
	}

	var written []string
	var firstErr error
	for _, t := range targets {
		if err := t.write(t.path, jobs); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			if t.latest {
				w.log.Warn("latest copy not updated", "path", t.path, "error", err)
			} else {
				w.log.Error("output file failed", "path", t.path, "error", err)
			}
			continue
		}
		written = append(written, t.path)
	}

	if len(written) == 0 {
		return nil, fmt.Errorf("no output written: %w", firstErr)
	}
	return written, nil
}
