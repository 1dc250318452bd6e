package scrape

import (
	"sort"

	"github.com/chikocharles/job-scraper/internal/domain"
)

// Summarize fills the per-field breakdowns of s from the kept jobs.
// Entries are sorted by count descending, key ascending on ties, so the
// output is stable across runs.
func Summarize(s *domain.Summary, jobs []*domain.Job) {
	locations := make([]string, 0, len(jobs))
	dates := make([]string, 0, len(jobs))
	categories := make([]string, 0, len(jobs))
	for _, job := range jobs {
		locations = append(locations, job.Location)
		dates = append(dates, job.Expiry.Format(domain.DisplayDate))
		categories = append(categories, job.Category)
	}
	s.ByLocation = breakdown(locations)
	s.ByExpiryDate = breakdown(dates)
	s.ByCategory = breakdown(categories)
}

// TopN returns the leading n entries of a breakdown.
func TopN(entries []domain.KeyCount, n int) []domain.KeyCount {
	if len(entries) <= n {
		return entries
	}
	return entries[:n]
}

func breakdown(values []string) []domain.KeyCount {
	counts := make(map[string]int)
	for _, v := range values {
		if v == "" {
			continue
		}
		counts[v]++
	}
	out := make([]domain.KeyCount, 0, len(counts))
	for k, c := range counts {
		out = append(out, domain.KeyCount{Key: k, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}
