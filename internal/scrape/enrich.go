package scrape

import (
	"context"
	"regexp"

	"github.com/chikocharles/job-scraper/internal/common/cleaner"
	"github.com/chikocharles/job-scraper/internal/domain"
)

var emailRe = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

// enrichEmails visits each kept job's detail page and replaces the
// fallback ApplyEmail with the first address found in the page text.
// Detail fetches are paced separately from listing fetches; failures
// leave the fallback in place.
func (e *Engine) enrichEmails(ctx context.Context, jobs []*domain.Job) {
	pacer := NewPacer(e.cfg.DetailDelay)
	for _, job := range jobs {
		if job.URL == "" {
			continue
		}
		if err := pacer.Wait(ctx); err != nil {
			return
		}
		body, err := e.fetcher.Fetch(ctx, job.URL)
		if err != nil {
			e.log.Warn("detail page skipped", "url", job.URL, "error", err)
			continue
		}
		if email := firstEmail(body, e.clean); email != "" {
			job.ApplyEmail = email
		}
	}
}

// firstEmail scans the visible text of a page for an e-mail address.
// Markup is stripped first so addresses inside scripts are ignored.
func firstEmail(markup []byte, clean *cleaner.Cleaner) string {
	text := clean.StripHTML(string(markup))
	return emailRe.FindString(text)
}
