package module

import (
	"context"

	"github.com/chikocharles/job-scraper/internal/domain"
)

// PageHandler is called after every listing page with that page's outcome,
// successful or not. Returning an error aborts the crawl.
type PageHandler func(res *domain.PageResult) error

// Crawler is the common interface for all site crawlers.
type Crawler interface {
	// Crawl walks the site's listing pages and returns the jobs that
	// survived the expiry filter, together with the run statistics.
	Crawl(ctx context.Context) ([]*domain.Job, *domain.Summary, error)
	// Source returns the site identifier.
	Source() domain.JobSource
}
