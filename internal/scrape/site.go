package scrape

import (
	"github.com/chikocharles/job-scraper/internal/common/parser"
	"github.com/chikocharles/job-scraper/internal/domain"
)

// Site describes one job board: where its listing pages live and how to
// read them. Site packages under internal/module export one of these.
type Site struct {
	Source  domain.JobSource
	BaseURL string

	// PageURL returns the listing URL for a 1-based page number.
	// PageURL(1) must equal BaseURL.
	PageURL func(page int) string

	Selectors parser.Selectors

	// IDPrefix keys generated job IDs ("VM", "JZ", "ZJ").
	IDPrefix string

	// UserAgent overrides the fetcher default; some boards reject
	// non-browser agents.
	UserAgent string

	// DefaultLocation fills the location field when a card shows none.
	DefaultLocation string

	// HasEmails marks boards whose detail pages expose application
	// addresses. FallbackEmail is used when extraction is off, fails,
	// or the board never publishes addresses.
	HasEmails     bool
	FallbackEmail string
}
