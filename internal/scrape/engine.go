package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/chikocharles/job-scraper/internal/common/cleaner"
	"github.com/chikocharles/job-scraper/internal/common/fetcher"
	"github.com/chikocharles/job-scraper/internal/common/normalizer"
	"github.com/chikocharles/job-scraper/internal/common/parser"
	"github.com/chikocharles/job-scraper/internal/domain"
	"github.com/chikocharles/job-scraper/internal/module"
)

// Config holds the crawl knobs shared by all sites.
type Config struct {
	MaxPages          int
	ProbePageLimit    int
	FullPageThreshold int
	RequestDelay      time.Duration
	DetailDelay       time.Duration
	TestMode          bool
	EnrichEmails      bool
}

func (c Config) withDefaults() Config {
	if c.MaxPages <= 0 {
		c.MaxPages = 50
	}
	if c.ProbePageLimit <= 0 {
		c.ProbePageLimit = 50
	}
	if c.FullPageThreshold <= 0 {
		c.FullPageThreshold = 10
	}
	if c.RequestDelay <= 0 {
		c.RequestDelay = time.Second
	}
	if c.DetailDelay <= 0 {
		c.DetailDelay = 500 * time.Millisecond
	}
	return c
}

// Engine crawls one site: pagination discovery, record extraction, expiry
// filtering and summary building.
type Engine struct {
	site    Site
	fetcher fetcher.Fetcher
	parser  *parser.ListingParser
	clean   *cleaner.Cleaner
	cfg     Config
	log     *slog.Logger
	today   time.Time
	now     func() time.Time
	onPage  module.PageHandler
}

var _ module.Crawler = (*Engine)(nil)

// NewEngine builds an engine for one site. today fixes the date the expiry
// filter compares against; the zero value means the current date.
func NewEngine(site Site, f fetcher.Fetcher, cfg Config, log *slog.Logger, today time.Time) *Engine {
	if log == nil {
		log = slog.Default()
	}
	clean := cleaner.NewCleaner()
	e := &Engine{
		site:    site,
		fetcher: f,
		parser:  parser.New(clean),
		clean:   clean,
		cfg:     cfg.withDefaults(),
		log:     log.With("source", site.Source),
		today:   today,
		now:     time.Now,
	}
	if e.today.IsZero() {
		e.today = e.now()
	}
	return e
}

// OnPage registers a callback invoked after every listing page.
func (e *Engine) OnPage(h module.PageHandler) {
	e.onPage = h
}

// Source returns the site identifier.
func (e *Engine) Source() domain.JobSource {
	return e.site.Source
}

// Crawl walks the site's listing pages and returns the jobs that survived
// the expiry filter, together with the run statistics. Only a first-page
// fetch failure is fatal; later pages degrade to warnings.
func (e *Engine) Crawl(ctx context.Context) ([]*domain.Job, *domain.Summary, error) {
	summary := &domain.Summary{Source: e.site.Source}

	// One pacer spans the whole crawl. Waiting here consumes its free
	// first slot, so the page 1 to page 2 transition is paced too.
	pacer := NewPacer(e.cfg.RequestDelay)
	if err := pacer.Wait(ctx); err != nil {
		return nil, nil, err
	}
	body, err := e.fetcher.Fetch(ctx, e.site.PageURL(1))
	if err != nil {
		return nil, nil, fmt.Errorf("fetch first page: %w", err)
	}
	raw, err := e.parser.Parse(body, e.site.Selectors, 1)
	if err != nil {
		e.log.Warn("first page did not parse", "error", err)
		raw = nil
	}
	summary.PagesVisited = 1
	all := raw
	if err := e.emit(&domain.PageResult{Page: 1, Jobs: raw}); err != nil {
		return nil, nil, err
	}

	total := parser.EstimatePages(body)
	probe := total == 0 || (total == 1 && len(raw) >= e.cfg.FullPageThreshold)
	e.log.Info("first page scanned", "records", len(raw), "estimated_pages", total, "probe", probe)

	var crawlErr error
	switch {
	case e.cfg.TestMode:
		e.log.Info("test mode, stopping after first page")
	case probe:
		crawlErr = e.probePages(ctx, pacer, summary, &all)
	default:
		crawlErr = e.countPages(ctx, pacer, total, summary, &all)
	}
	if crawlErr != nil {
		return nil, nil, crawlErr
	}

	jobs := e.filter(all, summary)
	if e.cfg.EnrichEmails && e.site.HasEmails {
		e.enrichEmails(ctx, jobs)
	}
	summary.Kept = len(jobs)
	Summarize(summary, jobs)

	e.log.Info("crawl finished",
		"pages", summary.PagesVisited,
		"found", summary.Found,
		"kept", summary.Kept,
		"expired", summary.Expired,
		"unparsable", summary.Unparsable)
	return jobs, summary, nil
}

// countPages walks pages 2..total when the page count is known. Failed or
// empty pages never stop the loop; the count is trusted.
func (e *Engine) countPages(ctx context.Context, pacer *Pacer, total int, summary *domain.Summary, all *[]*domain.RawJob) error {
	last := min(total, e.cfg.MaxPages)
	if total > e.cfg.MaxPages {
		e.log.Warn("page count capped", "estimated", total, "max_pages", e.cfg.MaxPages)
	}
	for page := 2; page <= last; page++ {
		if err := pacer.Wait(ctx); err != nil {
			return err
		}
		summary.PagesVisited++
		jobs, err := e.fetchPage(ctx, page)
		if err != nil {
			e.log.Warn("page skipped", "page", page, "error", err)
			if err := e.emit(&domain.PageResult{Page: page, Err: err}); err != nil {
				return err
			}
			continue
		}
		e.log.Debug("page fetched", "page", page, "records", len(jobs))
		*all = append(*all, jobs...)
		if err := e.emit(&domain.PageResult{Page: page, Jobs: jobs}); err != nil {
			return err
		}
	}
	return nil
}

// probePages walks pages 2 upward when no reliable count exists, stopping
// at the first failed or empty page.
func (e *Engine) probePages(ctx context.Context, pacer *Pacer, summary *domain.Summary, all *[]*domain.RawJob) error {
	for page := 2; page <= e.cfg.ProbePageLimit; page++ {
		if err := pacer.Wait(ctx); err != nil {
			return err
		}
		summary.PagesVisited++
		jobs, err := e.fetchPage(ctx, page)
		if err != nil {
			e.log.Info("probe stopped", "page", page, "error", err)
			return e.emit(&domain.PageResult{Page: page, Err: err})
		}
		if len(jobs) == 0 {
			e.log.Info("probe stopped, empty page", "page", page)
			return e.emit(&domain.PageResult{Page: page})
		}
		e.log.Debug("page fetched", "page", page, "records", len(jobs))
		*all = append(*all, jobs...)
		if err := e.emit(&domain.PageResult{Page: page, Jobs: jobs}); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) fetchPage(ctx context.Context, page int) ([]*domain.RawJob, error) {
	body, err := e.fetcher.Fetch(ctx, e.site.PageURL(page))
	if err != nil {
		return nil, err
	}
	jobs, err := e.parser.Parse(body, e.site.Selectors, page)
	if err != nil {
		return nil, fmt.Errorf("parse page %d: %w", page, err)
	}
	return jobs, nil
}

// filter applies the expiry rule: a record is kept only when its expiry
// text parses and the date is today or later. Everything else is dropped
// and counted.
func (e *Engine) filter(raw []*domain.RawJob, summary *domain.Summary) []*domain.Job {
	summary.Found = len(raw)
	jobs := make([]*domain.Job, 0, len(raw))
	pageIndex := make(map[int]int)
	for _, r := range raw {
		pageIndex[r.Page]++
		idx := pageIndex[r.Page]

		expiry, err := normalizer.ParseExpiry(r.ExpiryText)
		if err != nil {
			summary.Unparsable++
			e.log.Warn("expiry dropped", "title", r.Title, "text", r.ExpiryText)
			continue
		}
		if !normalizer.Current(expiry, e.today) {
			summary.Expired++
			continue
		}

		location := r.Location
		if location == "" {
			location = e.site.DefaultLocation
		}
		jobs = append(jobs, &domain.Job{
			ID:          makeJobID(e.site.IDPrefix, r.Page, idx, e.today),
			Title:       r.Title,
			Company:     r.Company,
			Location:    location,
			Expiry:      expiry,
			Description: r.Description,
			Category:    normalizer.Classify(r.Title, r.Description, r.Company),
			Source:      e.site.Source,
			URL:         resolveURL(e.site.BaseURL, r.URL),
			ApplyEmail:  e.site.FallbackEmail,
			ScrapedAt:   e.now(),
		})
	}
	return jobs
}

func (e *Engine) emit(res *domain.PageResult) error {
	if e.onPage == nil {
		return nil
	}
	if err := e.onPage(res); err != nil {
		return fmt.Errorf("page handler: %w", err)
	}
	return nil
}

// makeJobID builds the stable record identifier from the page, the
// record's 1-based position on it, and the run date.
func makeJobID(prefix string, page, index int, today time.Time) string {
	return fmt.Sprintf("%s_%03d_%03d_%s", prefix, page, index, today.Format("20060102"))
}

// resolveURL makes listing hrefs absolute against the site base.
func resolveURL(base, href string) string {
	if href == "" {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	h, err := url.Parse(href)
	if err != nil {
		return href
	}
	return b.ResolveReference(h).String()
}
