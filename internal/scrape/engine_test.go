package scrape

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/chikocharles/job-scraper/internal/common/fetcher"
	"github.com/chikocharles/job-scraper/internal/common/parser"
	"github.com/chikocharles/job-scraper/internal/domain"
)

const testBase = "https://example.test/jobs/?ordering=later"

var testToday = time.Date(2025, 8, 24, 0, 0, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSite() Site {
	return Site{
		Source:  domain.SourceVacancyMail,
		BaseURL: testBase,
		PageURL: func(page int) string {
			if page <= 1 {
				return testBase
			}
			return testBase + "&page=" + strconv.Itoa(page)
		},
		Selectors: parser.Selectors{
			Container:   "a.job-listing",
			Title:       []parser.Strategy{{Selector: "h3.job-listing-title"}},
			Company:     []parser.Strategy{{Selector: "h4.job-listing-company"}},
			Location:    []parser.Strategy{{Selector: "i.icon-location", Closest: "li"}},
			Expiry:      []parser.Strategy{{Selector: "i.icon-clock", Closest: "li"}},
			Description: []parser.Strategy{{Selector: "p.job-listing-text"}},
		},
		IDPrefix:      "VM",
		HasEmails:     true,
		FallbackEmail: "N/A",
	}
}

func testConfig() Config {
	return Config{RequestDelay: time.Millisecond, DetailDelay: time.Millisecond}
}

// fakeFetcher serves scripted bodies per URL. Unknown URLs come back as
// 404s so a test fails loudly when the engine requests too much.
type fakeFetcher struct {
	pages  map[string]string
	errs   map[string]error
	calls  []string
	stamps []time.Time
}

func (f *fakeFetcher) Fetch(_ context.Context, pageURL string) ([]byte, error) {
	f.calls = append(f.calls, pageURL)
	f.stamps = append(f.stamps, time.Now())
	if err, ok := f.errs[pageURL]; ok {
		return nil, err
	}
	body, ok := f.pages[pageURL]
	if !ok {
		return nil, &fetcher.FetchError{URL: pageURL, Status: 404, Err: errors.New("not found")}
	}
	return []byte(body), nil
}

func card(title, location, expiryText string) string {
	slug := strings.ToLower(strings.ReplaceAll(title, " ", "-"))
	return fmt.Sprintf(`<a class="job-listing" href="/jobs/%s">
	<h3 class="job-listing-title">%s</h3>
	<h4 class="job-listing-company">Acme Ltd</h4>
	<p class="job-listing-text">General duties.</p>
	<div class="job-listing-footer">
		<ul>
			<li><i class="icon-location"></i> %s</li>
			<li><i class="icon-clock"></i> %s</li>
		</ul>
	</div>
</a>`, slug, title, location, expiryText)
}

func renderPage(cards []string, pagination string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html><body>
<div class="listings">
%s
</div>
%s
</body></html>`, strings.Join(cards, "\n"), pagination)
}

func paginationOf(current, total int) string {
	return fmt.Sprintf(`<ul class="pagination"><li class="active">Page %d of %d</li></ul>`, current, total)
}

func futureCards(n int, location string) []string {
	cards := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		cards = append(cards, card(fmt.Sprintf("Listing %s %d", location, i), location, "Expires 15 Sep 2025"))
	}
	return cards
}

func TestCrawlThreePages(t *testing.T) {
	site := testSite()
	f := &fakeFetcher{
		pages: map[string]string{
			site.PageURL(1): renderPage([]string{
				card("Stores Clerk", "Harare", "Expires 01 Sep 2025"),
				card("Data Analyst", "Harare", "Expires 30 Aug 2025"),
				card("Old Cashier", "Mutare", "Expires 01 Aug 2025"),
				card("Old Welder", "Mutare", "Expires 02 Aug 2025"),
				card("Old Cleaner", "Gweru", "Expires 03 Aug 2025"),
			}, paginationOf(1, 3)),
			site.PageURL(2): renderPage(futureCards(5, "Bulawayo"), paginationOf(2, 3)),
		},
		errs: map[string]error{
			site.PageURL(3): &fetcher.FetchError{URL: site.PageURL(3), Err: errors.New("connection refused")},
		},
	}
	e := NewEngine(site, f, testConfig(), testLogger(), testToday)

	var pages []int
	var pageErr error
	e.OnPage(func(res *domain.PageResult) error {
		pages = append(pages, res.Page)
		if res.Err != nil {
			pageErr = res.Err
		}
		return nil
	})

	jobs, summary, err := e.Crawl(context.Background())
	if err != nil {
		t.Fatalf("Crawl: %v", err)
	}
	if len(jobs) != 7 {
		t.Fatalf("kept %d jobs, want 7", len(jobs))
	}
	if summary.PagesVisited != 3 {
		t.Errorf("PagesVisited = %d, want 3", summary.PagesVisited)
	}
	if summary.Found != 10 || summary.Kept != 7 || summary.Expired != 3 || summary.Unparsable != 0 {
		t.Errorf("counters = %+v", summary)
	}
	if want := []int{1, 2, 3}; len(pages) != 3 || pages[0] != want[0] || pages[1] != want[1] || pages[2] != want[2] {
		t.Errorf("handler saw pages %v, want %v", pages, want)
	}
	if pageErr == nil {
		t.Error("handler never saw the page 3 fetch error")
	}

	first := jobs[0]
	if first.ID != "VM_001_001_20250824" {
		t.Errorf("first ID = %q", first.ID)
	}
	if jobs[2].ID != "VM_002_001_20250824" {
		t.Errorf("first page-2 ID = %q", jobs[2].ID)
	}
	if first.Title != "Stores Clerk" || first.Location != "Harare" || first.Company != "Acme Ltd" {
		t.Errorf("first job fields = %+v", first)
	}
	if first.Category != "Administration" {
		t.Errorf("Category = %q, want Administration", first.Category)
	}
	if first.URL != "https://example.test/jobs/stores-clerk" {
		t.Errorf("URL = %q", first.URL)
	}
	if first.ApplyEmail != "N/A" {
		t.Errorf("ApplyEmail = %q, want fallback", first.ApplyEmail)
	}
	if !first.Expiry.Equal(time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expiry = %v", first.Expiry)
	}
}

func TestCrawlFirstPageFailureIsFatal(t *testing.T) {
	site := testSite()
	f := &fakeFetcher{
		errs: map[string]error{
			site.PageURL(1): &fetcher.FetchError{URL: site.PageURL(1), Err: errors.New("connection refused")},
		},
	}
	e := NewEngine(site, f, testConfig(), testLogger(), testToday)

	jobs, summary, err := e.Crawl(context.Background())
	if err == nil {
		t.Fatal("expected error when the first page cannot be fetched")
	}
	if jobs != nil || summary != nil {
		t.Errorf("got jobs=%v summary=%v, want none", jobs, summary)
	}
	var fe *fetcher.FetchError
	if !errors.As(err, &fe) {
		t.Errorf("error %v does not wrap the fetch error", err)
	}
}

func TestCrawlProbeStopsOnEmptyPage(t *testing.T) {
	site := testSite()
	f := &fakeFetcher{
		pages: map[string]string{
			site.PageURL(1): renderPage(futureCards(3, "Harare"), ""),
			site.PageURL(2): renderPage(futureCards(2, "Gweru"), ""),
			site.PageURL(3): renderPage(nil, ""),
		},
	}
	e := NewEngine(site, f, testConfig(), testLogger(), testToday)

	jobs, summary, err := e.Crawl(context.Background())
	if err != nil {
		t.Fatalf("Crawl: %v", err)
	}
	if len(f.calls) != 3 {
		t.Errorf("fetched %d pages (%v), want 3", len(f.calls), f.calls)
	}
	if summary.PagesVisited != 3 || summary.Found != 5 {
		t.Errorf("summary = %+v", summary)
	}
	if len(jobs) != 5 {
		t.Errorf("kept %d jobs, want 5", len(jobs))
	}
}

func TestCrawlProbeStopsOnFetchError(t *testing.T) {
	site := testSite()
	f := &fakeFetcher{
		pages: map[string]string{
			site.PageURL(1): renderPage(futureCards(2, "Harare"), ""),
		},
		errs: map[string]error{
			site.PageURL(2): &fetcher.FetchError{URL: site.PageURL(2), Status: 500, Err: errors.New("server error")},
		},
	}
	e := NewEngine(site, f, testConfig(), testLogger(), testToday)

	jobs, summary, err := e.Crawl(context.Background())
	if err != nil {
		t.Fatalf("a failed probe page must not fail the crawl: %v", err)
	}
	if summary.PagesVisited != 2 {
		t.Errorf("PagesVisited = %d, want 2", summary.PagesVisited)
	}
	if len(jobs) != 2 {
		t.Errorf("kept %d jobs, want 2", len(jobs))
	}
}

func TestCrawlFullFirstPageTriggersProbe(t *testing.T) {
	site := testSite()
	singlePageControl := `<ul class="pagination"><li><a href="?page=1">1</a></li></ul>`
	f := &fakeFetcher{
		pages: map[string]string{
			site.PageURL(1): renderPage(futureCards(3, "Harare"), singlePageControl),
			site.PageURL(2): renderPage(futureCards(1, "Kwekwe"), singlePageControl),
			site.PageURL(3): renderPage(nil, singlePageControl),
		},
	}
	cfg := testConfig()
	cfg.FullPageThreshold = 3
	e := NewEngine(site, f, cfg, testLogger(), testToday)

	jobs, summary, err := e.Crawl(context.Background())
	if err != nil {
		t.Fatalf("Crawl: %v", err)
	}
	if summary.PagesVisited != 3 {
		t.Errorf("PagesVisited = %d, want 3 (probe past the claimed single page)", summary.PagesVisited)
	}
	if len(jobs) != 4 {
		t.Errorf("kept %d jobs, want 4", len(jobs))
	}
}

func TestCrawlSparseFirstPageStaysOnOnePage(t *testing.T) {
	site := testSite()
	singlePageControl := `<ul class="pagination"><li><a href="?page=1">1</a></li></ul>`
	f := &fakeFetcher{
		pages: map[string]string{
			site.PageURL(1): renderPage(futureCards(2, "Harare"), singlePageControl),
		},
	}
	cfg := testConfig()
	cfg.FullPageThreshold = 3
	e := NewEngine(site, f, cfg, testLogger(), testToday)

	jobs, _, err := e.Crawl(context.Background())
	if err != nil {
		t.Fatalf("Crawl: %v", err)
	}
	if len(f.calls) != 1 {
		t.Errorf("fetched %v, want only the first page", f.calls)
	}
	if len(jobs) != 2 {
		t.Errorf("kept %d jobs, want 2", len(jobs))
	}
}

func TestCrawlTestModeStopsAfterFirstPage(t *testing.T) {
	site := testSite()
	f := &fakeFetcher{
		pages: map[string]string{
			site.PageURL(1): renderPage(futureCards(2, "Harare"), paginationOf(1, 3)),
		},
	}
	cfg := testConfig()
	cfg.TestMode = true
	e := NewEngine(site, f, cfg, testLogger(), testToday)

	_, summary, err := e.Crawl(context.Background())
	if err != nil {
		t.Fatalf("Crawl: %v", err)
	}
	if len(f.calls) != 1 || summary.PagesVisited != 1 {
		t.Errorf("calls=%v PagesVisited=%d, want a single page", f.calls, summary.PagesVisited)
	}
}

func TestCrawlHonorsMaxPages(t *testing.T) {
	site := testSite()
	f := &fakeFetcher{
		pages: map[string]string{
			site.PageURL(1): renderPage(futureCards(2, "Harare"), paginationOf(1, 12)),
			site.PageURL(2): renderPage(futureCards(2, "Gweru"), paginationOf(2, 12)),
		},
	}
	cfg := testConfig()
	cfg.MaxPages = 2
	e := NewEngine(site, f, cfg, testLogger(), testToday)

	_, summary, err := e.Crawl(context.Background())
	if err != nil {
		t.Fatalf("Crawl: %v", err)
	}
	if len(f.calls) != 2 || summary.PagesVisited != 2 {
		t.Errorf("calls=%v PagesVisited=%d, want 2 pages", f.calls, summary.PagesVisited)
	}
}

func TestCrawlPacesPageFetches(t *testing.T) {
	site := testSite()
	f := &fakeFetcher{
		pages: map[string]string{
			site.PageURL(1): renderPage(futureCards(2, "Harare"), paginationOf(1, 3)),
			site.PageURL(2): renderPage(futureCards(2, "Gweru"), paginationOf(2, 3)),
			site.PageURL(3): renderPage(futureCards(2, "Kwekwe"), paginationOf(3, 3)),
		},
	}
	cfg := testConfig()
	cfg.RequestDelay = 150 * time.Millisecond
	e := NewEngine(site, f, cfg, testLogger(), testToday)

	if _, _, err := e.Crawl(context.Background()); err != nil {
		t.Fatalf("Crawl: %v", err)
	}
	if len(f.stamps) != 3 {
		t.Fatalf("fetched %d pages, want 3", len(f.stamps))
	}
	for i := 1; i < len(f.stamps); i++ {
		gap := f.stamps[i].Sub(f.stamps[i-1])
		if gap < cfg.RequestDelay {
			t.Errorf("page %d fetched %v after page %d, want at least %v", i+1, gap, i, cfg.RequestDelay)
		}
	}
}

func TestCrawlDropsUnparsableExpiry(t *testing.T) {
	site := testSite()
	f := &fakeFetcher{
		pages: map[string]string{
			site.PageURL(1): renderPage([]string{
				card("Stores Clerk", "Harare", "Expires 01 Sep 2025"),
				card("Mystery Role", "Harare", "TBA"),
			}, paginationOf(1, 1)),
		},
	}
	e := NewEngine(site, f, testConfig(), testLogger(), testToday)

	jobs, summary, err := e.Crawl(context.Background())
	if err != nil {
		t.Fatalf("Crawl: %v", err)
	}
	if len(jobs) != 1 || jobs[0].Title != "Stores Clerk" {
		t.Fatalf("kept %v, want only the parsable record", jobs)
	}
	if summary.Unparsable != 1 {
		t.Errorf("Unparsable = %d, want 1", summary.Unparsable)
	}
}

func TestCrawlEnrichesEmails(t *testing.T) {
	site := testSite()
	f := &fakeFetcher{
		pages: map[string]string{
			site.PageURL(1): renderPage([]string{
				card("Stores Clerk", "Harare", "Expires 01 Sep 2025"),
				card("Data Analyst", "Harare", "Expires 01 Sep 2025"),
			}, paginationOf(1, 1)),
			"https://example.test/jobs/stores-clerk": `<html><body>
				<p>Applications to recruitment@acme.co.zw before Friday.</p>
				<script>var tracker = "noise@tracker.example";</script>
			</body></html>`,
			"https://example.test/jobs/data-analyst": `<html><body><p>Apply via the portal.</p></body></html>`,
		},
	}
	cfg := testConfig()
	cfg.EnrichEmails = true
	e := NewEngine(site, f, cfg, testLogger(), testToday)

	jobs, _, err := e.Crawl(context.Background())
	if err != nil {
		t.Fatalf("Crawl: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("kept %d jobs, want 2", len(jobs))
	}
	if jobs[0].ApplyEmail != "recruitment@acme.co.zw" {
		t.Errorf("ApplyEmail = %q, want the page address", jobs[0].ApplyEmail)
	}
	if jobs[1].ApplyEmail != "N/A" {
		t.Errorf("ApplyEmail = %q, want the fallback", jobs[1].ApplyEmail)
	}
}

func TestCrawlDefaultLocation(t *testing.T) {
	site := testSite()
	site.DefaultLocation = "Zimbabwe"
	noLocation := `<a class="job-listing" href="/jobs/x">
		<h3 class="job-listing-title">Field Hand</h3>
		<h4 class="job-listing-company">Acme Ltd</h4>
		<div class="job-listing-footer"><ul>
			<li><i class="icon-clock"></i> Expires 01 Sep 2025</li>
		</ul></div>
	</a>`
	f := &fakeFetcher{
		pages: map[string]string{
			site.PageURL(1): renderPage([]string{noLocation}, paginationOf(1, 1)),
		},
	}
	e := NewEngine(site, f, testConfig(), testLogger(), testToday)

	jobs, _, err := e.Crawl(context.Background())
	if err != nil {
		t.Fatalf("Crawl: %v", err)
	}
	if len(jobs) != 1 || jobs[0].Location != "Zimbabwe" {
		t.Errorf("jobs = %+v, want default location", jobs)
	}
}

func TestCrawlPageHandlerAborts(t *testing.T) {
	site := testSite()
	f := &fakeFetcher{
		pages: map[string]string{
			site.PageURL(1): renderPage(futureCards(1, "Harare"), paginationOf(1, 1)),
		},
	}
	e := NewEngine(site, f, testConfig(), testLogger(), testToday)
	e.OnPage(func(*domain.PageResult) error { return errors.New("stop") })

	if _, _, err := e.Crawl(context.Background()); err == nil {
		t.Fatal("expected the handler error to abort the crawl")
	}
}
