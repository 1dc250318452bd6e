package jobszimbabwe

import (
	"fmt"

	"github.com/chikocharles/job-scraper/internal/common/parser"
	"github.com/chikocharles/job-scraper/internal/domain"
	"github.com/chikocharles/job-scraper/internal/scrape"
)

const (
	BaseURL = "https://jobszimbabwe.co.zw/"

	// browserAgent is required; the board serves an empty shell to
	// non-browser user agents.
	browserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// Site describes the Jobs Zimbabwe board. Cards carry no expiry date, so
// its records never pass the expiry filter unless the board starts
// publishing one; crawls are still useful for the raw counters.
func Site() scrape.Site {
	return scrape.Site{
		Source:  domain.SourceJobsZimbabwe,
		BaseURL: BaseURL,
		PageURL: pageURL,
		Selectors: parser.Selectors{
			Container: "div.jobsearch-SerpJobCard, div.job_seen_beacon",
			Title: []parser.Strategy{
				{Selector: "h2.title"},
				{Selector: "a[data-jk]"},
			},
			Company: []parser.Strategy{
				{Selector: "span.company"},
				{Selector: "a.turnstileLink"},
			},
			Location: []parser.Strategy{
				{Selector: "div.recJobLoc"},
				{Selector: "div.companyLocation"},
			},
			Description: []parser.Strategy{
				{Selector: "div.summary"},
			},
			Link: "a",
		},
		IDPrefix:        "JZ",
		UserAgent:       browserAgent,
		DefaultLocation: "Zimbabwe",
		FallbackEmail:   "Apply on Jobs Zimbabwe",
	}
}

// pageURL paginates by record offset, ten listings per page.
func pageURL(page int) string {
	if page <= 1 {
		return BaseURL
	}
	return fmt.Sprintf("%s?start=%d", BaseURL, 10*(page-1))
}
