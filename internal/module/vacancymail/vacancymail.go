package vacancymail

import (
	"fmt"
	"strings"

	"github.com/chikocharles/job-scraper/internal/common/parser"
	"github.com/chikocharles/job-scraper/internal/domain"
	"github.com/chikocharles/job-scraper/internal/scrape"
)

// BaseURL lists the newest postings first.
const BaseURL = "https://vacancymail.co.zw/jobs/?ordering=later"

// Site describes the VacancyMail job board. Listing cards are anchors
// wrapping the whole posting; location and expiry sit in the footer,
// marked by material icons on their list items.
func Site() scrape.Site {
	return scrape.Site{
		Source:  domain.SourceVacancyMail,
		BaseURL: BaseURL,
		PageURL: pageURL,
		Selectors: parser.Selectors{
			Container: "a.job-listing",
			Title: []parser.Strategy{
				{Selector: "h3.job-listing-title"},
				{Selector: "h3"},
			},
			Company: []parser.Strategy{
				{Selector: "h4.job-listing-company"},
				{Selector: "h4"},
			},
			Location: []parser.Strategy{
				{Selector: "div.job-listing-footer i.icon-material-outline-location-on", Closest: "li"},
			},
			Expiry: []parser.Strategy{
				{Selector: "div.job-listing-footer i.icon-material-outline-access-time", Closest: "li"},
			},
			Description: []parser.Strategy{
				{Selector: "p.job-listing-text"},
			},
		},
		IDPrefix:      "VM",
		HasEmails:     true,
		FallbackEmail: "N/A",
	}
}

func pageURL(page int) string {
	if page <= 1 {
		return BaseURL
	}
	sep := "?"
	if strings.Contains(BaseURL, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%spage=%d", BaseURL, sep, page)
}
