package parser

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/chikocharles/job-scraper/internal/common/cleaner"
	"github.com/chikocharles/job-scraper/internal/domain"
)

// Strategy locates one field inside a listing container. Selector is
// relative to the container. When Closest is set, the text is read from the
// nearest ancestor matching it rather than the matched node itself; some
// boards tag a field with an icon element while the value sits on the
// surrounding list item.
type Strategy struct {
	Selector string
	Closest  string
}

// Selectors maps one site's listing markup to record fields. Each field is
// an ordered strategy chain: the first strategy yielding non-empty text
// wins, and a field no strategy can locate stays empty. Link names the
// element carrying the detail-page href; empty means the container itself
// is the anchor.
type Selectors struct {
	Container   string
	Title       []Strategy
	Company     []Strategy
	Location    []Strategy
	Expiry      []Strategy
	Description []Strategy
	Link        string
}

// ListingParser extracts raw job records from listing-page markup
type ListingParser struct {
	clean *cleaner.Cleaner
}

// New creates a listing parser
func New(clean *cleaner.Cleaner) *ListingParser {
	if clean == nil {
		clean = cleaner.NewCleaner()
	}
	return &ListingParser{clean: clean}
}

// Parse extracts all listing containers from one page's markup. Unknown or
// partial markup is not an error: missing fields come back empty and a page
// without containers yields an empty slice. The error is non-nil only when
// the markup cannot be read at all.
func (p *ListingParser) Parse(markup []byte, sel Selectors, page int) ([]*domain.RawJob, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}

	var jobs []*domain.RawJob
	doc.Find(sel.Container).Each(func(_ int, container *goquery.Selection) {
		jobs = append(jobs, &domain.RawJob{
			Title:       p.fieldText(container, sel.Title),
			Company:     p.fieldText(container, sel.Company),
			Location:    p.fieldText(container, sel.Location),
			ExpiryText:  p.fieldText(container, sel.Expiry),
			Description: p.fieldText(container, sel.Description),
			URL:         linkHref(container, sel.Link),
			Page:        page,
		})
	})

	return jobs, nil
}

func (p *ListingParser) fieldText(container *goquery.Selection, chain []Strategy) string {
	for _, st := range chain {
		m := container.Find(st.Selector).First()
		if m.Length() == 0 {
			continue
		}
		if st.Closest != "" {
			m = m.Closest(st.Closest)
			if m.Length() == 0 {
				continue
			}
		}
		if txt := p.clean.Text(m.Text()); txt != "" {
			return txt
		}
	}
	return ""
}

func linkHref(container *goquery.Selection, link string) string {
	target := container
	if link != "" {
		target = container.Find(link).First()
	}
	return strings.TrimSpace(target.AttrOr("href", ""))
}
