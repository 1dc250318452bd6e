package parser

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// paginationControl matches the navigation element job boards wrap their
// page links in.
const paginationControl = "ul.pagination, div.pagination, nav.pagination"

var (
	pageOfRe   = regexp.MustCompile(`(?i)page\s+\d+\s+of\s+(\d+)`)
	hrefPageRe = regexp.MustCompile(`page[=/](\d+)`)
)

// EstimatePages inspects first-page markup and reports how many listing
// pages exist. Strategies in priority order: an explicit "page X of Y"
// marker or a "last" link carrying a page number, then the highest page
// number among the pagination links. A page with a pagination control
// always yields at least 1. The zero return means no pagination control or
// total marker exists at all; the caller falls back to probing pages
// sequentially.
func EstimatePages(markup []byte) int {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return 0
	}

	ctrl := doc.Find(paginationControl).First()
	if ctrl.Length() == 0 {
		// Some boards print the total as text without any link control.
		if n := matchPageOf(doc.Text()); n > 0 {
			return n
		}
		return 0
	}

	if n := matchPageOf(ctrl.Text()); n > 0 {
		return n
	}

	last := 0
	max := 1
	ctrl.Find("a").Each(func(_ int, a *goquery.Selection) {
		text := strings.TrimSpace(a.Text())
		href := a.AttrOr("href", "")

		if n, err := strconv.Atoi(text); err == nil && n > max {
			max = n
			return
		}
		if strings.Contains(strings.ToLower(text), "last") && href != "" {
			if n := matchHrefPage(href); n > last {
				last = n
			}
			return
		}
		// Ellipsis and arrow links still carry the page number in the href.
		if n := matchHrefPage(href); n > max {
			max = n
		}
	})

	if last > 0 {
		return last
	}
	return max
}

func matchPageOf(text string) int {
	m := pageOfRe.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return 0
	}
	return n
}

func matchHrefPage(href string) int {
	m := hrefPageRe.FindStringSubmatch(href)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}
