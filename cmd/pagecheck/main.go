// pagecheck fetches a single listing URL and prints what the page-count
// estimator sees there. Handy when wiring up a new job board.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/chikocharles/job-scraper/internal/common/fetcher"
	"github.com/chikocharles/job-scraper/internal/common/parser"
)

func main() {
	rawURL := flag.String("url", "", "listing page URL to inspect")
	userAgent := flag.String("ua", "", "user agent override")
	flag.Parse()

	if *rawURL == "" {
		fmt.Fprintln(os.Stderr, "usage: pagecheck -url <listing page> [-ua <agent>]")
		os.Exit(2)
	}
	if err := run(*rawURL, *userAgent); err != nil {
		fmt.Fprintln(os.Stderr, "pagecheck:", err)
		os.Exit(1)
	}
}

func run(rawURL, userAgent string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	f := fetcher.NewCollyFetcher(fetcher.Config{UserAgent: userAgent})
	body, err := f.Fetch(ctx, rawURL)
	if err != nil {
		return err
	}
	fmt.Printf("Fetched %d bytes\n", len(body))

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("parse markup: %w", err)
	}

	links := doc.Find("ul.pagination a, div.pagination a, nav.pagination a")
	if links.Length() == 0 {
		fmt.Println("No pagination links found")
	} else {
		fmt.Println("Pagination links:")
		links.Each(func(_ int, s *goquery.Selection) {
			fmt.Printf("  %-12q href=%q\n", strings.TrimSpace(s.Text()), s.AttrOr("href", ""))
		})
	}

	switch n := parser.EstimatePages(body); n {
	case 0:
		fmt.Println("Estimated pages: none found, a crawl would probe sequentially")
	default:
		fmt.Printf("Estimated pages: %d\n", n)
	}
	return nil
}
