package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chikocharles/job-scraper/internal/common/fetcher"
	"github.com/chikocharles/job-scraper/internal/common/indexer"
	"github.com/chikocharles/job-scraper/internal/common/writer"
	"github.com/chikocharles/job-scraper/internal/config"
	"github.com/chikocharles/job-scraper/internal/domain"
	"github.com/chikocharles/job-scraper/internal/module/jobszimbabwe"
	"github.com/chikocharles/job-scraper/internal/module/vacancymail"
	"github.com/chikocharles/job-scraper/internal/module/zimbojobs"
	"github.com/chikocharles/job-scraper/internal/scrape"
)

// siteGap separates consecutive site crawls.
const siteGap = 2 * time.Second

func main() {
	configPath := flag.String("config", "", "path to YAML configuration")
	testMode := flag.Bool("test", false, "scrape only the first page of each site")
	siteName := flag.String("site", "", "restrict the run to one site (vacancymail, jobszimbabwe, zimbojobs)")
	flag.Parse()

	if err := run(*configPath, *testMode, *siteName); err != nil {
		fmt.Fprintln(os.Stderr, "job-scraper:", err)
		os.Exit(1)
	}
}

func run(configPath string, testMode bool, siteName string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if testMode {
		cfg.Scraper.TestMode = true
	}

	log, logCloser, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return err
	}
	if logCloser != nil {
		defer logCloser.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sites := enabledSites(cfg, siteName)
	if len(sites) == 0 {
		return fmt.Errorf("no enabled site matches %q", siteName)
	}

	engineCfg := scrape.Config{
		MaxPages:          cfg.Scraper.MaxPages,
		ProbePageLimit:    cfg.Scraper.ProbePageLimit,
		FullPageThreshold: cfg.Scraper.FullPageThreshold,
		RequestDelay:      cfg.Scraper.RequestDelay.Duration,
		DetailDelay:       cfg.Scraper.DetailDelay.Duration,
		TestMode:          cfg.Scraper.TestMode,
		EnrichEmails:      cfg.Scraper.EnrichEmails,
	}
	if cfg.Scraper.TestMode {
		fmt.Println("Test mode: first page of each site only")
	}

	today := time.Now()
	var allJobs []*domain.Job
	var summaries []*domain.Summary
	failed := 0

	for i, site := range sites {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(siteGap):
			}
		}

		f := fetcher.NewCollyFetcher(fetcher.Config{UserAgent: userAgent(cfg, site)})
		engine := scrape.NewEngine(site, f, engineCfg, log, today)
		engine.OnPage(func(res *domain.PageResult) error {
			printProgress(site.Source, res)
			return nil
		})

		fmt.Printf("Scraping %s ...\n", site.Source)
		jobs, summary, err := engine.Crawl(ctx)
		if err != nil {
			log.Error("site failed", "source", site.Source, "error", err)
			fmt.Printf("  %s failed: %v\n", site.Source, err)
			failed++
			continue
		}
		allJobs = append(allJobs, jobs...)
		summaries = append(summaries, summary)
	}
	if failed == len(sites) {
		return fmt.Errorf("all %d sites failed", failed)
	}

	printSummary(allJobs, summaries)

	w := writer.NewWriter(writer.Config{
		Dir:        cfg.Output.Dir,
		LatestCSV:  cfg.Output.LatestCSV,
		LatestJSON: cfg.Output.LatestJSON,
	}, log)
	written, err := w.WriteAll(allJobs)
	if err != nil {
		return fmt.Errorf("write outputs: %w", err)
	}
	for _, p := range written {
		fmt.Println("Wrote", p)
	}

	indexJobs(ctx, cfg, log, allJobs)
	return nil
}

func enabledSites(cfg *config.Config, only string) []scrape.Site {
	var sites []scrape.Site
	add := func(enabled bool, site scrape.Site) {
		if !enabled {
			return
		}
		if only != "" && only != string(site.Source) {
			return
		}
		sites = append(sites, site)
	}
	add(cfg.Sites.VacancyMail, vacancymail.Site())
	add(cfg.Sites.JobsZimbabwe, jobszimbabwe.Site())
	add(cfg.Sites.ZimboJobs, zimbojobs.Site())
	return sites
}

func userAgent(cfg *config.Config, site scrape.Site) string {
	if site.UserAgent != "" {
		return site.UserAgent
	}
	return cfg.Scraper.UserAgent
}

func printProgress(source domain.JobSource, res *domain.PageResult) {
	if res.Err != nil {
		fmt.Printf("  [%s] page %d failed: %v\n", source, res.Page, res.Err)
		return
	}
	fmt.Printf("  [%s] page %d: %d listings\n", source, res.Page, len(res.Jobs))
}

func printSummary(jobs []*domain.Job, summaries []*domain.Summary) {
	fmt.Println()
	fmt.Println("=== Scrape summary ===")
	var found, expired, unparsable int
	for _, s := range summaries {
		found += s.Found
		expired += s.Expired
		unparsable += s.Unparsable
		fmt.Printf("%-13s pages %-3d found %-4d kept %-4d expired %-4d unparsable %d\n",
			s.Source, s.PagesVisited, s.Found, s.Kept, s.Expired, s.Unparsable)
	}
	fmt.Printf("Total kept: %d (of %d found, %d expired, %d unparsable)\n",
		len(jobs), found, expired, unparsable)

	global := &domain.Summary{}
	scrape.Summarize(global, jobs)
	printTop("Top locations", global.ByLocation)
	printTop("Top categories", global.ByCategory)
	printTop("Top expiry dates", global.ByExpiryDate)
}

func printTop(title string, entries []domain.KeyCount) {
	entries = scrape.TopN(entries, 5)
	if len(entries) == 0 {
		return
	}
	fmt.Println(title + ":")
	for _, e := range entries {
		fmt.Printf("  %-24s %d\n", e.Key, e.Count)
	}
}

// indexJobs feeds the kept set to any enabled storage backends. Sink
// trouble is logged, never fatal; the files on disk are the primary
// output.
func indexJobs(ctx context.Context, cfg *config.Config, log *slog.Logger, jobs []*domain.Job) {
	var sinks []indexer.Indexer

	if cfg.Storage.Postgres.Enabled {
		pg, err := indexer.NewPostgresIndexer(cfg.Storage.Postgres.DSN, cfg.Storage.Postgres.Table, log)
		if err != nil {
			log.Error("postgres unavailable", "error", err)
		} else {
			sinks = append(sinks, pg)
		}
	}
	if cfg.Storage.Elasticsearch.Enabled {
		es, err := indexer.NewElasticsearchIndexer(cfg.Storage.Elasticsearch.Addresses, cfg.Storage.Elasticsearch.Index, log)
		if err != nil {
			log.Error("elasticsearch unavailable", "error", err)
		} else {
			if err := es.EnsureIndex(ctx); err != nil {
				log.Warn("ensure index failed", "error", err)
			}
			sinks = append(sinks, es)
		}
	}

	for _, sink := range sinks {
		if err := sink.BulkIndex(ctx, jobs); err != nil {
			log.Error("bulk index failed", "error", err)
		}
		if err := sink.Close(); err != nil {
			log.Warn("close sink", "error", err)
		}
	}
}
