package indexer

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"github.com/chikocharles/job-scraper/internal/domain"
)

// PostgresIndexer stores jobs in PostgreSQL, upserting on the job ID so
// repeated runs refresh rather than duplicate rows.
type PostgresIndexer struct {
	db    *sql.DB
	table string
	log   *slog.Logger
}

func NewPostgresIndexer(connStr, table string, log *slog.Logger) (*PostgresIndexer, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}

	idx := &PostgresIndexer{db: db, table: table, log: log}
	if err := idx.ensureTable(); err != nil {
		return nil, fmt.Errorf("ensure table: %w", err)
	}
	return idx, nil
}

func (i *PostgresIndexer) ensureTable() error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			company TEXT,
			location TEXT,
			description TEXT,
			category TEXT,
			source TEXT,
			url TEXT,
			apply_email TEXT,
			expires_at DATE,
			scraped_at TIMESTAMP WITH TIME ZONE,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`, i.table)

	_, err := i.db.Exec(query)
	return err
}

func (i *PostgresIndexer) upsertQuery() string {
	return fmt.Sprintf(`
		INSERT INTO %s (
			id, title, company, location, description,
			category, source, url, apply_email, expires_at, scraped_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10, $11, NOW()
		)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			company = EXCLUDED.company,
			location = EXCLUDED.location,
			description = EXCLUDED.description,
			category = EXCLUDED.category,
			source = EXCLUDED.source,
			url = EXCLUDED.url,
			apply_email = EXCLUDED.apply_email,
			expires_at = EXCLUDED.expires_at,
			scraped_at = EXCLUDED.scraped_at,
			updated_at = NOW()
	`, i.table)
}

// Index upserts a single job.
func (i *PostgresIndexer) Index(ctx context.Context, job *domain.Job) error {
	_, err := i.db.ExecContext(ctx, i.upsertQuery(),
		job.ID, job.Title, job.Company, job.Location, job.Description,
		job.Category, string(job.Source), job.URL, job.ApplyEmail, job.Expiry, job.ScrapedAt,
	)
	return err
}

// BulkIndex upserts all jobs inside one transaction.
func (i *PostgresIndexer) BulkIndex(ctx context.Context, jobs []*domain.Job) error {
	if len(jobs) == 0 {
		return nil
	}

	tx, err := i.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, i.upsertQuery())
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, job := range jobs {
		_, err := stmt.ExecContext(ctx,
			job.ID, job.Title, job.Company, job.Location, job.Description,
			job.Category, string(job.Source), job.URL, job.ApplyEmail, job.Expiry, job.ScrapedAt,
		)
		if err != nil {
			i.log.Error("postgres index failed", "id", job.ID, "error", err)
			continue
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (i *PostgresIndexer) Close() error {
	return i.db.Close()
}
