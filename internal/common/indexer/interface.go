package indexer

import (
	"context"

	"github.com/chikocharles/job-scraper/internal/domain"
)

// Indexer is an optional storage backend fed the kept jobs at the end of a
// run. Implementations must tolerate repeated runs indexing the same IDs.
type Indexer interface {
	// BulkIndex stores multiple jobs at once.
	BulkIndex(ctx context.Context, jobs []*domain.Job) error
	// Close releases the backend connection.
	Close() error
}
