// Package store persists auction notices, run summaries and dead-lettered
// records.
package store

import (
	"context"

	"github.com/sells-group/remates-cli/internal/model"
)

// Store is the persistence contract of the pipeline. Record writes are
// individually atomic; the pipeline does no locking of its own.
type Store interface {
	// Notices
	FindExisting(ctx context.Context, matriculas []string) (map[string]*model.Remate, error)
	GetByMatricula(ctx context.Context, matricula string) (*model.Remate, error)
	Insert(ctx context.Context, r *model.Remate) error
	Update(ctx context.Context, matricula string, u model.RemateUpdate) error
	Stats(ctx context.Context) (*model.Stats, error)

	// Run audit
	CreateRunSummary(ctx context.Context, s *model.RunSummary) error
	ListRunSummaries(ctx context.Context, limit, offset int) ([]model.RunSummary, int, error)

	// Dead letters
	AddFailures(ctx context.Context, failures []model.FailedRecord) error
	ListFailures(ctx context.Context, limit int) ([]model.FailedRecord, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

const defaultListLimit = 50

func listLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	return limit
}
