package store

import (
	"context"

	"github.com/MikeSquared-Agency/voxarchive/internal/dialogue"
	"github.com/MikeSquared-Agency/voxarchive/internal/filter"
)

// FindOptions controls paging and ordering of Find. Take <= 0 means no limit.
type FindOptions struct {
	Skip    int
	Take    int
	OrderBy []filter.SortKey
}

// Reader queries dialogue lines within one consistent view of the corpus.
type Reader interface {
	// Find returns the lines matching p, ordered and paged by opts.
	Find(ctx context.Context, p filter.Predicate, opts FindOptions) ([]dialogue.Record, error)

	// Count returns the number of lines matching p.
	Count(ctx context.Context, p filter.Predicate) (int, error)

	// FindDistinct returns the distinct values of field among lines matching p, sorted.
	FindDistinct(ctx context.Context, p filter.Predicate, field filter.Field) ([]string, error)
}

// Snapshotter hands out Readers. Every call made through the Reader passed to fn
// observes the same snapshot of the corpus.
type Snapshotter interface {
	ReadSnapshot(ctx context.Context, fn func(Reader) error) error
}
