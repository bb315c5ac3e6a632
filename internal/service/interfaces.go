// Package service defines the interfaces between the catalog core and its
// collaborators: the persistence layer and the optional repost sink.
package service

import (
	"context"

	"github.com/dkropachev/autocatalog/internal/model"
)

// ListingPredicate is a structured filter translated into storage-native
// terms. At most one of the price constraints is populated: when PriceMin
// and PriceMax are set the comparator fields are empty, and vice versa.
// Storage implementations additionally pin status to active on every query.
type ListingPredicate struct {
	Year     *int
	PriceMin *int
	PriceMax *int
	PriceOp  model.CompareOp // empty when no comparator constraint
	PriceVal int
	Terms    []string // case-insensitive substring matches, ANDed
}

// Storage is the persistence contract consumed by the core. Implementations
// must enforce fingerprint uniqueness at the storage layer so that
// InsertIfAbsent stays atomic under concurrent inserts of the same text.
type Storage interface {
	// InsertIfAbsent stores the listing unless its fingerprint already
	// exists. It returns the stored listing's id (the existing one on a
	// duplicate) and whether an insert actually happened.
	InsertIfAbsent(ctx context.Context, listing *model.Listing) (id int64, inserted bool, err error)

	// GetByID returns the listing or common.ErrNotFound.
	GetByID(ctx context.Context, id int64) (*model.Listing, error)

	// QueryActive returns active listings matching the predicate, newest
	// first (created_at, then id, both descending), truncated at limit.
	QueryActive(ctx context.Context, pred ListingPredicate, limit int) ([]model.Listing, error)

	// MarkSold flips an active listing to sold. It reports alreadySold=true
	// (and mutates nothing) when the listing was sold before the call, and
	// common.ErrNotFound when the id does not exist.
	MarkSold(ctx context.Context, id int64) (alreadySold bool, err error)

	// SetRepostRef records a successful repost. Set at most once; never
	// cleared.
	SetRepostRef(ctx context.Context, id int64, ref model.SourceRef) error

	// Migrate brings the schema up to the expected version.
	Migrate(ctx context.Context) error

	Close() error
}

// RepostSink mirrors a listing to a secondary destination. Implementations
// are best-effort: the core invokes Repost at most once per listing and
// never retries a failure.
type RepostSink interface {
	Repost(ctx context.Context, listing model.Listing) (model.SourceRef, error)
}
