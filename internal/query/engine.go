// Package query evaluates structured filters against the listing collection.
package query

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dkropachev/autocatalog/internal/model"
	"github.com/dkropachev/autocatalog/internal/service"
)

// Config bounds search results.
type Config struct {
	// DefaultLimit is used when the caller passes limit <= 0.
	DefaultLimit int
	// MaxLimit is a hard cap applied to every search; results are never
	// unbounded.
	MaxLimit int
}

// DefaultConfig returns the production limits.
func DefaultConfig() Config {
	return Config{DefaultLimit: 5, MaxLimit: 10}
}

// Engine translates structured filters into storage predicates and runs
// them. It holds no mutable state and is safe for concurrent use.
type Engine struct {
	storage      service.Storage
	defaultLimit int
	maxLimit     int
}

// New creates a query engine on top of the given storage.
func New(storage service.Storage, cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = def.DefaultLimit
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = def.MaxLimit
	}
	return &Engine{
		storage:      storage,
		defaultLimit: cfg.DefaultLimit,
		maxLimit:     cfg.MaxLimit,
	}
}

// Search runs the filter against active listings, newest first, truncated
// at the (capped) limit. An empty filter matches every active listing.
// There is no pagination cursor; callers wanting more issue a new search
// with a larger limit.
func (e *Engine) Search(ctx context.Context, f model.StructuredFilter, limit int) ([]model.Listing, error) {
	limit = e.capLimit(limit)

	listings, err := e.storage.QueryActive(ctx, translate(f), limit)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	slog.Debug("Search completed",
		"matches", len(listings),
		"limit", limit,
		"terms", len(f.Terms))
	return listings, nil
}

// Recent returns the newest active listings with no filtering.
func (e *Engine) Recent(ctx context.Context, limit int) ([]model.Listing, error) {
	return e.Search(ctx, model.StructuredFilter{}, limit)
}

func (e *Engine) capLimit(limit int) int {
	if limit <= 0 {
		return e.defaultLimit
	}
	if limit > e.maxLimit {
		return e.maxLimit
	}
	return limit
}

// translate converts a parsed filter into a storage predicate. When both a
// range and a comparator survived parsing, the range wins and the
// comparator is dropped.
func translate(f model.StructuredFilter) service.ListingPredicate {
	pred := service.ListingPredicate{
		Year:  f.Year,
		Terms: f.Terms,
	}

	switch {
	case f.Range != nil:
		minPrice, maxPrice := f.Range.Min, f.Range.Max
		pred.PriceMin = &minPrice
		pred.PriceMax = &maxPrice
	case f.PriceCmp != nil:
		pred.PriceOp = f.PriceCmp.Op
		pred.PriceVal = f.PriceCmp.Value
	}

	return pred
}
