// Package lifecycle tracks the active → sold transition of listings and the
// orthogonal reposted flag.
package lifecycle

import (
	"context"
	"log/slog"

	"github.com/dkropachev/autocatalog/internal/model"
	"github.com/dkropachev/autocatalog/internal/service"
)

// Manager owns all listing mutations. Status is monotonic: once sold, a
// listing never returns to active.
type Manager struct {
	storage service.Storage
}

// New creates a lifecycle manager.
func New(storage service.Storage) *Manager {
	return &Manager{storage: storage}
}

// MarkSold flips the listing to sold. Calling it on an already-sold listing
// is an idempotent no-op reported through alreadySold, not an error. An
// unknown id yields common.ErrNotFound.
func (m *Manager) MarkSold(ctx context.Context, id int64) (alreadySold bool, err error) {
	alreadySold, err = m.storage.MarkSold(ctx, id)
	if err != nil {
		return false, err
	}

	if alreadySold {
		slog.Debug("Listing was already sold", "listing_id", id)
	} else {
		slog.Info("Listing marked sold", "listing_id", id)
	}
	return alreadySold, nil
}

// RecordRepost stores the target reference of a successful repost. The flag
// is set at most once and never cleared; a failed repost is never retried,
// so a listing that missed its repost stays unposted permanently.
func (m *Manager) RecordRepost(ctx context.Context, id int64, ref model.SourceRef) error {
	return m.storage.SetRepostRef(ctx, id, ref)
}
