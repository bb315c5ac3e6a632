package engine

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/dkropachev/autocatalog/internal/common"
	"github.com/dkropachev/autocatalog/internal/model"
	"github.com/dkropachev/autocatalog/internal/service"
)

// mockStorage is an in-memory service.Storage for engine tests.
type mockStorage struct {
	insertErr error
	listings  map[int64]*model.Listing
	byFP      map[string]int64
	nextID    int64
	mu        sync.Mutex
}

func newMockStorage() *mockStorage {
	return &mockStorage{
		listings: make(map[int64]*model.Listing),
		byFP:     make(map[string]int64),
	}
}

func (m *mockStorage) InsertIfAbsent(_ context.Context, listing *model.Listing) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.insertErr != nil {
		return 0, false, m.insertErr
	}

	if id, ok := m.byFP[listing.Fingerprint]; ok {
		return id, false, nil
	}

	m.nextID++
	stored := *listing
	stored.ID = m.nextID
	m.listings[stored.ID] = &stored
	m.byFP[stored.Fingerprint] = stored.ID
	return stored.ID, true, nil
}

func (m *mockStorage) GetByID(_ context.Context, id int64) (*model.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	listing, ok := m.listings[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	copied := *listing
	return &copied, nil
}

func (m *mockStorage) QueryActive(_ context.Context, pred service.ListingPredicate, limit int) ([]model.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []model.Listing
	for _, l := range m.listings {
		if l.Status != model.StatusActive {
			continue
		}
		if pred.Year != nil && l.Year != *pred.Year {
			continue
		}
		if pred.PriceMin != nil && pred.PriceMax != nil {
			if l.Price < *pred.PriceMin || l.Price > *pred.PriceMax {
				continue
			}
		} else if pred.PriceOp != "" && !pred.PriceOp.Matches(l.Price, pred.PriceVal) {
			continue
		}
		text := strings.ToLower(l.Text)
		ok := true
		for _, term := range pred.Terms {
			if !strings.Contains(text, strings.ToLower(term)) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		matched = append(matched, *l)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (m *mockStorage) MarkSold(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	listing, ok := m.listings[id]
	if !ok {
		return false, common.ErrNotFound
	}
	if listing.Status == model.StatusSold {
		return true, nil
	}
	listing.Status = model.StatusSold
	return false, nil
}

func (m *mockStorage) SetRepostRef(_ context.Context, id int64, ref model.SourceRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	listing, ok := m.listings[id]
	if !ok {
		return common.ErrNotFound
	}
	if listing.Posted {
		return nil
	}
	listing.Posted = true
	listing.RepostRef = &ref
	return nil
}

func (m *mockStorage) Migrate(_ context.Context) error { return nil }

func (m *mockStorage) Close() error { return nil }
