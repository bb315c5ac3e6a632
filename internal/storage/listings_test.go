package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/dkropachev/autocatalog/internal/common"
	"github.com/dkropachev/autocatalog/internal/fingerprint"
	"github.com/dkropachev/autocatalog/internal/model"
	"github.com/dkropachev/autocatalog/internal/service"
)

// Helper function to create test storage.
func createTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to migrate: %v", err)
	}

	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testListing(text string, year, price int, createdAt time.Time) *model.Listing {
	return &model.Listing{
		Source:      model.SourceRef{ChatID: -100123, MessageID: 42},
		Text:        text,
		Fingerprint: fingerprint.Sum(text),
		Year:        year,
		Price:       price,
		Status:      model.StatusActive,
		CreatedAt:   createdAt,
	}
}

func mustInsert(t *testing.T, store *SQLiteStorage, listing *model.Listing) int64 {
	t.Helper()
	id, inserted, err := store.InsertIfAbsent(context.Background(), listing)
	if err != nil {
		t.Fatalf("InsertIfAbsent failed: %v", err)
	}
	if !inserted {
		t.Fatalf("expected insert for %q, got duplicate", listing.Text)
	}
	return id
}

func TestInsertIfAbsent_Dedup(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	now := time.Now().UTC()

	first := testListing("BMW X5 2019, 2 350 000", 2019, 2350000, now)
	id1, inserted, err := store.InsertIfAbsent(ctx, first)
	if err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	if !inserted {
		t.Fatal("first insert should report inserted=true")
	}

	// Same text from a different chat: still a duplicate, because the
	// fingerprint ignores the source entirely.
	second := testListing("BMW X5 2019, 2 350 000", 2019, 2350000, now)
	second.Source = model.SourceRef{ChatID: -100999, MessageID: 7}
	id2, inserted, err := store.InsertIfAbsent(ctx, second)
	if err != nil {
		t.Fatalf("duplicate insert failed: %v", err)
	}
	if inserted {
		t.Fatal("duplicate insert should report inserted=false")
	}
	if id1 != id2 {
		t.Errorf("duplicate should resolve to canonical id %d, got %d", id1, id2)
	}

	listings, err := store.QueryActive(ctx, service.ListingPredicate{}, 10)
	if err != nil {
		t.Fatalf("QueryActive failed: %v", err)
	}
	if len(listings) != 1 {
		t.Errorf("expected exactly one stored listing, got %d", len(listings))
	}
}

func TestGetByID(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	id := mustInsert(t, store, testListing("Audi A6 2018, 2 100 000", 2018, 2100000, time.Now().UTC()))

	got, err := store.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Year != 2018 || got.Price != 2100000 || got.Status != model.StatusActive {
		t.Errorf("unexpected listing: %+v", got)
	}
	if got.Source.ChatID != -100123 || got.Source.MessageID != 42 {
		t.Errorf("source ref not preserved: %+v", got.Source)
	}

	if _, err := store.GetByID(ctx, 99999); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown id, got %v", err)
	}
}

func TestQueryActive_Predicate(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	mustInsert(t, store, testListing("BMW 320d 2019, 2 350 000", 2019, 2350000, base))
	mustInsert(t, store, testListing("Toyota Camry 2019, 1 900 000", 2019, 1900000, base.Add(time.Minute)))
	mustInsert(t, store, testListing("Toyota Camry 2015, 1 200 000", 2015, 1200000, base.Add(2*time.Minute)))

	intPtr := func(v int) *int { return &v }

	t.Run("year filter", func(t *testing.T) {
		got, err := store.QueryActive(ctx, service.ListingPredicate{Year: intPtr(2019)}, 10)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 listings for year 2019, got %d", len(got))
		}
	})

	t.Run("price range inclusive", func(t *testing.T) {
		got, err := store.QueryActive(ctx, service.ListingPredicate{
			PriceMin: intPtr(1200000),
			PriceMax: intPtr(1900000),
		}, 10)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 listings in range, got %d", len(got))
		}
	})

	t.Run("price comparator", func(t *testing.T) {
		got, err := store.QueryActive(ctx, service.ListingPredicate{
			PriceOp:  model.OpLess,
			PriceVal: 2000000,
		}, 10)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 listings below 2000000, got %d", len(got))
		}
	})

	t.Run("terms are case-insensitive and ANDed", func(t *testing.T) {
		got, err := store.QueryActive(ctx, service.ListingPredicate{
			Terms: []string{"camry", "2015"},
		}, 10)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 1 || got[0].Year != 2015 {
			t.Fatalf("expected the 2015 camry, got %+v", got)
		}
	})

	t.Run("no matches", func(t *testing.T) {
		got, err := store.QueryActive(ctx, service.ListingPredicate{Terms: []string{"vesta"}}, 10)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 0 {
			t.Fatalf("expected no matches, got %d", len(got))
		}
	})
}

func TestQueryActive_OrderingAndLimit(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	mustInsert(t, store, testListing("first 2015 999 000", 2015, 999000, base))
	mustInsert(t, store, testListing("second 2015 999 000 one", 2015, 999000, base.Add(time.Minute)))
	// Same timestamp as "second": the higher id must come first.
	mustInsert(t, store, testListing("third 2015 999 000 two", 2015, 999000, base.Add(time.Minute)))

	got, err := store.QueryActive(ctx, service.ListingPredicate{}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 listings, got %d", len(got))
	}
	if got[0].ID < got[1].ID || got[1].ID < got[2].ID {
		t.Errorf("expected descending ids, got %d, %d, %d", got[0].ID, got[1].ID, got[2].ID)
	}

	limited, err := store.QueryActive(ctx, service.ListingPredicate{}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 2 {
		t.Errorf("expected limit of 2 respected, got %d", len(limited))
	}
}

func TestQueryActive_NeverReturnsSold(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	id := mustInsert(t, store, testListing("Kia Rio 2020, 1 500 000", 2020, 1500000, time.Now().UTC()))

	if _, err := store.MarkSold(ctx, id); err != nil {
		t.Fatalf("MarkSold failed: %v", err)
	}

	// Even a predicate that matches the sold listing exactly must not
	// surface it.
	intPtr := func(v int) *int { return &v }
	got, err := store.QueryActive(ctx, service.ListingPredicate{
		Year:     intPtr(2020),
		PriceOp:  model.OpEqual,
		PriceVal: 1500000,
		Terms:    []string{"rio"},
	}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("sold listing leaked into search results: %+v", got)
	}
}

func TestMarkSold_Idempotent(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	id := mustInsert(t, store, testListing("Mazda 6 2017, 1 650 000", 2017, 1650000, time.Now().UTC()))

	alreadySold, err := store.MarkSold(ctx, id)
	if err != nil {
		t.Fatalf("first MarkSold failed: %v", err)
	}
	if alreadySold {
		t.Error("first call should report alreadySold=false")
	}

	alreadySold, err = store.MarkSold(ctx, id)
	if err != nil {
		t.Fatalf("second MarkSold failed: %v", err)
	}
	if !alreadySold {
		t.Error("second call should report alreadySold=true")
	}

	got, err := store.GetByID(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != model.StatusSold {
		t.Errorf("expected sold status, got %s", got.Status)
	}
}

func TestMarkSold_NotFound(t *testing.T) {
	store := createTestStorage(t)

	if _, err := store.MarkSold(context.Background(), 12345); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSetRepostRef_AtMostOnce(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	id := mustInsert(t, store, testListing("VW Polo 2021, 1 450 000", 2021, 1450000, time.Now().UTC()))

	ref := model.SourceRef{ChatID: -100555, MessageID: 9}
	if err := store.SetRepostRef(ctx, id, ref); err != nil {
		t.Fatalf("SetRepostRef failed: %v", err)
	}

	// A second ref must not overwrite the first.
	if err := store.SetRepostRef(ctx, id, model.SourceRef{ChatID: -1, MessageID: 1}); err != nil {
		t.Fatalf("second SetRepostRef failed: %v", err)
	}

	got, err := store.GetByID(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Posted {
		t.Error("expected posted flag set")
	}
	if got.RepostRef == nil || *got.RepostRef != ref {
		t.Errorf("expected original repost ref %v, got %v", ref, got.RepostRef)
	}

	if err := store.SetRepostRef(ctx, 99999, ref); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown id, got %v", err)
	}
}

func TestRoundTrip_YearAndPrice(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	listing := testListing("Skoda Octavia 2022, 2 750 000", 2022, 2750000, time.Now().UTC())
	id := mustInsert(t, store, listing)

	intPtr := func(v int) *int { return &v }
	got, err := store.QueryActive(ctx, service.ListingPredicate{
		Year:     intPtr(2022),
		PriceOp:  model.OpEqual,
		PriceVal: 2750000,
	}, 10)
	if err != nil {
		t.Fatal(err)
	}

	found := false
	for _, l := range got {
		if l.ID == id {
			found = true
		}
	}
	if !found {
		t.Errorf("inserted listing not returned by exact year+price search: %+v", got)
	}
}
