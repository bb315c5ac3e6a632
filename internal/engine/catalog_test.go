package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkropachev/autocatalog/internal/classify"
	"github.com/dkropachev/autocatalog/internal/common"
	"github.com/dkropachev/autocatalog/internal/lifecycle"
	"github.com/dkropachev/autocatalog/internal/model"
	"github.com/dkropachev/autocatalog/internal/query"
)

func testClock() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func newTestCatalog(store *mockStorage) *Catalog {
	cfg := classify.DefaultConfig()
	cfg.Now = testClock

	return New(
		store,
		classify.New(cfg),
		query.New(store, query.Config{DefaultLimit: 5, MaxLimit: 10}),
		lifecycle.New(store),
		nil,
	)
}

func msg(chatID, msgID int64, text string) model.InboundMessage {
	return model.InboundMessage{
		Source:     model.SourceRef{ChatID: chatID, MessageID: msgID},
		Text:       text,
		ReceivedAt: testClock(),
	}
}

func TestIngest_StoresListing(t *testing.T) {
	store := newMockStorage()
	catalog := newTestCatalog(store)
	ctx := context.Background()

	res, err := catalog.Ingest(ctx, msg(-100, 1, "BMW 2019, 2 350 000"))
	require.NoError(t, err)
	assert.Equal(t, IngestInserted, res.Status)
	require.NotNil(t, res.Listing)
	assert.Equal(t, 2019, res.Listing.Year)
	assert.Equal(t, 2350000, res.Listing.Price)
	assert.Equal(t, model.StatusActive, res.Listing.Status)
	assert.NotEmpty(t, res.Listing.Fingerprint)
}

func TestIngest_RejectsNonListing(t *testing.T) {
	store := newMockStorage()
	catalog := newTestCatalog(store)
	ctx := context.Background()

	tests := []struct {
		name string
		text string
	}{
		{name: "no numbers", text: "BMW, no numbers here"},
		{name: "price only", text: "отдам за 1 200 000"},
		{name: "year only", text: "bmw 2015 в отличном состоянии"},
		{name: "empty after normalization", text: "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := catalog.Ingest(ctx, msg(-100, 2, tt.text))
			require.NoError(t, err)
			assert.Equal(t, IngestRejected, res.Status)
			assert.Nil(t, res.Listing)
		})
	}

	assert.Empty(t, store.listings, "rejected messages must not be stored")
}

func TestIngest_DuplicateIsNotAnError(t *testing.T) {
	store := newMockStorage()
	catalog := newTestCatalog(store)
	ctx := context.Background()

	first, err := catalog.Ingest(ctx, msg(-100, 1, "Audi A6 2018, 2 100 000"))
	require.NoError(t, err)
	require.Equal(t, IngestInserted, first.Status)

	// Same wording, different case and different origin: one listing total.
	second, err := catalog.Ingest(ctx, msg(-200, 9, "audi a6 2018, 2 100 000"))
	require.NoError(t, err)
	assert.Equal(t, IngestDuplicate, second.Status)
	require.NotNil(t, second.Listing)
	assert.Equal(t, first.Listing.ID, second.Listing.ID, "duplicate reports the canonical id")
	assert.Len(t, store.listings, 1)
}

func TestIngest_StorageErrorPropagates(t *testing.T) {
	store := newMockStorage()
	store.insertErr = common.NewStorageError("insert listing", errors.New("disk full"))
	catalog := newTestCatalog(store)

	_, err := catalog.Ingest(context.Background(), msg(-100, 1, "BMW 2019, 2 350 000"))
	require.Error(t, err)
	assert.True(t, common.IsStorageError(err))
}

func TestSearch_EndToEnd(t *testing.T) {
	store := newMockStorage()
	catalog := newTestCatalog(store)
	ctx := context.Background()

	seed := []string{
		"Toyota Camry 2019, 1 900 000",
		"Toyota Camry 2015, 1 200 000",
		"BMW 320d 2019, 2 350 000",
	}
	for i, text := range seed {
		res, err := catalog.Ingest(ctx, msg(-100, int64(i), text))
		require.NoError(t, err)
		require.Equal(t, IngestInserted, res.Status)
	}

	t.Run("term plus year plus comparator", func(t *testing.T) {
		got, err := catalog.Search(ctx, "camry 2019 <2500000", 0)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Contains(t, got[0].Text, "Camry 2019")
	})

	t.Run("range filter", func(t *testing.T) {
		got, err := catalog.Search(ctx, "1000000-2000000", 0)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("empty query returns newest active", func(t *testing.T) {
		got, err := catalog.Search(ctx, "", 0)
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})

	t.Run("sold listings never surface", func(t *testing.T) {
		all, err := catalog.Search(ctx, "", 0)
		require.NoError(t, err)
		_, err = catalog.MarkSold(ctx, all[0].ID)
		require.NoError(t, err)

		got, err := catalog.Search(ctx, "", 0)
		require.NoError(t, err)
		assert.Len(t, got, 2)
		for _, l := range got {
			assert.NotEqual(t, all[0].ID, l.ID)
		}
	})
}

func TestMarkSold_Flow(t *testing.T) {
	store := newMockStorage()
	catalog := newTestCatalog(store)
	ctx := context.Background()

	res, err := catalog.Ingest(ctx, msg(-100, 1, "Kia Rio 2020, 1 500 000"))
	require.NoError(t, err)
	id := res.Listing.ID

	alreadySold, err := catalog.MarkSold(ctx, id)
	require.NoError(t, err)
	assert.False(t, alreadySold)

	alreadySold, err = catalog.MarkSold(ctx, id)
	require.NoError(t, err)
	assert.True(t, alreadySold, "second call is an idempotent no-op")

	_, err = catalog.MarkSold(ctx, 404)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

// stubSink records repost calls and can be told to fail.
type stubSink struct {
	err   error
	ref   model.SourceRef
	calls int
}

func (s *stubSink) Repost(_ context.Context, _ model.Listing) (model.SourceRef, error) {
	s.calls++
	if s.err != nil {
		return model.SourceRef{}, s.err
	}
	return s.ref, nil
}

func TestRepost_RecordsRef(t *testing.T) {
	store := newMockStorage()
	catalog := newTestCatalog(store)

	res, err := catalog.Ingest(context.Background(), msg(-100, 1, "VW Polo 2021, 1 450 000"))
	require.NoError(t, err)

	// Attach the sink after ingest and drive the repost synchronously;
	// in production Ingest fires it on a goroutine.
	sink := &stubSink{ref: model.SourceRef{ChatID: -500, MessageID: 77}}
	catalog.sink = sink
	catalog.repost(*res.Listing)

	stored, err := store.GetByID(context.Background(), res.Listing.ID)
	require.NoError(t, err)
	assert.True(t, stored.Posted)
	require.NotNil(t, stored.RepostRef)
	assert.Equal(t, sink.ref, *stored.RepostRef)
}

func TestRepost_FailureLeavesListingUnposted(t *testing.T) {
	store := newMockStorage()
	catalog := newTestCatalog(store)

	res, err := catalog.Ingest(context.Background(), msg(-100, 1, "VW Polo 2021, 1 450 000"))
	require.NoError(t, err)

	catalog.sink = &stubSink{err: errors.New("sink unavailable")}
	catalog.repost(*res.Listing)

	stored, err := store.GetByID(context.Background(), res.Listing.ID)
	require.NoError(t, err)
	assert.False(t, stored.Posted, "failed repost must not roll back or mark the listing")
	assert.Nil(t, stored.RepostRef)
}
