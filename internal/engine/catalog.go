// Package engine wires the catalog pipeline together: normalization,
// classification, fingerprinting, dedup insert, search and lifecycle.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dkropachev/autocatalog/internal/classify"
	"github.com/dkropachev/autocatalog/internal/filter"
	"github.com/dkropachev/autocatalog/internal/fingerprint"
	"github.com/dkropachev/autocatalog/internal/health"
	"github.com/dkropachev/autocatalog/internal/lifecycle"
	"github.com/dkropachev/autocatalog/internal/model"
	"github.com/dkropachev/autocatalog/internal/normalize"
	"github.com/dkropachev/autocatalog/internal/query"
	"github.com/dkropachev/autocatalog/internal/service"
)

// IngestStatus is the outcome of processing one inbound message.
type IngestStatus int

const (
	// IngestRejected means classification found no year/price pair.
	IngestRejected IngestStatus = iota
	// IngestInserted means a new listing was stored.
	IngestInserted
	// IngestDuplicate means an identical listing already existed.
	IngestDuplicate
)

// IngestResult reports what happened to an inbound message. Listing is set
// for both inserted and duplicate outcomes; for duplicates it carries the
// canonical listing id.
type IngestResult struct {
	Listing *model.Listing
	Status  IngestStatus
}

// Catalog orchestrates the listing pipeline. All dependencies are injected
// at construction; Catalog itself holds no mutable state and is safe for
// concurrent use.
type Catalog struct {
	storage       service.Storage
	classifier    *classify.Classifier
	queries       *query.Engine
	lifecycle     *lifecycle.Manager
	sink          service.RepostSink
	repostTimeout time.Duration
}

// New creates the catalog engine. sink may be nil when the deployment does
// not mirror listings anywhere.
func New(storage service.Storage, classifier *classify.Classifier, queries *query.Engine, lc *lifecycle.Manager, sink service.RepostSink) *Catalog {
	return &Catalog{
		storage:       storage,
		classifier:    classifier,
		queries:       queries,
		lifecycle:     lc,
		sink:          sink,
		repostTimeout: 10 * time.Second,
	}
}

// Ingest runs one raw text event through the pipeline. Rejections and
// duplicates are normal outcomes, not errors; only storage failures return
// a non-nil error, and those commit no partial state.
func (c *Catalog) Ingest(ctx context.Context, msg model.InboundMessage) (IngestResult, error) {
	health.MessagesSeen.Inc()

	text := normalize.Normalize(msg.Text)
	if text == "" {
		health.MessagesRejected.Inc()
		return IngestResult{Status: IngestRejected}, nil
	}

	res := c.classifier.Classify(text)
	if !res.IsListing {
		health.MessagesRejected.Inc()
		return IngestResult{Status: IngestRejected}, nil
	}

	createdAt := msg.ReceivedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	listing := &model.Listing{
		Source:      msg.Source,
		Text:        text,
		Fingerprint: fingerprint.Sum(text),
		Year:        res.Year,
		Price:       res.Price,
		Status:      model.StatusActive,
		CreatedAt:   createdAt.UTC(),
	}

	id, inserted, err := c.storage.InsertIfAbsent(ctx, listing)
	if err != nil {
		return IngestResult{}, fmt.Errorf("failed to store listing: %w", err)
	}
	listing.ID = id

	if !inserted {
		health.ListingsDuplicate.Inc()
		return IngestResult{Status: IngestDuplicate, Listing: listing}, nil
	}

	health.ListingsInserted.Inc()
	slog.Info("Listing stored",
		"listing_id", id,
		"year", listing.Year,
		"price", listing.Price,
		"source", listing.Source)

	if c.sink != nil {
		go c.repost(*listing)
	}

	return IngestResult{Status: IngestInserted, Listing: listing}, nil
}

// repost mirrors a freshly stored listing to the configured sink. It is
// fire-and-forget: a failure is logged and swallowed, the listing keeps
// posted=false permanently, and nothing is rolled back.
func (c *Catalog) repost(listing model.Listing) {
	ctx, cancel := context.WithTimeout(context.Background(), c.repostTimeout)
	defer cancel()

	ref, err := c.sink.Repost(ctx, listing)
	if err != nil {
		health.RepostFailures.Inc()
		slog.Warn("Repost failed, listing stays unposted",
			"listing_id", listing.ID,
			"error", err)
		return
	}

	if err := c.lifecycle.RecordRepost(ctx, listing.ID, ref); err != nil {
		health.RepostFailures.Inc()
		slog.Warn("Failed to record repost ref",
			"listing_id", listing.ID,
			"error", err)
	}
}

// Search parses the query text and returns matching active listings,
// newest first. An empty query returns the newest active listings.
func (c *Catalog) Search(ctx context.Context, queryText string, limit int) ([]model.Listing, error) {
	health.Searches.Inc()
	f := filter.Parse(normalize.Normalize(queryText))
	return c.queries.Search(ctx, f, limit)
}

// Recent returns the newest active listings without filtering.
func (c *Catalog) Recent(ctx context.Context, limit int) ([]model.Listing, error) {
	return c.queries.Recent(ctx, limit)
}

// MarkSold flips a listing to sold; see lifecycle.Manager.MarkSold.
func (c *Catalog) MarkSold(ctx context.Context, id int64) (alreadySold bool, err error) {
	alreadySold, err = c.lifecycle.MarkSold(ctx, id)
	if err == nil && !alreadySold {
		health.ListingsSold.Inc()
	}
	return alreadySold, err
}
