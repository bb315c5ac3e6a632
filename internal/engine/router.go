package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dkropachev/autocatalog/internal/model"
)

// EventKind discriminates the events a transport can deliver.
type EventKind string

const (
	// EventMessage is a raw chat message to classify and maybe store.
	EventMessage EventKind = "message"
	// EventQuery is a free-form search request.
	EventQuery EventKind = "query"
	// EventMarkSold asks to flip a listing to sold.
	EventMarkSold EventKind = "mark_sold"
)

// Event is a single transport-delivered unit of work.
type Event struct {
	Message   model.InboundMessage
	Query     string
	Kind      EventKind
	Limit     int
	ListingID int64
}

// Response carries the outcome back to the transport for presentation.
// Exactly one group of fields is populated, matching the event kind.
type Response struct {
	Ingest      *IngestResult
	Listings    []model.Listing
	AlreadySold bool
}

// Handler processes one event kind.
type Handler func(ctx context.Context, ev Event) (*Response, error)

// Router is an explicit, immutable routing table from event kind to
// handler. It is constructed once at startup and never mutated afterwards;
// dispatch is a pure map lookup.
type Router struct {
	handlers map[EventKind]Handler
}

// NewRouter builds the routing table for the catalog.
func NewRouter(c *Catalog) *Router {
	return &Router{
		handlers: map[EventKind]Handler{
			EventMessage: func(ctx context.Context, ev Event) (*Response, error) {
				res, err := c.Ingest(ctx, ev.Message)
				if err != nil {
					return nil, err
				}
				return &Response{Ingest: &res}, nil
			},
			EventQuery: func(ctx context.Context, ev Event) (*Response, error) {
				listings, err := c.Search(ctx, ev.Query, ev.Limit)
				if err != nil {
					return nil, err
				}
				return &Response{Listings: listings}, nil
			},
			EventMarkSold: func(ctx context.Context, ev Event) (*Response, error) {
				alreadySold, err := c.MarkSold(ctx, ev.ListingID)
				if err != nil {
					return nil, err
				}
				return &Response{AlreadySold: alreadySold}, nil
			},
		},
	}
}

// Dispatch routes the event to its handler.
func (r *Router) Dispatch(ctx context.Context, ev Event) (*Response, error) {
	handler, ok := r.handlers[ev.Kind]
	if !ok {
		return nil, fmt.Errorf("no handler for event kind %q", ev.Kind)
	}
	return handler(ctx, ev)
}

// Respond receives the outcome of each dispatched event. err and resp are
// mutually exclusive.
type Respond func(ev Event, resp *Response, err error)

// Run drains the event channel on a pool of workers until the channel is
// closed or the context is canceled. Events are independent; no ordering is
// guaranteed between them, and none is needed — classification is stateless
// per message and dedup is enforced by the storage layer.
func (r *Router) Run(ctx context.Context, events <-chan Event, workers int, respond Respond) {
	if workers <= 0 {
		workers = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case ev, ok := <-events:
					if !ok {
						return
					}
					resp, err := r.Dispatch(ctx, ev)
					if respond != nil {
						respond(ev, resp, err)
					}
				}
			}
		}()
	}

	wg.Wait()
	slog.Debug("Event loop drained")
}
