package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/dkropachev/autocatalog/internal/cli"
	"github.com/dkropachev/autocatalog/internal/common"
	"github.com/dkropachev/autocatalog/internal/engine"
	"github.com/dkropachev/autocatalog/internal/health"
	"github.com/dkropachev/autocatalog/internal/model"
)

// wireEvent is the JSONL form a transport writes to stdin, one per line:
//
//	{"kind":"message","chat_id":-100,"message_id":1,"text":"BMW 2019, 2 350 000"}
//	{"kind":"query","query":"camry 2019 <2500000","limit":5}
//	{"kind":"mark_sold","listing_id":3}
type wireEvent struct {
	Kind      string `json:"kind"`
	Text      string `json:"text"`
	Query     string `json:"query"`
	ChatID    int64  `json:"chat_id"`
	MessageID int64  `json:"message_id"`
	ListingID int64  `json:"listing_id"`
	Limit     int    `json:"limit"`
	Timestamp int64  `json:"ts"`
}

func serveCmd() *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Process transport events from stdin and serve health/metrics",
		Long: `Run the catalog event loop: JSONL events are read from stdin, routed
to the classification/search/lifecycle handlers on a worker pool, and
query results are written to stdout. A health and Prometheus metrics
listener runs alongside.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			router := engine.NewRouter(a.catalog)

			// Health/metrics listener lives for the whole run.
			healthErr := make(chan error, 1)
			go func() {
				healthErr <- health.NewServer(a.cfg.Health.Addr).Run(ctx)
			}()

			events := make(chan engine.Event)
			go func() {
				defer close(events)
				scanner := bufio.NewScanner(os.Stdin)
				scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
				for scanner.Scan() {
					ev, ok := decodeEvent(scanner.Bytes())
					if !ok {
						continue
					}
					select {
					case events <- ev:
					case <-ctx.Done():
						return
					}
				}
			}()

			var out sync.Mutex
			router.Run(ctx, events, workers, func(ev engine.Event, resp *engine.Response, err error) {
				out.Lock()
				defer out.Unlock()
				respond(ev, resp, err)
			})

			slog.Info("Event stream closed, shutting down")
			select {
			case err := <-healthErr:
				return err
			default:
				return nil
			}
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 4, "number of concurrent event workers")
	return cmd
}

func decodeEvent(line []byte) (engine.Event, bool) {
	var we wireEvent
	if err := json.Unmarshal(line, &we); err != nil {
		slog.Warn("Dropping malformed event", "error", err)
		return engine.Event{}, false
	}

	switch engine.EventKind(we.Kind) {
	case engine.EventMessage:
		receivedAt := time.Now()
		if we.Timestamp > 0 {
			receivedAt = time.Unix(we.Timestamp, 0)
		}
		return engine.Event{
			Kind: engine.EventMessage,
			Message: model.InboundMessage{
				Source:     model.SourceRef{ChatID: we.ChatID, MessageID: we.MessageID},
				Text:       we.Text,
				ReceivedAt: receivedAt,
			},
		}, true
	case engine.EventQuery:
		return engine.Event{Kind: engine.EventQuery, Query: we.Query, Limit: we.Limit}, true
	case engine.EventMarkSold:
		return engine.Event{Kind: engine.EventMarkSold, ListingID: we.ListingID}, true
	default:
		slog.Warn("Dropping event with unknown kind", "kind", we.Kind)
		return engine.Event{}, false
	}
}

// respond writes user-facing output for interactive event kinds. Ingest
// outcomes are log-only: the original group chat stays silent.
func respond(ev engine.Event, resp *engine.Response, err error) {
	if err != nil {
		if ev.Kind == engine.EventMarkSold && errors.Is(err, common.ErrNotFound) {
			fmt.Println(cli.FormatError(fmt.Sprintf("Listing %d not found", ev.ListingID)))
			return
		}
		slog.Error("Event failed", "kind", ev.Kind, "error", err)
		if ev.Kind != engine.EventMessage {
			fmt.Println(cli.FormatError("Something went wrong, try again"))
		}
		return
	}

	switch ev.Kind {
	case engine.EventQuery:
		fmt.Println(cli.FormatListings("Search: "+ev.Query, resp.Listings))
	case engine.EventMarkSold:
		if resp.AlreadySold {
			fmt.Println(cli.FormatInfo(fmt.Sprintf("Listing %d was already sold", ev.ListingID)))
		} else {
			fmt.Println(cli.FormatInfo(fmt.Sprintf("Listing %d marked sold ✅", ev.ListingID)))
		}
	}
}
