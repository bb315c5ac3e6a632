// Package repost mirrors new listings to a secondary destination.
package repost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dkropachev/autocatalog/internal/model"
)

// WebhookSink POSTs a listing summary to a configured URL. It implements
// service.RepostSink and is strictly best-effort: callers invoke it at most
// once per listing and never retry.
type WebhookSink struct {
	client *http.Client
	url    string
}

// NewWebhookSink creates a sink targeting url.
func NewWebhookSink(url string) *WebhookSink {
	return &WebhookSink{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// payload is the wire form of a mirrored listing.
type payload struct {
	Text      string `json:"text"`
	Source    string `json:"source"`
	ID        int64  `json:"id"`
	Year      int    `json:"year"`
	Price     int    `json:"price"`
	CreatedAt int64  `json:"created_at"`
}

// repostAck is the sink's response identifying where the copy landed.
type repostAck struct {
	ChatID    int64 `json:"chat_id"`
	MessageID int64 `json:"message_id"`
}

// Repost delivers the listing and returns the target reference reported by
// the receiver.
func (s *WebhookSink) Repost(ctx context.Context, listing model.Listing) (model.SourceRef, error) {
	body, err := json.Marshal(payload{
		ID:        listing.ID,
		Text:      listing.Text,
		Source:    listing.Source.String(),
		Year:      listing.Year,
		Price:     listing.Price,
		CreatedAt: listing.CreatedAt.Unix(),
	})
	if err != nil {
		return model.SourceRef{}, fmt.Errorf("failed to encode listing: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return model.SourceRef{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return model.SourceRef{}, fmt.Errorf("repost request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return model.SourceRef{}, fmt.Errorf("repost rejected with status %d", resp.StatusCode)
	}

	var ack repostAck
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		return model.SourceRef{}, fmt.Errorf("failed to decode repost ack: %w", err)
	}

	return model.SourceRef{ChatID: ack.ChatID, MessageID: ack.MessageID}, nil
}
