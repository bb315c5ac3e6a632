// Package model defines the core domain types for the auto catalog.
package model

import (
	"fmt"
	"time"
)

// ListingStatus tracks the lifecycle of a listing.
type ListingStatus string

const (
	// StatusActive is the initial state of every listing.
	StatusActive ListingStatus = "active"
	// StatusSold is terminal; a sold listing never becomes active again.
	StatusSold ListingStatus = "sold"
)

// SourceRef identifies where a message originated: the chat it was posted
// in and the message id within that chat.
type SourceRef struct {
	ChatID    int64
	MessageID int64
}

func (r SourceRef) String() string {
	return fmt.Sprintf("%d:%d", r.ChatID, r.MessageID)
}

// Listing is a classified, deduplicated sale record. All fields except
// Status, Posted and RepostRef are immutable after creation.
type Listing struct {
	CreatedAt   time.Time
	Text        string // normalized text, used for matching and display
	Fingerprint string // content hash, unique across all listings
	RepostRef   *SourceRef
	Source      SourceRef
	ID          int64
	Year        int
	Price       int
	Status      ListingStatus
	Posted      bool
}

// Sold reports whether the listing has been marked sold.
func (l *Listing) Sold() bool {
	return l.Status == StatusSold
}

// InboundMessage is a raw text event delivered by the transport layer.
type InboundMessage struct {
	ReceivedAt time.Time
	Text       string
	Source     SourceRef
}

// ClassifyResult is the outcome of running the classifier over a message.
// Year and Price are only meaningful when IsListing is true; a message with
// one field but not the other is rejected outright.
type ClassifyResult struct {
	IsListing bool
	Year      int
	Price     int
}
