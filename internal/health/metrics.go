// Package health exposes liveness and Prometheus metrics over HTTP.
package health

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MessagesSeen counts every inbound text event, listing or not.
	MessagesSeen = promauto.NewCounter(prometheus.CounterOpts{
		Name: "autocatalog_messages_seen_total",
		Help: "Total inbound text events processed",
	})

	// MessagesRejected counts events the classifier decided were not listings.
	MessagesRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "autocatalog_messages_rejected_total",
		Help: "Inbound events rejected by classification",
	})

	// ListingsInserted counts newly stored listings.
	ListingsInserted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "autocatalog_listings_inserted_total",
		Help: "Listings stored after classification and dedup",
	})

	// ListingsDuplicate counts inserts dropped by the fingerprint constraint.
	ListingsDuplicate = promauto.NewCounter(prometheus.CounterOpts{
		Name: "autocatalog_listings_duplicate_total",
		Help: "Inserts ignored because the fingerprint already existed",
	})

	// Searches counts search requests.
	Searches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "autocatalog_searches_total",
		Help: "Search queries evaluated",
	})

	// ListingsSold counts successful active-to-sold transitions.
	ListingsSold = promauto.NewCounter(prometheus.CounterOpts{
		Name: "autocatalog_listings_sold_total",
		Help: "Listings marked sold",
	})

	// RepostFailures counts best-effort reposts that did not go through.
	RepostFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "autocatalog_repost_failures_total",
		Help: "Repost attempts that failed and were dropped",
	})
)
