// Package obs holds the process-wide Prometheus collectors.
package obs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ComplaintsFiled counts anonymous filings.
	ComplaintsFiled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voisafe_complaints_filed_total",
		Help: "Number of complaints filed.",
	})

	// IdentityReveals counts successful identity disclosures.
	IdentityReveals = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voisafe_identity_reveals_total",
		Help: "Number of successful identity reveals.",
	})

	// ChatMessages counts persisted chat messages.
	ChatMessages = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voisafe_chat_messages_total",
		Help: "Number of chat messages persisted.",
	})

	// MappingsPurged counts identity mappings removed by the TTL sweep.
	MappingsPurged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voisafe_identity_mappings_purged_total",
		Help: "Number of expired identity mappings purged.",
	})
)
