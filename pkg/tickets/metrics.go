package tickets

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TicketsCreated is the total number of tickets created.
	TicketsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tickets_created_total",
			Help: "Total number of tickets created",
		},
	)

	// TicketsClosed is the total number of tickets closed, by kind of close.
	TicketsClosed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickets_closed_total",
			Help: "Total number of tickets closed",
		},
		[]string{"kind"},
	)

	// TopicCollections is the total number of topic collectors, by how they ended.
	TopicCollections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickets_topic_collections_total",
			Help: "Total number of topic collectors by outcome",
		},
		[]string{"outcome"},
	)

	// SetupStepFailures is the total number of failed ticket setup steps.
	SetupStepFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickets_setup_step_failures_total",
			Help: "Total number of failed ticket channel setup steps",
		},
		[]string{"step"},
	)
)
