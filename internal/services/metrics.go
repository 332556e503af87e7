package services

import "github.com/prometheus/client_golang/prometheus"

var (
	// moderationDecisions counts moderation outcomes. The outcome label is a
	// fixed set: approved, flagged, too_long, external_link, forbidden_words.
	moderationDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moderation_decisions_total",
			Help: "Total number of moderation decisions by outcome.",
		},
		[]string{"outcome"},
	)

	// accessDecisions counts access validations by result and reason. Reasons
	// come from a closed set of constants, so cardinality stays bounded.
	accessDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "access_decisions_total",
			Help: "Total number of access decisions by result and reason.",
		},
		[]string{"result", "reason"},
	)

	// webhookEvents counts inbound webhook deliveries by event type and outcome
	// (applied, duplicate, ignored, failed).
	webhookEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "Total number of inbound webhook events by type and outcome.",
		},
		[]string{"event", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(moderationDecisions, accessDecisions, webhookEvents)
}
