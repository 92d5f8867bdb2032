// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WebhooksReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhooks_received_total",
			Help: "Total number of webhook requests received",
		},
		[]string{"route"},
	)

	WebhooksRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhooks_rejected_total",
			Help: "Total number of webhook requests rejected before domain logic",
		},
		[]string{"route", "reason"},
	)

	DuplicateSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duplicate_submissions_total",
			Help: "Total number of idempotent webhook replays",
		},
		[]string{"route"},
	)

	PipelineTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_transitions_total",
			Help: "Total number of application stage/status transitions",
		},
		[]string{"action", "to"},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Total number of candidate notifications sent",
		},
		[]string{"template"},
	)

	NotificationsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_failed_total",
			Help: "Total number of candidate notifications that failed to send",
		},
		[]string{"template"},
	)
)
