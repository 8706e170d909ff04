package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crisis_transitions_total",
			Help: "Incident status transitions by source, target and outcome",
		},
		[]string{"from", "to", "outcome"},
	)

	LedgerOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crisis_ledger_operations_total",
			Help: "Resource ledger operations by kind and outcome",
		},
		[]string{"op", "outcome"},
	)

	NotificationFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crisis_notification_failures_total",
			Help: "Notification events that could not be published or delivered",
		},
		[]string{"event", "stage"},
	)

	NotificationsDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crisis_notifications_dropped_total",
			Help: "Notification events dropped because the dispatch buffer was full",
		},
	)
)
