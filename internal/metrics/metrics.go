// Package metrics provides Prometheus instrumentation for the bot backend.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// NegotiationsStarted counts exchange negotiations opened.
	NegotiationsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tabadex_negotiations_started_total",
		Help: "Total number of exchange negotiations started",
	})

	// NegotiationsCompleted counts negotiations that ended with an order.
	NegotiationsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tabadex_negotiations_completed_total",
		Help: "Total number of exchange negotiations completed with an order",
	})

	// NegotiationsCanceled counts negotiations ended without an order.
	NegotiationsCanceled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tabadex_negotiations_canceled_total",
		Help: "Total number of exchange negotiations canceled",
	})

	// OrdersCreated counts orders persisted after upstream creation.
	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tabadex_orders_created_total",
		Help: "Total number of exchange orders created",
	})

	// BroadcastsSent counts per-user broadcast deliveries by outcome.
	BroadcastsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tabadex_broadcast_messages_total",
		Help: "Total broadcast messages sent, partitioned by outcome",
	}, []string{"outcome"})

	// HTTPRequestsTotal counts gateway requests by method, path and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tabadex_http_requests_total",
		Help: "Total HTTP requests served by the gateway",
	}, []string{"method", "path", "status"})
)
