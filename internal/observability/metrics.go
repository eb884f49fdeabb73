// README: Prometheus metrics for rides, dispatch, and realtime presence.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RidesCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gocab", Name: "rides_created_total", Help: "Total rides created"})

	RideTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "gocab", Name: "ride_transitions_total", Help: "Ride state transitions applied"},
		[]string{"to"},
	)

	OffersSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gocab", Name: "ride_offers_sent_total", Help: "Ride offers emitted to captain channels"})

	DispatchSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "gocab", Name: "dispatch_skipped_total", Help: "Dispatch attempts that sent zero offers"},
		[]string{"reason"},
	)

	ConnectedClients = promauto.NewGaugeVec(
		prometheus.GaugeOpts{Namespace: "gocab", Name: "connected_clients", Help: "Live realtime connections"},
		[]string{"role"},
	)
)
