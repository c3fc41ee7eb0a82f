// Package metrics holds the Prometheus collectors for the TCP fabric.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ClientCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fabric_client_calls_total",
		Help: "Outbound TCP calls by target address, action and result.",
	}, []string{"addr", "action", "result"})

	ClientCallSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fabric_client_call_seconds",
		Help:    "Latency of outbound TCP calls, connect to close.",
		Buckets: prometheus.DefBuckets,
	}, []string{"addr", "action"})

	ServerRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fabric_server_requests_total",
		Help: "Requests handled by a service listener by action and envelope status.",
	}, []string{"service", "action", "status"})

	ServerConnsInFlight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "fabric_server_conns_in_flight",
		Help: "Connections currently held by a service listener.",
	}, []string{"service"})
)

// Handler serves the default registry.
func Handler() http.Handler { return promhttp.Handler() }
