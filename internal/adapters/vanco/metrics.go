package vanco

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	gatewayRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vanco_requests_total",
		Help: "Total number of requests sent to the Vanco gateway",
	}, []string{"operation", "outcome"}) // outcome: success, declined, transport_error, protocol_error

	gatewayRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vanco_request_duration_seconds",
		Help:    "Round-trip time of Vanco gateway requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
)
