package resolver

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	resolverRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "emailfinder_resolver_requests_total",
		Help: "Resolver calls by outcome status",
	}, []string{"status"})

	resolverRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "emailfinder_resolver_request_duration_seconds",
		Help:    "Resolver call duration in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	})

	resolverErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "emailfinder_resolver_errors_total",
		Help: "Resolver call failures by error class",
	}, []string{"class"})

	validatorRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "emailfinder_validator_requests_total",
		Help: "Email validation calls by verdict",
	}, []string{"verdict"})
)
