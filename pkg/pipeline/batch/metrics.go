package batch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	batchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "emailfinder_batches_total",
		Help: "Completed batches",
	})

	batchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "emailfinder_batch_duration_seconds",
		Help:    "Wall time per batch including pacing",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 60},
	})
)
