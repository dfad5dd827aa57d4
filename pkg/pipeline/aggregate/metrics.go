package aggregate

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var recordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "emailfinder_records_total",
	Help: "Emitted outcome records by status",
}, []string{"status"})
