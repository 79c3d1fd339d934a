package store

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	operations   *prometheus.CounterVec
	bytesWritten prometheus.Counter
	duration     *prometheus.HistogramVec
}

// newMetrics creates the store metrics on reg. A nil reg leaves them
// unregistered.
func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		// Labels: op (save, load, stat, list, delete), status (ok, not_found, error)
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Total tensor store operations",
		}, []string{"op", "status"}),
		bytesWritten: factory.NewCounter(prometheus.CounterOpts{
			Subsystem: "store",
			Name:      "bytes_written_total",
			Help:      "Total encoded bytes written to the tensor store",
		}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Subsystem: "store",
			Name:      "operation_duration_seconds",
			Help:      "Tensor store operation latency in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"op"}),
	}
}

func (m *metrics) observe(op string, start time.Time, err error) {
	status := "ok"
	switch {
	case errors.Is(err, ErrNotFound):
		status = "not_found"
	case err != nil:
		status = "error"
	}
	m.operations.WithLabelValues(op, status).Inc()
	m.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
