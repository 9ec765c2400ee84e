package prommetrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PromMetrics implements memdb.Metrics using Prometheus.
// Register it with your metrics handler to expose connect statistics.
type PromMetrics struct {
	connectTotal    *prometheus.CounterVec
	connectDuration *prometheus.HistogramVec
}

func registerCollector(reg prometheus.Registerer, c prometheus.Collector) error {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return nil
		}
		return fmt.Errorf("register collector: %w", err)
	}
	return nil
}

// New creates a PromMetrics instance and registers all metrics with the provided registry.
// Namespace and subsystem are used as prefixes for metric names.
//
// Metrics registered:
//   - {namespace}_{subsystem}_connect_total{mode, result} - counter of connect attempts by mode (direct/sentinel) and result (success/error)
//   - {namespace}_{subsystem}_connect_duration_seconds{mode} - histogram of successful connect duration
//
// Returns error if reg is nil or if registration fails (except AlreadyRegisteredError).
func New(reg prometheus.Registerer, namespace, subsystem string) (*PromMetrics, error) {
	if reg == nil {
		return nil, errors.New("prometheus registerer is nil")
	}

	pm := &PromMetrics{
		connectTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "connect_total", Help: "Total connect attempts by mode and result",
		}, []string{"mode", "result"}),

		connectDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name:    "connect_duration_seconds",
			Help:    "Duration of successful connects",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"mode"}),
	}

	for _, c := range []prometheus.Collector{pm.connectTotal, pm.connectDuration} {
		if err := registerCollector(reg, c); err != nil {
			return nil, err
		}
	}

	return pm, nil
}

func (p *PromMetrics) IncConnectTotal(mode, result string) {
	p.connectTotal.WithLabelValues(mode, result).Inc()
}

func (p *PromMetrics) ObserveConnectDuration(mode string, d time.Duration) {
	p.connectDuration.WithLabelValues(mode).Observe(d.Seconds())
}
