package memdb

import "time"

// Metrics receives connect-path outcomes. Implementations must be safe
// for concurrent use; prommetrics provides a Prometheus-backed one.
// Without WithMetrics the connector reports nothing.
type Metrics interface {
	IncConnectTotal(mode, result string)
	ObserveConnectDuration(mode string, d time.Duration)
}
