// Package metrics defines the small instrumentation surface the runtime
// emits into. Backends plug in behind these interfaces; the Prometheus
// implementation lives in adapters/prometheus, and everything defaults to
// no-ops.
package metrics

// Counter is a monotonically increasing metric.
type Counter interface {
	Inc()
	// Add increments the counter by delta. delta must be >= 0.
	Add(delta float64)
}

// Gauge is a metric that can go up and down.
type Gauge interface {
	Set(value float64)
	Inc()
	Dec()
	Add(delta float64)
}

// Histogram samples observations, e.g. reductions spent per episode.
type Histogram interface {
	Observe(value float64)
}

// Timer measures one operation. Call ObserveDuration when it completes.
type Timer interface {
	ObserveDuration()
}
