package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// DispatchMetricsCollector handles all mediator dispatch metrics
type DispatchMetricsCollector struct {
	requestDuration *prometheus.HistogramVec
	requestsTotal   *prometheus.CounterVec
	inFlight        *prometheus.GaugeVec
}

// NewDispatchMetricsCollector creates a new dispatch metrics collector
func NewDispatchMetricsCollector() *DispatchMetricsCollector {
	return &DispatchMetricsCollector{
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "request_duration_seconds",
				Help:      "Request dispatch duration distribution",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
			},
			[]string{"request", "kind", "status"},
		),

		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "requests_total",
				Help:      "Total number of dispatched requests by type, kind and status",
			},
			[]string{"request", "kind", "status"},
		),

		inFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "requests_in_flight",
				Help:      "Requests currently inside the pipeline",
			},
			[]string{"request"},
		),
	}
}

// Register registers all dispatch metrics with registerer
func (c *DispatchMetricsCollector) Register(registerer prometheus.Registerer) error {
	if registerer == nil {
		return nil // Metrics not enabled
	}

	for _, metric := range []prometheus.Collector{
		c.requestDuration,
		c.requestsTotal,
		c.inFlight,
	} {
		if err := registerer.Register(metric); err != nil {
			return err
		}
	}

	return nil
}

// RecordDispatch records the outcome of one dispatch
func (c *DispatchMetricsCollector) RecordDispatch(requestName, kind, status string, duration float64) {
	c.requestDuration.WithLabelValues(requestName, kind, status).Observe(duration)
	c.requestsTotal.WithLabelValues(requestName, kind, status).Inc()
}

// Started marks a request as entering the pipeline and returns the matching done func
func (c *DispatchMetricsCollector) Started(requestName string) func() {
	gauge := c.inFlight.WithLabelValues(requestName)
	gauge.Inc()
	return gauge.Dec
}
