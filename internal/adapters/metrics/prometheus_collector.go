package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	namespace = "grpc_mediator"
	subsystem = "dispatch"
)

// InitRegistry creates the daemon's registry with the Go runtime and process collectors.
// Dispatch metrics are added by DispatchMetricsCollector.Register.
func InitRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry
}
