package config

import (
	"net"
	"strconv"
)

// MetricsConfig controls the Prometheus dispatch metrics and their HTTP endpoint
type MetricsConfig struct {
	// Enabled registers the metrics behavior and starts the endpoint
	Enabled bool `mapstructure:"enabled"`

	Port int    `mapstructure:"port" validate:"omitempty,min=1024,max=65535"`
	Host string `mapstructure:"host"`

	// Path the registry is served on (default: /metrics)
	Path string `mapstructure:"path"`
}

// ListenAddress returns host:port for the metrics server
func (c MetricsConfig) ListenAddress() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
