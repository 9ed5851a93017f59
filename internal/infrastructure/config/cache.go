package config

import "time"

// CacheConfig holds query cache configuration
type CacheConfig struct {
	// Backend: memory or redis
	Type string `mapstructure:"type" validate:"required,oneof=memory redis"`

	// Redis address (host:port), required for the redis backend
	Address  string `mapstructure:"address" validate:"required_if=Type redis"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"min=0"`

	// Key prefix applied to every cache entry
	Prefix string `mapstructure:"prefix"`

	// Default entry lifetime
	TTL time.Duration `mapstructure:"ttl" validate:"required"`
}
