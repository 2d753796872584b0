package config

import "time"

// ServerConfig is the root configuration for minikv-server.
type ServerConfig struct {
	Server ServerSection `koanf:"server"`
	Limits LimitsSection `koanf:"limits"`
	Log    LogSection    `koanf:"log"`
}

// ServerSection configures the listeners.
type ServerSection struct {
	Redis   RedisConfig   `koanf:"redis"`
	Metrics MetricsConfig `koanf:"metrics"`
}

// RedisConfig configures the RESP listener.
type RedisConfig struct {
	Addr string `koanf:"addr"`
	// IdleTimeout closes connections that send nothing for this long.
	// Zero disables it.
	IdleTimeout  time.Duration `koanf:"idle_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	// MaxBufferBytes bounds the unparsed bytes buffered per connection.
	MaxBufferBytes int `koanf:"max_buffer_bytes"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

// LimitsSection configures resource limits.
type LimitsSection struct {
	MaxClients int `koanf:"max_clients"`
	// RateLimit is commands per second per connection. Zero disables it.
	RateLimit float64 `koanf:"rate_limit"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
