package config

import "time"

// Default configuration values.
const (
	DefaultRedisAddr      = "127.0.0.1:6378"
	DefaultIdleTimeout    = time.Duration(0)
	DefaultWriteTimeout   = 30 * time.Second
	DefaultMaxBufferBytes = 4 << 20 // fits resp.MaxBulkBytes

	DefaultMetricsAddr = "127.0.0.1:9378"

	DefaultMaxClients = 100

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			Redis: RedisConfig{
				Addr:           DefaultRedisAddr,
				IdleTimeout:    DefaultIdleTimeout,
				WriteTimeout:   DefaultWriteTimeout,
				MaxBufferBytes: DefaultMaxBufferBytes,
			},
			Metrics: MetricsConfig{
				Enabled: false,
				Addr:    DefaultMetricsAddr,
			},
		},
		Limits: LimitsSection{
			MaxClients: DefaultMaxClients,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
