package config

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/yndnr/minikv/internal/telemetry/logger"
)

// minBufferBytes leaves room for at least one small request.
const minBufferBytes = 1024

// Verify validates the configuration and returns all problems found.
func Verify(cfg *ServerConfig) error {
	return errors.Join(
		verifyServer(&cfg.Server),
		verifyLimits(&cfg.Limits),
		verifyLog(&cfg.Log),
	)
}

func verifyServer(cfg *ServerSection) error {
	var errs []error

	if err := verifyAddr("server.redis.addr", cfg.Redis.Addr); err != nil {
		errs = append(errs, err)
	}
	if cfg.Redis.IdleTimeout < 0 {
		errs = append(errs, errors.New("server.redis.idle_timeout must not be negative"))
	}
	if cfg.Redis.WriteTimeout < 0 {
		errs = append(errs, errors.New("server.redis.write_timeout must not be negative"))
	}
	if cfg.Redis.MaxBufferBytes < minBufferBytes {
		errs = append(errs, fmt.Errorf("server.redis.max_buffer_bytes must be at least %d", minBufferBytes))
	}

	if cfg.Metrics.Enabled {
		if err := verifyAddr("server.metrics.addr", cfg.Metrics.Addr); err != nil {
			errs = append(errs, err)
		}
		if cfg.Metrics.Addr == cfg.Redis.Addr {
			errs = append(errs, errors.New("server.metrics.addr conflicts with server.redis.addr"))
		}
	}
	return errors.Join(errs...)
}

func verifyAddr(field, addr string) error {
	if addr == "" {
		return fmt.Errorf("%s is required", field)
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	return nil
}

func verifyLimits(cfg *LimitsSection) error {
	var errs []error
	if cfg.MaxClients < 1 {
		errs = append(errs, errors.New("limits.max_clients must be at least 1"))
	}
	if cfg.RateLimit < 0 {
		errs = append(errs, errors.New("limits.rate_limit must not be negative"))
	}
	return errors.Join(errs...)
}

func verifyLog(cfg *LogSection) error {
	var errs []error
	if _, err := logger.ParseLevel(cfg.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch strings.ToLower(cfg.Format) {
	case "json", "text", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", cfg.Format))
	}
	return errors.Join(errs...)
}
