package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/minikv/internal/infra/buildinfo"
	"github.com/yndnr/minikv/internal/infra/confloader"
	"github.com/yndnr/minikv/internal/infra/shutdown"
	"github.com/yndnr/minikv/internal/server/clientid"
	"github.com/yndnr/minikv/internal/server/config"
	"github.com/yndnr/minikv/internal/server/httpserver"
	"github.com/yndnr/minikv/internal/server/redisserver"
	"github.com/yndnr/minikv/internal/storage/memory"
	"github.com/yndnr/minikv/internal/telemetry/logger"
	"github.com/yndnr/minikv/internal/telemetry/metric"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "minikv-server",
		Usage:   "Redis-compatible in-memory key-value server",
		Version: buildinfo.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				EnvVars: []string{"MINIKV_CONFIG"},
			},
			&cli.DurationFlag{
				Name:  "shutdown-timeout",
				Usage: "Time allowed for graceful shutdown",
				Value: shutdown.DefaultTimeout,
			},
		},
		Action: func(c *cli.Context) error {
			return run(c.Context, c.String("config"), c.Duration("shutdown-timeout"))
		},
	}
}

func run(ctx context.Context, configFile string, shutdownTimeout time.Duration) error {
	cfg, err := loadConfig(configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	info := buildinfo.Get()
	log.Info("starting minikv-server",
		"version", info.Version,
		"commit", info.Commit,
		"config", configFile)

	store := memory.New()

	clients, err := clientid.New(ctx, cfg.Limits.MaxClients)
	if err != nil {
		return fmt.Errorf("init client allocator: %w", err)
	}

	metrics := metric.NewRegistry()
	if err := metrics.Register(metric.NewCollector(store, clients)); err != nil {
		return fmt.Errorf("register collector: %w", err)
	}

	srv := redisserver.New(redisConfig(cfg), store, clients,
		redisserver.WithLogger(log.With("component", "redis")),
		redisserver.WithMetrics(metrics))

	shutdownHandler := shutdown.NewHandler(shutdownTimeout)

	// Hooks run in reverse order: the RESP server stops first.
	shutdownHandler.OnShutdown("client allocator", func(ctx context.Context) error {
		clients.Close(ctx)
		return nil
	})

	if cfg.Server.Metrics.Enabled {
		opsServer := httpserver.New(cfg.Server.Metrics.Addr, httpserver.NewRouter(&httpserver.RouterConfig{
			Metrics: metrics.Handler(),
			Ready:   srv.Running,
			Logger:  logger.Slog(log.With("component", "http")),
		}))
		err := opsServer.Start(func(err error) {
			log.Error("metrics server error", "error", err)
			shutdownHandler.Trigger()
		})
		if err != nil {
			_ = shutdownHandler.Run()
			return fmt.Errorf("start metrics server: %w", err)
		}
		log.Info("metrics server listening", "address", opsServer.Addr().String())
		shutdownHandler.OnShutdown("metrics server", opsServer.Shutdown)
	}

	if configFile != "" {
		watcher, err := watchConfig(configFile, log)
		if err != nil {
			log.Warn("config hot reload disabled", "error", err)
		} else {
			shutdownHandler.OnShutdown("config watcher", func(context.Context) error {
				return watcher.Stop()
			})
		}
	}

	if err := srv.Start(ctx); err != nil {
		_ = shutdownHandler.Run()
		return fmt.Errorf("start redis server: %w", err)
	}
	shutdownHandler.OnShutdown("redis server", srv.Shutdown)

	log.Info("server started, press Ctrl+C to stop")
	if err := shutdownHandler.Wait(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig layers the config file and environment over the defaults.
func loadConfig(configFile string) (*config.ServerConfig, error) {
	cfg := config.Default()

	var opts []confloader.Option
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}

	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, err
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func initLogger(cfg *config.ServerConfig) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return nil, err
	}
	logger.SetDefault(log)
	return log, nil
}

func redisConfig(cfg *config.ServerConfig) *redisserver.Config {
	return &redisserver.Config{
		Addr:           cfg.Server.Redis.Addr,
		IdleTimeout:    cfg.Server.Redis.IdleTimeout,
		WriteTimeout:   cfg.Server.Redis.WriteTimeout,
		MaxBufferBytes: cfg.Server.Redis.MaxBufferBytes,
		RateLimit:      cfg.Limits.RateLimit,
	}
}

// watchConfig reloads the config file on change and applies the settings
// that can change at runtime. Today that is only log.level.
func watchConfig(path string, log logger.Logger) (*confloader.Watcher, error) {
	watcher, err := confloader.NewWatcher(confloader.WithWatcherLogger(logger.Slog(log)))
	if err != nil {
		return nil, err
	}
	if err := watcher.Watch(path); err != nil {
		_ = watcher.Stop()
		return nil, err
	}

	watcher.OnChange(func(string) {
		cfg, err := loadConfig(path)
		if err != nil {
			log.Warn("config reload rejected", "error", err)
			return
		}
		if cfg.Log.Level == logger.GetLevel() {
			return
		}
		if err := logger.SetLevel(cfg.Log.Level); err != nil {
			log.Warn("config reload rejected", "error", err)
			return
		}
		log.Info("log level changed", "level", cfg.Log.Level)
	})
	watcher.StartAsync()
	return watcher, nil
}
