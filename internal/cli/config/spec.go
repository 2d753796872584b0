package config

import (
	"path/filepath"
	"time"
)

// CLIConfig is the configuration for minikv-cli.
type CLIConfig struct {
	// Server is the default server address (host:port).
	Server string `koanf:"server"`
	// Output is the default output format: text, json or yaml.
	Output string `koanf:"output"`
	// Timeout bounds dialing and each request.
	Timeout time.Duration `koanf:"timeout"`
	// HistoryFile is where the REPL keeps its history.
	HistoryFile string `koanf:"history_file"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Server:      "127.0.0.1:6378",
		Output:      "text",
		Timeout:     5 * time.Second,
		HistoryFile: filepath.Join(homeDir(), ".minikv", "history"),
	}
}
