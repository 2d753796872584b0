package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/yndnr/minikv/internal/infra/confloader"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "MINIKV_CLI_"

// DefaultConfigPath returns the default CLI config file path.
func DefaultConfigPath() string {
	return filepath.Join(homeDir(), ".minikv", "cli.yaml")
}

// Load reads the CLI configuration. An empty path means DefaultConfigPath.
// A missing file is not an error; defaults and environment still apply.
func Load(path string) (*CLIConfig, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	opts := []confloader.Option{confloader.WithEnvPrefix(EnvPrefix)}
	if _, err := os.Stat(path); err == nil {
		opts = append(opts, confloader.WithConfigFile(path))
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	cfg := Default()
	if err := confloader.Load(cfg, opts...); err != nil {
		return nil, err
	}
	return cfg, nil
}

func homeDir() string {
	dir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return dir
}
