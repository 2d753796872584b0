package command

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/minikv/internal/cli/config"
	"github.com/yndnr/minikv/internal/cli/output"
	"github.com/yndnr/minikv/internal/infra/buildinfo"
)

const metaConfig = "config"

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:      "minikv-cli",
		Usage:     "command-line client for minikv-server",
		Version:   buildinfo.String(),
		ArgsUsage: "[COMMAND [ARGS...]]",
		Flags:     globalFlags(),
		Commands: []*cli.Command{
			ExecCommand(),
			PingCommand(),
			ReplCommand(),
		},
		Before: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return fmt.Errorf("load cli config: %w", err)
			}
			c.App.Metadata = map[string]any{metaConfig: cfg}
			return nil
		},
		Action: func(c *cli.Context) error {
			if c.Args().Present() {
				return execAction(c)
			}
			return replAction(c)
		},
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "minikv server address (host:port)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: text, json, yaml",
		},
		&cli.DurationFlag{
			Name:    "timeout",
			Aliases: []string{"t"},
			Usage:   "Dial and request timeout",
		},
		&cli.StringFlag{
			Name:  "config",
			Usage: "Path to CLI config file (default ~/.minikv/cli.yaml)",
		},
	}
}

// Settings are the effective options: flags over config file over defaults.
type Settings struct {
	Server      string
	Output      output.Format
	Timeout     time.Duration
	HistoryFile string
}

// ParseSettings resolves the settings for a command.
func ParseSettings(c *cli.Context) (*Settings, error) {
	cfg, ok := c.App.Metadata[metaConfig].(*config.CLIConfig)
	if !ok {
		cfg = config.Default()
	}

	s := &Settings{
		Server:      cfg.Server,
		Timeout:     cfg.Timeout,
		HistoryFile: cfg.HistoryFile,
	}
	format := cfg.Output

	if c.IsSet("server") {
		s.Server = c.String("server")
	}
	if c.IsSet("output") {
		format = c.String("output")
	}
	if c.IsSet("timeout") {
		s.Timeout = c.Duration("timeout")
	}

	f, err := output.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	s.Output = f
	return s, nil
}
