package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/minikv/internal/cli/connection"
	"github.com/yndnr/minikv/internal/cli/output"
	"github.com/yndnr/minikv/internal/cli/repl"
)

// ReplCommand returns the repl command.
func ReplCommand() *cli.Command {
	return &cli.Command{
		Name:   "repl",
		Usage:  "Start an interactive session on one connection",
		Action: replAction,
	}
}

func replAction(c *cli.Context) error {
	s, err := ParseSettings(c)
	if err != nil {
		return err
	}

	client, err := connection.Dial(c.Context, s.Server, s.Timeout)
	if err != nil {
		return err
	}
	defer client.Close()

	w := c.App.Writer
	formatter := output.NewFormatter(s.Output)
	fmt.Fprintf(w, "connected to %s\n", client.Addr())

	exec := func(args []string) error {
		reply, err := client.Do(c.Context, args[0], args[1:]...)
		if err != nil {
			return err
		}
		return formatter.Format(w, reply)
	}

	return repl.New(exec,
		repl.WithIO(c.App.Reader, w),
		repl.WithHistoryFile(s.HistoryFile),
	).Run()
}
