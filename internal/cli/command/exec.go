package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/minikv/internal/cli/connection"
	"github.com/yndnr/minikv/internal/cli/output"
)

// ExecCommand returns the exec command.
func ExecCommand() *cli.Command {
	return &cli.Command{
		Name:      "exec",
		Usage:     "Send one command and print the reply",
		ArgsUsage: "COMMAND [ARGS...]",
		Action:    execAction,
	}
}

// PingCommand returns the ping command.
func PingCommand() *cli.Command {
	return &cli.Command{
		Name:  "ping",
		Usage: "Check that the server answers",
		Action: func(c *cli.Context) error {
			return send(c, "PING", nil)
		},
	}
}

func execAction(c *cli.Context) error {
	args := c.Args().Slice()
	if len(args) == 0 {
		return fmt.Errorf("command required")
	}
	return send(c, args[0], args[1:])
}

// send runs one command on a fresh connection. Keys set this way vanish as
// soon as the connection closes.
func send(c *cli.Context, name string, args []string) error {
	s, err := ParseSettings(c)
	if err != nil {
		return err
	}

	client, err := connection.Dial(c.Context, s.Server, s.Timeout)
	if err != nil {
		return err
	}
	defer client.Close()

	reply, err := client.Do(c.Context, name, args...)
	if err != nil {
		return err
	}
	return output.NewFormatter(s.Output).Format(c.App.Writer, reply)
}
