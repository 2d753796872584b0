package repl

import "strings"

// Completer suggests commands for a prefix.
type Completer struct {
	commands []string
}

// NewCompleter creates a Completer for the server commands and the REPL
// built-ins.
func NewCompleter() *Completer {
	return &Completer{
		commands: []string{
			"echo", "exec", "get", "incr", "multi", "ping", "set",
			"help", "exit", "quit",
		},
	}
}

// Complete returns the commands starting with prefix. An empty prefix
// matches every command.
func (c *Completer) Complete(prefix string) []string {
	var suggestions []string
	for _, cmd := range c.commands {
		if strings.HasPrefix(cmd, prefix) {
			suggestions = append(suggestions, cmd)
		}
	}
	return suggestions
}
