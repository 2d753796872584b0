package repl

import (
	"reflect"
	"testing"
)

func TestCompleter_Complete(t *testing.T) {
	c := NewCompleter()

	tests := []struct {
		prefix string
		want   []string
	}{
		{"e", []string{"echo", "exec", "exit"}},
		{"in", []string{"incr"}},
		{"set", []string{"set"}},
		{"nonexistent", nil},
	}

	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			if got := c.Complete(tt.prefix); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Complete(%q) = %v, want %v", tt.prefix, got, tt.want)
			}
		})
	}

	if got := c.Complete(""); len(got) != len(c.commands) {
		t.Errorf("Complete(\"\") returned %d commands, want all %d", len(got), len(c.commands))
	}
}
