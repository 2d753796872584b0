package redisserver

import (
	"github.com/yndnr/minikv/internal/core/domain"
	"github.com/yndnr/minikv/pkg/resp"
)

// TxState is the state of a connection's MULTI/EXEC transaction.
type TxState int

const (
	// TxNeutral executes commands immediately.
	TxNeutral TxState = iota
	// TxQueuing collects commands after MULTI.
	TxQueuing
	// TxExecuting replays the queue during EXEC.
	TxExecuting
)

func (s TxState) String() string {
	switch s {
	case TxQueuing:
		return "queuing"
	case TxExecuting:
		return "executing"
	default:
		return "neutral"
	}
}

// Transaction is the per-connection MULTI/EXEC state machine.
// It is owned by one session and not safe for concurrent use.
type Transaction struct {
	state TxState
	queue []resp.Value
}

// State returns the current state.
func (t *Transaction) State() TxState {
	return t.state
}

// Queuing reports whether incoming commands must be queued.
func (t *Transaction) Queuing() bool {
	return t.state == TxQueuing
}

// Begin handles MULTI.
func (t *Transaction) Begin() error {
	if t.state != TxNeutral {
		return domain.ErrNestedMulti
	}
	t.state = TxQueuing
	return nil
}

// Enqueue appends a command without validating or running it.
func (t *Transaction) Enqueue(cmd resp.Value) {
	t.queue = append(t.queue, cmd)
}

// Len returns the number of queued commands.
func (t *Transaction) Len() int {
	return len(t.queue)
}

// Drain handles EXEC. It returns the queued commands in arrival order and
// moves to TxExecuting; the caller must call Finish once they have run.
//
// EXEC without MULTI fails and leaves the state untouched. EXEC on an empty
// queue fails and returns to TxNeutral.
func (t *Transaction) Drain() ([]resp.Value, error) {
	switch t.state {
	case TxNeutral, TxExecuting:
		return nil, domain.ErrExecWithoutMulti
	}

	if len(t.queue) == 0 {
		t.state = TxNeutral
		return nil, domain.ErrEmptyTransaction
	}

	queued := t.queue
	t.queue = nil
	t.state = TxExecuting
	return queued, nil
}

// Finish returns to TxNeutral after the drained commands have run.
func (t *Transaction) Finish() {
	t.state = TxNeutral
}

// Reset discards any queued commands.
func (t *Transaction) Reset() {
	t.queue = nil
	t.state = TxNeutral
}
