package redisserver

import (
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/yndnr/minikv/internal/core/domain"
	"github.com/yndnr/minikv/internal/storage/memory"
	"github.com/yndnr/minikv/pkg/resp"
)

// fakeClock is a manually advanced clock for expiry tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestSession(t *testing.T, id int, cfg *Config, store *memory.Store) *Session {
	t.Helper()
	if cfg == nil {
		cfg = DefaultConfig()
	}
	a, b := net.Pipe()
	t.Cleanup(func() {
		_ = a.Close()
		_ = b.Close()
	})
	return newSession(id, a, cfg, store, nil)
}

func run(t *testing.T, s *Session, name string, args ...string) resp.Value {
	t.Helper()
	reply, err := s.handle(resp.CommandRequest(name, args...))
	if err != nil {
		t.Fatalf("%s %v: unexpected error %v", name, args, err)
	}
	return reply
}

func wantReply(t *testing.T, got, want resp.Value) {
	t.Helper()
	if !got.Equal(want) {
		t.Errorf("reply = %v, want %v", got, want)
	}
}

func errReply(err *domain.Error) resp.Value {
	return errorReply(err)
}

// ============================================================================
// Command parsing
// ============================================================================

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name     string
		req      resp.Value
		wantName string
		wantArgs int
		wantErr  bool
	}{
		{"array", resp.CommandRequest("SET", "k", "v"), "set", 2, false},
		{"simple string", resp.SimpleString("PING"), "ping", 0, false},
		{"mixed case", resp.CommandRequest("gEt", "k"), "get", 1, false},
		{"int argument", resp.Array(resp.BulkString("echo"), resp.Int(7)), "echo", 1, false},
		{"empty array", resp.Array(), "", 0, true},
		{"int name", resp.Array(resp.Int(1)), "", 0, true},
		{"bare bulk string", resp.BulkString("PING"), "", 0, true},
		{"bare int", resp.Int(3), "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, args, err := parseCommand(tt.req)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrCommandShape) {
					t.Fatalf("parseCommand() error = %v, want ErrCommandShape", err)
				}
				if !domain.IsKind(err, domain.KindProtocol) {
					t.Errorf("error kind = %s, want protocol", domain.KindOf(err))
				}
				return
			}
			if err != nil {
				t.Fatalf("parseCommand() error = %v", err)
			}
			if name != tt.wantName || len(args) != tt.wantArgs {
				t.Errorf("parseCommand() = %q, %d args; want %q, %d", name, len(args), tt.wantName, tt.wantArgs)
			}
		})
	}
}

func TestCommandLabel(t *testing.T) {
	tests := []struct {
		req  resp.Value
		want string
	}{
		{resp.CommandRequest("SET", "k", "v"), "set"},
		{resp.CommandRequest("FLUSHALL"), "unknown"},
		{resp.Int(1), "invalid"},
	}
	for _, tt := range tests {
		if got := commandLabel(tt.req); got != tt.want {
			t.Errorf("commandLabel(%v) = %q, want %q", tt.req, got, tt.want)
		}
	}
}

// ============================================================================
// Basic commands
// ============================================================================

func TestPingEcho(t *testing.T) {
	s := newTestSession(t, 1, nil, memory.New())

	wantReply(t, run(t, s, "PING"), resp.SimpleString("PONG"))
	wantReply(t, run(t, s, "PING", "hi"), resp.BulkString("hi"))
	wantReply(t, run(t, s, "ECHO", "héllo"), resp.BulkString("héllo"))

	reply, err := s.handle(resp.SimpleString("PING"))
	if err != nil {
		t.Fatal(err)
	}
	wantReply(t, reply, resp.SimpleString("PONG"))
}

func TestSetGet(t *testing.T) {
	store := memory.New()
	s := newTestSession(t, 1, nil, store)

	wantReply(t, run(t, s, "GET", "x"), resp.NullBulkString())
	wantReply(t, run(t, s, "SET", "x", "5"), resp.SimpleString("OK"))
	wantReply(t, run(t, s, "GET", "x"), resp.BulkString("5"))
	wantReply(t, run(t, s, "SET", "x", "6"), resp.SimpleString("OK"))
	wantReply(t, run(t, s, "GET", "x"), resp.BulkString("6"))

	if !store.Exists(domain.Key{ClientID: 1, Name: "x"}) {
		t.Error("key should be stored under the session's namespace")
	}
}

func TestSetGet_IntValue(t *testing.T) {
	s := newTestSession(t, 1, nil, memory.New())

	req := resp.Array(resp.BulkString("SET"), resp.BulkString("n"), resp.Int(42))
	reply, err := s.handle(req)
	if err != nil {
		t.Fatal(err)
	}
	wantReply(t, reply, resp.SimpleString("OK"))
	wantReply(t, run(t, s, "GET", "n"), resp.Int(42))
}

func TestNamespaceIsolation(t *testing.T) {
	store := memory.New()
	a := newTestSession(t, 1, nil, store)
	b := newTestSession(t, 2, nil, store)

	run(t, a, "SET", "x", "from-a")
	wantReply(t, run(t, b, "GET", "x"), resp.NullBulkString())

	run(t, b, "SET", "x", "from-b")
	wantReply(t, run(t, a, "GET", "x"), resp.BulkString("from-a"))
	wantReply(t, run(t, b, "GET", "x"), resp.BulkString("from-b"))
}

func TestIncr(t *testing.T) {
	s := newTestSession(t, 1, nil, memory.New())

	wantReply(t, run(t, s, "INCR", "c"), resp.Int(1))
	wantReply(t, run(t, s, "INCR", "c"), resp.Int(2))
	wantReply(t, run(t, s, "GET", "c"), resp.Int(2))

	run(t, s, "SET", "b", "10")
	wantReply(t, run(t, s, "INCR", "b"), errReply(domain.ErrNotInteger))
	wantReply(t, run(t, s, "GET", "b"), resp.BulkString("10"))
}

func TestArityAndUnknown(t *testing.T) {
	s := newTestSession(t, 1, nil, memory.New())

	tests := []struct {
		name string
		req  resp.Value
		want string
	}{
		{"get no args", resp.CommandRequest("GET"), "ERR wrong number of arguments for 'get' command"},
		{"set one arg", resp.CommandRequest("SET", "k"), "ERR wrong number of arguments for 'set' command"},
		{"set five args", resp.CommandRequest("SET", "k", "v", "PX", "1", "x"), "ERR wrong number of arguments for 'set' command"},
		{"echo two args", resp.CommandRequest("ECHO", "a", "b"), "ERR wrong number of arguments for 'echo' command"},
		{"exec with args", resp.CommandRequest("EXEC", "now"), "ERR wrong number of arguments for 'exec' command"},
		{"unknown", resp.CommandRequest("FLUSHALL"), "ERR unknown command 'flushall'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply, err := s.handle(tt.req)
			if err != nil {
				t.Fatalf("handle() error = %v", err)
			}
			wantReply(t, reply, resp.ErrorMessage(tt.want))
		})
	}
}

func TestInvalidKey(t *testing.T) {
	s := newTestSession(t, 1, nil, memory.New())

	req := resp.Array(resp.BulkString("GET"), resp.Array(resp.BulkString("k")))
	reply, err := s.handle(req)
	if err != nil {
		t.Fatal(err)
	}
	if reply.Kind() != resp.KindErrorMessage {
		t.Errorf("reply = %v, want error message", reply)
	}
}

func TestHandle_ProtocolError(t *testing.T) {
	s := newTestSession(t, 1, nil, memory.New())

	_, err := s.handle(resp.Int(5))
	if !domain.IsKind(err, domain.KindProtocol) {
		t.Errorf("handle(Int) error = %v, want protocol error", err)
	}
}

// ============================================================================
// Expiry
// ============================================================================

func TestSetPX(t *testing.T) {
	clock := newFakeClock()
	store := memory.New(memory.WithClock(clock.Now))
	s := newTestSession(t, 1, nil, store)
	key := domain.Key{ClientID: 1, Name: "t"}

	wantReply(t, run(t, s, "SET", "t", "v", "PX", "100"), resp.SimpleString("OK"))
	wantReply(t, run(t, s, "GET", "t"), resp.BulkString("v"))

	clock.Advance(99 * time.Millisecond)
	if !store.Exists(key) {
		t.Fatal("key expired early")
	}

	clock.Advance(2 * time.Millisecond)
	if store.Exists(key) {
		t.Fatal("key should have expired")
	}
	wantReply(t, run(t, s, "GET", "t"), resp.NullBulkString())
}

func TestSetPX_Options(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		want       resp.Value
		wantExpiry bool
	}{
		{"lower case px", []string{"k", "v", "px", "50"}, resp.SimpleString("OK"), true},
		{"zero", []string{"k", "v", "PX", "0"}, errReply(domain.ErrInvalidExpire), false},
		{"negative", []string{"k", "v", "PX", "-5"}, errReply(domain.ErrNotInteger), false},
		{"not a number", []string{"k", "v", "PX", "soon"}, errReply(domain.ErrNotInteger), false},
		{"other option", []string{"k", "v", "EX", "1"}, resp.SimpleString("OK"), false},
		{"px without value", []string{"k", "v", "PX"}, resp.SimpleString("OK"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := newFakeClock()
			store := memory.New(memory.WithClock(clock.Now))
			s := newTestSession(t, 1, nil, store)

			wantReply(t, run(t, s, "SET", tt.args...), tt.want)

			clock.Advance(time.Hour)
			exists := store.Exists(domain.Key{ClientID: 1, Name: "k"})
			stored := tt.want.Kind() == resp.KindSimpleString
			if stored && exists == tt.wantExpiry {
				t.Errorf("after an hour exists = %v, want expiry %v", exists, tt.wantExpiry)
			}
			if !stored && exists {
				t.Error("rejected SET must not store the key")
			}
		})
	}
}

// ============================================================================
// Transactions
// ============================================================================

func TestMultiExec(t *testing.T) {
	s := newTestSession(t, 1, nil, memory.New())

	wantReply(t, run(t, s, "MULTI"), resp.SimpleString("OK"))
	wantReply(t, run(t, s, "SET", "a", "1"), resp.SimpleString("QUEUED"))
	wantReply(t, run(t, s, "INCR", "n"), resp.SimpleString("QUEUED"))
	wantReply(t, run(t, s, "GET", "a"), resp.SimpleString("QUEUED"))

	// Nothing runs before EXEC.
	if s.store.Len() != 0 {
		t.Fatalf("store has %d keys before EXEC", s.store.Len())
	}

	want := resp.Array(
		resp.SimpleString("OK"),
		resp.Int(1),
		resp.BulkString("1"),
	)
	wantReply(t, run(t, s, "EXEC"), want)
	if s.tx.State() != TxNeutral {
		t.Errorf("state after EXEC = %s, want neutral", s.tx.State())
	}
}

func TestMultiExec_Errors(t *testing.T) {
	s := newTestSession(t, 1, nil, memory.New())

	wantReply(t, run(t, s, "EXEC"), errReply(domain.ErrExecWithoutMulti))

	run(t, s, "MULTI")
	wantReply(t, run(t, s, "EXEC"), errReply(domain.ErrEmptyTransaction))
	if s.tx.State() != TxNeutral {
		t.Errorf("state after empty EXEC = %s, want neutral", s.tx.State())
	}
}

func TestMultiExec_PerSlotErrors(t *testing.T) {
	s := newTestSession(t, 1, nil, memory.New())

	run(t, s, "SET", "s", "text")
	run(t, s, "MULTI")
	wantReply(t, run(t, s, "MULTI"), resp.SimpleString("QUEUED"))
	wantReply(t, run(t, s, "INCR", "s"), resp.SimpleString("QUEUED"))
	wantReply(t, run(t, s, "NOPE"), resp.SimpleString("QUEUED"))
	wantReply(t, run(t, s, "PING"), resp.SimpleString("QUEUED"))

	want := resp.Array(
		errReply(domain.ErrNestedMulti),
		errReply(domain.ErrNotInteger),
		resp.ErrorMessage("ERR unknown command 'nope'"),
		resp.SimpleString("PONG"),
	)
	wantReply(t, run(t, s, "EXEC"), want)
}

// ============================================================================
// Rate limiting and cleanup
// ============================================================================

func TestRateLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RateLimit = 1
	s := newTestSession(t, 1, cfg, memory.New())

	wantReply(t, run(t, s, "PING"), resp.SimpleString("PONG"))
	wantReply(t, run(t, s, "PING"), errReply(domain.ErrRateLimited))
}

func TestCleanup(t *testing.T) {
	store := memory.New()
	a := newTestSession(t, 1, nil, store)
	b := newTestSession(t, 2, nil, store)

	run(t, a, "SET", "x", "1")
	run(t, a, "INCR", "n")
	run(t, b, "SET", "x", "2")
	run(t, a, "MULTI")
	run(t, a, "SET", "y", "1")

	a.cleanup()

	if store.Len() != 1 {
		t.Errorf("store.Len() = %d, want only the other session's key", store.Len())
	}
	if a.tx.State() != TxNeutral {
		t.Errorf("state after cleanup = %s", a.tx.State())
	}
	wantReply(t, run(t, b, "GET", "x"), resp.BulkString("2"))
}
