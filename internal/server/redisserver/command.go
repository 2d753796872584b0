package redisserver

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/yndnr/minikv/internal/core/domain"
	"github.com/yndnr/minikv/pkg/resp"
)

var (
	replyOK     = resp.SimpleString("OK")
	replyPong   = resp.SimpleString("PONG")
	replyQueued = resp.SimpleString("QUEUED")
)

// handlerFunc executes one command for a session.
type handlerFunc func(s *Session, args []resp.Value) (resp.Value, error)

// command describes a supported command. Arity counts arguments after the
// command name; maxArgs < 0 means unbounded.
type command struct {
	minArgs int
	maxArgs int
	handler handlerFunc
}

// commands is the dispatch table, keyed by lower-case name.
var commands map[string]command

func init() {
	commands = map[string]command{
		"multi": {0, 0, handleMulti},
		"exec":  {0, 0, handleExec},
		"ping":  {0, 1, handlePing},
		"echo":  {1, 1, handleEcho},
		"set":   {2, 4, handleSet},
		"get":   {1, 1, handleGet},
		"incr":  {1, 1, handleIncr},
	}
}

// parseCommand splits a request into its lower-case name and arguments.
// A simple string is a command without arguments; an array carries the
// name in its first element. Anything else is a protocol error.
func parseCommand(req resp.Value) (string, []resp.Value, error) {
	switch req.Kind() {
	case resp.KindSimpleString:
		name, _ := req.AsString()
		return strings.ToLower(name), nil, nil
	case resp.KindArray:
		items := req.Items()
		if len(items) == 0 {
			return "", nil, domain.ErrCommandShape.WithDetails("empty array")
		}
		name, ok := items[0].AsString()
		if !ok {
			return "", nil, domain.ErrCommandShape.WithDetails("command name is %s", items[0].Kind())
		}
		return strings.ToLower(name), items[1:], nil
	default:
		return "", nil, domain.ErrCommandShape.WithDetails("got %s", req.Kind())
	}
}

// dispatch runs one request and returns its reply. EXEC yields the internal
// Command(EXEC) value, which the session turns into a queue flush.
func (s *Session) dispatch(req resp.Value) (resp.Value, error) {
	name, args, err := parseCommand(req)
	if err != nil {
		return resp.Value{}, err
	}

	cmd, ok := commands[name]
	if !ok {
		return resp.Value{}, domain.ErrUnknownCommand.WithDetails("'%s'", name)
	}
	if len(args) < cmd.minArgs || (cmd.maxArgs >= 0 && len(args) > cmd.maxArgs) {
		return resp.Value{}, domain.ErrWrongArity.WithDetails("for '%s' command", name)
	}
	return cmd.handler(s, args)
}

// commandLabel returns the metrics label for req.
func commandLabel(req resp.Value) string {
	name, _, err := parseCommand(req)
	if err != nil {
		return "invalid"
	}
	if _, ok := commands[name]; !ok {
		return "unknown"
	}
	return name
}

func handleMulti(s *Session, _ []resp.Value) (resp.Value, error) {
	if err := s.tx.Begin(); err != nil {
		return resp.Value{}, err
	}
	return replyOK, nil
}

func handleExec(_ *Session, _ []resp.Value) (resp.Value, error) {
	return resp.Command(resp.CommandExec), nil
}

func handlePing(_ *Session, args []resp.Value) (resp.Value, error) {
	if len(args) == 0 {
		return replyPong, nil
	}
	if msg, ok := args[0].AsString(); ok {
		return resp.BulkString(msg), nil
	}
	return args[0], nil
}

func handleEcho(_ *Session, args []resp.Value) (resp.Value, error) {
	return args[0], nil
}

// handleSet implements SET key value [PX milliseconds]. Options other than
// PX, or PX without a value, leave the key without expiry.
func handleSet(s *Session, args []resp.Value) (resp.Value, error) {
	key, err := domain.NewKey(s.id, args[0])
	if err != nil {
		return resp.Value{}, err
	}

	var ttl time.Duration
	if len(args) == 4 {
		if opt, ok := args[2].AsString(); ok && strings.EqualFold(opt, "px") {
			ms, err := parseMillis(args[3])
			if err != nil {
				return resp.Value{}, err
			}
			ttl = time.Duration(ms) * time.Millisecond
		}
	}

	s.store.Insert(key, args[1], ttl)
	s.track(key)
	return replyOK, nil
}

func parseMillis(v resp.Value) (int64, error) {
	var ms int64
	if n, ok := v.AsInt(); ok {
		ms = n
	} else {
		str, ok := v.AsString()
		if !ok {
			return 0, domain.ErrNotInteger
		}
		n, err := strconv.ParseInt(str, 10, 64)
		if err != nil {
			return 0, domain.ErrNotInteger
		}
		ms = n
	}

	switch {
	case ms < 0 || ms > math.MaxInt64/int64(time.Millisecond):
		return 0, domain.ErrNotInteger
	case ms == 0:
		return 0, domain.ErrInvalidExpire
	}
	return ms, nil
}

func handleGet(s *Session, args []resp.Value) (resp.Value, error) {
	key, err := domain.NewKey(s.id, args[0])
	if err != nil {
		return resp.Value{}, err
	}

	v, ok := s.store.Read(key)
	if !ok {
		return resp.NullBulkString(), nil
	}
	return v, nil
}

// handleIncr replies with the value after the increment.
func handleIncr(s *Session, args []resp.Value) (resp.Value, error) {
	key, err := domain.NewKey(s.id, args[0])
	if err != nil {
		return resp.Value{}, err
	}

	prior, err := s.store.Increment(key)
	if err != nil {
		return resp.Value{}, err
	}
	s.track(key)
	return resp.Int(prior + 1), nil
}
