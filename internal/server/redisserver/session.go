package redisserver

import (
	"context"
	"errors"
	"io"
	"net"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/yndnr/minikv/internal/core/domain"
	"github.com/yndnr/minikv/internal/storage/memory"
	"github.com/yndnr/minikv/internal/telemetry/logger"
	"github.com/yndnr/minikv/internal/telemetry/metric"
	"github.com/yndnr/minikv/pkg/resp"
)

const readChunk = 4096

// Session owns one client connection: it decodes requests, runs them
// through the transaction state machine and the dispatcher, and writes the
// replies. Keys it writes live in its own namespace and are removed when
// the session ends.
type Session struct {
	id     int
	connID string
	conn   net.Conn
	cfg    *Config

	store   *memory.Store
	metrics *metric.Registry
	limiter *rate.Limiter

	tx       Transaction
	selfKeys map[domain.Key]struct{}

	in  []byte
	out []byte

	closed atomic.Bool
}

func newSession(id int, conn net.Conn, cfg *Config, store *memory.Store, metrics *metric.Registry) *Session {
	s := &Session{
		id:       id,
		connID:   ulid.Make().String(),
		conn:     conn,
		cfg:      cfg,
		store:    store,
		metrics:  metrics,
		selfKeys: make(map[domain.Key]struct{}),
	}
	if cfg.RateLimit > 0 {
		burst := int(cfg.RateLimit)
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return s
}

// ID returns the client id of the session.
func (s *Session) ID() int {
	return s.id
}

// ConnID returns the unique connection id used in logs.
func (s *Session) ConnID() string {
	return s.connID
}

// Close closes the connection, which ends Serve.
func (s *Session) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.conn.Close()
}

// Serve runs the read-dispatch-write loop until the peer disconnects, an
// I/O or protocol error occurs, or Close is called. It always runs cleanup
// before returning. A nil error means a clean end.
func (s *Session) Serve(ctx context.Context) error {
	ctx = logger.WithConnID(ctx, s.connID)
	ctx = logger.WithClientID(ctx, s.id)
	log := logger.L(ctx).With("remote", s.conn.RemoteAddr().String())

	defer s.cleanup()

	log.Debug("session opened")
	err := s.loop()

	switch {
	case err == nil:
		log.Debug("session closed")
	case domain.IsKind(err, domain.KindProtocol):
		log.Warn("session closed on protocol error", "error", err)
	default:
		log.Debug("session closed on i/o error", "error", err)
	}
	return err
}

func (s *Session) loop() error {
	chunk := make([]byte, readChunk)

	for {
		if err := s.processBuffered(); err != nil {
			s.replyFatal(err)
			return err
		}
		if len(s.out) > 0 {
			if err := s.flush(); err != nil {
				return s.ioErr(err)
			}
		}

		if s.cfg.MaxBufferBytes > 0 && len(s.in) >= s.cfg.MaxBufferBytes {
			err := domain.ErrBufferLimit.WithDetails("%d bytes buffered", len(s.in))
			s.replyFatal(err)
			return err
		}

		if s.cfg.IdleTimeout > 0 {
			if err := s.conn.SetReadDeadline(time.Now().Add(s.cfg.IdleTimeout)); err != nil {
				return s.ioErr(err)
			}
		}

		n, err := s.conn.Read(chunk)
		if n > 0 {
			s.in = append(s.in, chunk[:n]...)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return s.ioErr(err)
		}
		if n == 0 {
			return nil
		}
	}
}

// processBuffered handles every complete request in the input buffer and
// appends the replies to the output buffer.
func (s *Session) processBuffered() error {
	consumed := 0
	defer func() {
		if consumed > 0 {
			s.in = s.in[:copy(s.in, s.in[consumed:])]
		}
	}()

	for consumed < len(s.in) {
		req, n, err := resp.DecodeStream(s.in[consumed:])
		if errors.Is(err, resp.ErrIncomplete) {
			return nil
		}
		if err != nil {
			return domain.ErrProtocol.Wrap(err)
		}
		consumed += n

		reply, err := s.handle(req)
		if err != nil {
			return err
		}
		s.out = resp.AppendEncode(s.out, reply)
	}
	return nil
}

// handle runs one decoded request. Domain errors become error replies;
// only protocol errors are returned.
func (s *Session) handle(req resp.Value) (resp.Value, error) {
	start := time.Now()
	label := commandLabel(req)

	reply, err := s.execute(req)
	if err != nil {
		s.metrics.ObserveCommand(label, metric.StatusError, time.Since(start))
		return resp.Value{}, err
	}

	status := metric.StatusOK
	if reply.Kind() == resp.KindErrorMessage {
		status = metric.StatusError
	}
	s.metrics.ObserveCommand(label, status, time.Since(start))
	return reply, nil
}

func (s *Session) execute(req resp.Value) (resp.Value, error) {
	if s.limiter != nil && !s.limiter.Allow() {
		return errorReply(domain.ErrRateLimited), nil
	}

	if s.tx.Queuing() && !isExec(req) {
		s.tx.Enqueue(req)
		return replyQueued, nil
	}

	reply, err := s.dispatch(req)
	if err != nil {
		if domain.IsKind(err, domain.KindProtocol) {
			return resp.Value{}, err
		}
		return errorReply(err), nil
	}

	if reply.IsCommand(resp.CommandExec) {
		return s.exec(), nil
	}
	return reply, nil
}

// exec flushes the transaction queue and collects the replies in order.
// Errors from queued commands are reported in their slot.
func (s *Session) exec() resp.Value {
	queued, err := s.tx.Drain()
	if err != nil {
		return errorReply(err)
	}
	defer s.tx.Finish()

	results := make([]resp.Value, 0, len(queued))
	for _, req := range queued {
		reply, err := s.dispatch(req)
		switch {
		case err != nil:
			reply = errorReply(err)
		case reply.IsCommand(resp.CommandExec):
			reply = errorReply(domain.ErrExecWithoutMulti)
		}
		results = append(results, reply)
	}
	return resp.Array(results...)
}

func isExec(req resp.Value) bool {
	name, _, err := parseCommand(req)
	return err == nil && name == "exec"
}

func errorReply(err error) resp.Value {
	return resp.ErrorMessage(domain.ReplyText(err))
}

// track records a key written by this session for cleanup.
func (s *Session) track(key domain.Key) {
	s.selfKeys[key] = struct{}{}
}

func (s *Session) flush() error {
	if s.cfg.WriteTimeout > 0 {
		if err := s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout)); err != nil {
			return err
		}
	}
	_, err := s.conn.Write(s.out)
	s.out = s.out[:0]
	return err
}

// replyFatal writes the replies gathered so far plus an error reply for
// err, ignoring write failures since the connection is closing anyway.
func (s *Session) replyFatal(err error) {
	s.out = resp.AppendEncode(s.out, errorReply(err))
	_ = s.flush()
}

// ioErr wraps a transport error, or returns nil if the session was closed
// on purpose.
func (s *Session) ioErr(err error) error {
	if s.closed.Load() {
		return nil
	}
	return domain.ErrConnectionIO.Wrap(err)
}

// cleanup removes the session's keys from the store and resets its state.
func (s *Session) cleanup() {
	keys := make([]domain.Key, 0, len(s.selfKeys))
	for k := range s.selfKeys {
		keys = append(keys, k)
	}
	s.store.Remove(keys...)
	s.selfKeys = make(map[domain.Key]struct{})
	s.tx.Reset()
	_ = s.Close()
}
