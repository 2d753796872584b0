package redisserver

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yndnr/minikv/internal/core/domain"
	"github.com/yndnr/minikv/internal/server/clientid"
	"github.com/yndnr/minikv/internal/storage/memory"
	"github.com/yndnr/minikv/internal/telemetry/logger"
	"github.com/yndnr/minikv/internal/telemetry/metric"
	"github.com/yndnr/minikv/pkg/cmap"
	"github.com/yndnr/minikv/pkg/resp"
)

// rejectWriteTimeout bounds the error reply sent to a rejected connection.
const rejectWriteTimeout = time.Second

// Config holds the RESP server configuration.
type Config struct {
	// Addr is the TCP listen address.
	Addr string
	// IdleTimeout closes a connection that sends nothing for this long.
	// Zero disables it.
	IdleTimeout time.Duration
	// WriteTimeout bounds each reply write. Zero disables it.
	WriteTimeout time.Duration
	// MaxBufferBytes bounds the unparsed bytes held per connection.
	MaxBufferBytes int
	// RateLimit is the number of commands per second allowed per
	// connection. Zero disables rate limiting.
	RateLimit float64
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Addr:           "127.0.0.1:6378",
		WriteTimeout:   30 * time.Second,
		MaxBufferBytes: 4 << 20,
	}
}

// Server accepts RESP connections and runs one Session per connection.
type Server struct {
	cfg     *Config
	store   *memory.Store
	clients *clientid.Allocator
	logger  logger.Logger
	metrics *metric.Registry

	mu       sync.Mutex
	ln       net.Listener
	sessions *cmap.Map[int, *Session]
	running  atomic.Bool
	wg       sync.WaitGroup
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithMetrics records connection and command metrics in r.
func WithMetrics(r *metric.Registry) Option {
	return func(s *Server) {
		s.metrics = r
	}
}

// New creates a server. The store is shared by all sessions; the allocator
// bounds how many may run at once.
func New(cfg *Config, store *memory.Store, clients *clientid.Allocator, opts ...Option) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	s := &Server{
		cfg:      cfg,
		store:    store,
		clients:  clients,
		logger:   logger.Default(),
		sessions: cmap.New[int, *Session](cmap.IntHasher),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start binds the listener and accepts connections in the background.
// The listener is bound before Start returns, so Addr is valid afterwards.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	s.running.Store(true)

	s.logger.Info("redis server listening", "address", ln.Addr().String())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.acceptLoop(ctx, ln); err != nil {
			s.logger.Error("redis accept loop stopped", "error", err)
		}
	}()
	return nil
}

// Addr returns the bound listener address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Running reports whether the server accepts connections.
func (s *Server) Running() bool {
	return s.running.Load()
}

// Sessions returns the number of open sessions.
func (s *Server) Sessions() int {
	return s.sessions.Count()
}

// Shutdown stops accepting, closes every open session and waits for their
// cleanup, or for ctx to end.
func (s *Server) Shutdown(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	s.mu.Lock()
	ln := s.ln
	s.mu.Unlock()

	var firstErr error
	if ln != nil {
		if err := ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			firstErr = err
		}
	}

	s.sessions.Range(func(_ int, sess *Session) bool {
		_ = sess.Close()
		return true
	})

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.logger.Info("redis server stopped")
	return firstErr
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) error {
	for {
		c, err := ln.Accept()
		if err != nil {
			if !s.running.Load() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				s.logger.Warn("accept timeout", "error", err)
				continue
			}
			return err
		}

		id, err := s.clients.Acquire(ctx)
		if err != nil {
			s.reject(c, err)
			continue
		}

		sess := newSession(id, c, s.cfg, s.store, s.metrics)
		s.sessions.Set(id, sess)
		s.metrics.ConnOpened()

		// A shutdown that raced this accept has already swept the map.
		if !s.running.Load() {
			_ = sess.Close()
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serve(ctx, sess)
		}()
	}
}

func (s *Server) serve(ctx context.Context, sess *Session) {
	ctx = logger.WithLogger(ctx, s.logger)
	_ = sess.Serve(ctx)

	s.sessions.Delete(sess.ID())
	if err := s.clients.Release(context.WithoutCancel(ctx), sess.ID()); err != nil {
		s.logger.Error("release client id", "client_id", sess.ID(), "error", err)
	}
	s.metrics.ConnClosed()
}

// reject answers a connection that could not get a client id and closes it.
func (s *Server) reject(c net.Conn, err error) {
	defer c.Close()

	s.metrics.ConnRejected()
	if domain.IsKind(err, domain.KindCapacity) {
		s.logger.Warn("connection rejected", "remote", c.RemoteAddr().String(), "error", err)
	} else {
		s.logger.Error("client id allocation failed", "remote", c.RemoteAddr().String(), "error", err)
	}

	_ = c.SetWriteDeadline(time.Now().Add(rejectWriteTimeout))
	_, _ = c.Write(resp.Encode(errorReply(err)))
}
