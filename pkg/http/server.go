package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"

	"github.com/shapestone/shape-httpd/internal/fastparser"
	"github.com/shapestone/shape-httpd/internal/refcount"
)

// Server accepts TCP connections and answers one request on each.
type Server struct {
	cfg      Config
	handler  Handler
	log      zerolog.Logger
	lim      fastparser.Limits
	build    BuildOptions
	errBuild BuildOptions

	mu       sync.Mutex
	ln       net.Listener
	loopDone chan struct{}
	pool     *workerPool

	state   atomic.Int32
	closing atomic.Bool

	conns  *xsync.MapOf[string, *refcount.Handle[*Conn]]
	connWG sync.WaitGroup

	accepted *xsync.Counter
	served   *xsync.Counter
	rejected *xsync.Counter
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// NewServer creates a server for cfg that dispatches requests to h.
// Call Listen and Serve, or ListenAndServe, to start it.
func NewServer(cfg Config, h Handler, opts ...Option) *Server {
	s := &Server{
		cfg:      cfg,
		handler:  h,
		log:      zerolog.Nop(),
		build:    cfg.buildOptions(),
		errBuild: ErrorOptions(cfg.buildOptions()),
		conns:    xsync.NewMapOf[string, *refcount.Handle[*Conn]](xsync.WithPresize(cfg.QueueSize)),
		accepted: xsync.NewCounter(),
		served:   xsync.NewCounter(),
		rejected: xsync.NewCounter(),
	}
	s.lim = fastparser.Limits{
		HeaderSlots: 16,
		MaxHeaders:  cfg.MaxHeaders,
		URI:         cfg.uriLimits(),
	}
	if s.lim.HeaderSlots > s.lim.MaxHeaders {
		s.lim.HeaderSlots = s.lim.MaxHeaders
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setState(StateCreated)
	return s
}

// State returns the server's lifecycle stage.
func (s *Server) State() State { return State(s.state.Load()) }

func (s *Server) setState(st State) {
	s.state.Store(int32(st))
	s.log.Debug().Stringer("state", st).Msg("server state")
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Listen validates the configuration and binds the listening socket with
// SO_REUSEADDR set.
func (s *Server) Listen(ctx context.Context) error {
	if s.handler == nil {
		return ErrNoHandler
	}
	if err := s.cfg.Validate(); err != nil {
		return err
	}

	lc := net.ListenConfig{
		Control: func(network, address string, rawConn syscall.RawConn) error {
			return setReuseAddr(rawConn)
		},
	}
	ln, err := lc.Listen(ctx, "tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("http: listen %s: %w", s.cfg.Addr, err)
	}

	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	s.setState(StateBound)
	s.log.Info().Str("addr", ln.Addr().String()).Msg("listening")
	return nil
}

// Serve runs the accept loop on the calling goroutine until the listener is
// closed by Shutdown or ctx is cancelled, and then returns ErrServerClosed.
// Each connection is served on its own goroutine, or by the worker pool when
// Config.Workers is positive.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	ln := s.ln
	if ln == nil {
		s.mu.Unlock()
		return errors.New("http: Serve before Listen")
	}
	if s.loopDone != nil {
		s.mu.Unlock()
		return errors.New("http: Serve called twice")
	}
	loopDone := make(chan struct{})
	s.loopDone = loopDone
	if s.cfg.Workers > 0 {
		s.pool = newWorkerPool(s.cfg.Workers, s.cfg.QueueSize, s.serveConn)
	}
	pool := s.pool
	s.mu.Unlock()

	defer close(loopDone)
	if pool != nil {
		defer pool.Stop()
	}

	stop := context.AfterFunc(ctx, func() {
		s.closing.Store(true)
		ln.Close()
	})
	defer stop()

	s.setState(StateListening)

	var tempDelay time.Duration
	for {
		nc, err := ln.Accept()
		if err != nil {
			if s.closing.Load() || errors.Is(err, net.ErrClosed) {
				return ErrServerClosed
			}
			// Back off like net/http: 5ms doubling up to 1s.
			if tempDelay == 0 {
				tempDelay = 5 * time.Millisecond
			} else {
				tempDelay *= 2
			}
			if max := time.Second; tempDelay > max {
				tempDelay = max
			}
			s.log.Error().Err(err).Dur("retry_in", tempDelay).Msg("accept")
			time.Sleep(tempDelay)
			continue
		}
		tempDelay = 0

		s.accepted.Inc()
		s.dispatch(s.newConn(nc))
	}
}

// dispatch shares h with whoever serves it and drops the acceptor's own
// reference.
func (s *Server) dispatch(h *refcount.Handle[*Conn]) {
	defer h.Release()

	if s.pool == nil {
		go s.serveConn(h.Share())
		return
	}

	shared := h.Share()
	if s.pool.Serve(shared) {
		return
	}
	s.rejected.Inc()
	go s.reject(shared)
}

// reject drains the peer, answers 503 and releases h.
func (s *Server) reject(h *refcount.Handle[*Conn]) {
	defer refcount.Release(&h)
	c := h.Value()
	c.log.Warn().Int("workers", s.cfg.Workers).Int("queue", s.cfg.QueueSize).Msg("worker pool saturated")
	c.drain()
	c.writeResponse(ErrorResponse(StatusServiceUnavailable,
		fmt.Sprintf("Server busy: %d connections queued for %d workers!", s.cfg.QueueSize, s.cfg.Workers)), s.errBuild)
}

// ListenAndServe binds the configured address and serves until ctx is
// cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if err := s.Listen(ctx); err != nil {
		return err
	}
	return s.Serve(ctx)
}

// Shutdown stops accepting, then waits for live connections to finish or
// for ctx to end. When ctx ends first, the remaining sockets are closed and
// ctx.Err() is returned.
func (s *Server) Shutdown(ctx context.Context) error {
	s.closing.Store(true)

	s.mu.Lock()
	ln := s.ln
	loopDone := s.loopDone
	s.mu.Unlock()

	if ln != nil {
		if err := ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			s.log.Warn().Err(err).Msg("close listener")
		}
	}

	if loopDone != nil {
		select {
		case <-loopDone:
		case <-ctx.Done():
			s.forceClose()
			return ctx.Err()
		}
	}

	done := make(chan struct{})
	go func() {
		s.connWG.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.setState(StateClosed)
		s.log.Info().Int64("served", s.served.Value()).Msg("shut down")
		return nil
	case <-ctx.Done():
		s.forceClose()
		return ctx.Err()
	}
}

// forceClose closes every live socket; serving goroutines then fail their
// reads or writes and release their handles.
func (s *Server) forceClose() {
	s.conns.Range(func(id string, h *refcount.Handle[*Conn]) bool {
		if c := h.Value(); c != nil {
			c.nc.Close()
		}
		return true
	})
	s.log.Warn().Int("live", s.conns.Size()).Msg("shutdown deadline reached, closed live connections")
}

// Stats is a snapshot of server counters.
type Stats struct {
	Accepted int64
	Served   int64
	Rejected int64
	Live     int
}

// Stats returns the current counters.
func (s *Server) Stats() Stats {
	return Stats{
		Accepted: s.accepted.Value(),
		Served:   s.served.Value(),
		Rejected: s.rejected.Value(),
		Live:     s.conns.Size(),
	}
}
