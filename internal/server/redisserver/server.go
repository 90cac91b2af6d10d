// Package redisserver provides the RESP protocol server for minikv.
//
// It accepts TCP connections, decodes RESP frames, dispatches parsed
// commands against the store and writes the encoded replies back on
// the same connection.
package redisserver

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/okrski/minikv/internal/command"
	"github.com/okrski/minikv/internal/params"
	"github.com/okrski/minikv/internal/protocol"
	"github.com/okrski/minikv/internal/store"
	"github.com/okrski/minikv/internal/telemetry/metric"
)

// Config holds the RESP server configuration.
type Config struct {
	// Address is the listen address, host:port.
	Address string
	// ReadTimeout is the timeout for reading a command (default: 30s).
	// Helps prevent slowloris attacks.
	ReadTimeout time.Duration
	// WriteTimeout is the timeout for writing a response (default: 30s).
	WriteTimeout time.Duration
	// IdleTimeout is the timeout for idle connections (default: 5m).
	IdleTimeout time.Duration
	// RateLimit is the maximum number of commands per second per IP
	// (default: 1000). Set to 0 to disable rate limiting.
	RateLimit int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Address:      "127.0.0.1:6379",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  5 * time.Minute,
		RateLimit:    1000,
	}
}

// Server is the RESP protocol server.
type Server struct {
	cfg     *Config
	store   *store.Store
	params  *params.Map
	metrics *metric.Registry
	logger  *slog.Logger

	limiters *limiterRegistry

	ln      net.Listener
	running atomic.Bool
	wg      sync.WaitGroup
}

// New creates a new RESP server serving commands against st. params
// backs CONFIG GET. metrics may be nil, in which case no metrics are
// recorded.
func New(cfg *Config, st *store.Store, p *params.Map, metrics *metric.Registry, logger *slog.Logger) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		cfg:      cfg,
		store:    st,
		params:   p,
		metrics:  metrics,
		logger:   logger,
		limiters: newLimiterRegistry(cfg.RateLimit),
	}
}

// Start begins listening and accepting connections. It returns once
// the listener is bound; accepted connections are served in
// goroutines until Shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting resp server", "address", s.cfg.Address)
	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return err
	}
	s.ln = ln
	s.running.Store(true)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.acceptLoop(ctx); err != nil && s.running.Load() {
			s.logger.Error("resp server accept error", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound listener address, usable once Start has
// returned. Handy when listening on port 0.
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Shutdown gracefully shuts down the server: it closes the listener
// and waits for in-flight connections until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.running.Store(false)

	var firstErr error
	if s.ln != nil {
		if err := s.ln.Close(); err != nil {
			firstErr = err
		}
	}

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

	return firstErr
}

func (s *Server) acceptLoop(ctx context.Context) error {
	for {
		c, err := s.ln.Accept()
		if err != nil {
			if !s.running.Load() {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			return err
		}

		if s.metrics != nil {
			s.metrics.ConnectionsTotal.Inc()
			s.metrics.ConnectionsActive.Inc()
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveConn(newConn(c))
			if s.metrics != nil {
				s.metrics.ConnectionsActive.Dec()
			}
		}()
	}
}

// Conn is a single client connection.
type Conn struct {
	id      string
	netConn net.Conn
	buf     []byte
	closed  atomic.Bool
}

func newConn(c net.Conn) *Conn {
	return &Conn{
		id:      ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String(),
		netConn: c,
	}
}

func (c *Conn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.netConn.Close()
}

func (c *Conn) RemoteAddr() net.Addr {
	return c.netConn.RemoteAddr()
}

// serveConn runs the read-decode-execute-reply loop for one
// connection. Partial frames are buffered until the rest arrives.
func (s *Server) serveConn(c *Conn) {
	defer c.Close()

	log := s.logger.With("conn", c.id, "remote", c.RemoteAddr().String())
	log.Debug("connection accepted")

	readTimeout := s.cfg.ReadTimeout
	if readTimeout == 0 {
		readTimeout = 30 * time.Second
	}
	writeTimeout := s.cfg.WriteTimeout
	if writeTimeout == 0 {
		writeTimeout = 30 * time.Second
	}
	idleTimeout := s.cfg.IdleTimeout
	if idleTimeout == 0 {
		idleTimeout = 5 * time.Minute
	}

	chunk := make([]byte, 4096)
	for {
		// Idle timeout applies while the buffer holds no partial
		// frame; once one started arriving, tighten to the read
		// timeout so a stalled sender cannot hold the connection.
		deadline := idleTimeout
		if len(c.buf) > 0 {
			deadline = readTimeout
		}
		if err := c.netConn.SetReadDeadline(time.Now().Add(deadline)); err != nil {
			return
		}

		n, err := c.netConn.Read(chunk)
		if n > 0 {
			c.buf = append(c.buf, chunk[:n]...)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				log.Debug("connection closed by client")
				return
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				log.Debug("connection timed out")
				return
			}
			log.Debug("connection read error", "error", err)
			return
		}

		for len(c.buf) > 0 {
			value, consumed, err := protocol.Decode(c.buf)
			if errors.Is(err, protocol.ErrIncomplete) {
				break
			}
			if err != nil {
				if errors.Is(err, protocol.ErrLimitExceeded) {
					log.Warn("protocol limit exceeded", "error", err)
					s.reply(c, writeTimeout, protocol.SimpleError("ERR protocol limit exceeded"))
					return
				}
				// Unparseable framing: report it and drop the
				// buffered bytes, the connection stays open.
				log.Debug("protocol decode error", "error", err)
				c.buf = c.buf[:0]
				if !s.reply(c, writeTimeout, protocol.SimpleError("ERR protocol error: unable to parse command")) {
					return
				}
				break
			}
			c.buf = c.buf[consumed:]

			if !s.reply(c, writeTimeout, s.dispatch(log, c, value)) {
				return
			}
		}
	}
}

// dispatch parses and executes one decoded frame, returning the reply
// to send. Parse failures map to error replies and never close the
// connection.
func (s *Server) dispatch(log *slog.Logger, c *Conn, value protocol.Value) protocol.Value {
	if !s.limiters.Allow(c.RemoteAddr()) {
		if s.metrics != nil {
			s.metrics.CommandsTotal.WithLabelValues("unknown", "throttled").Inc()
		}
		return protocol.SimpleError("ERR rate limit exceeded")
	}

	cmd, err := command.Parse(value)
	if err != nil {
		if s.metrics != nil {
			s.metrics.CommandsTotal.WithLabelValues("unknown", "error").Inc()
		}
		log.Debug("command rejected", "error", err)
		return protocol.SimpleError("ERR " + err.Error())
	}

	start := time.Now()
	resp := cmd.Execute(s.store, s.params)

	if s.metrics != nil {
		status := "ok"
		if resp.Type == protocol.TypeSimpleError {
			status = "error"
		}
		s.metrics.CommandsTotal.WithLabelValues(cmd.Name(), status).Inc()
		s.metrics.CommandDuration.WithLabelValues(cmd.Name()).Observe(time.Since(start).Seconds())
	}

	return resp
}

// reply writes one encoded value. It reports whether the connection
// is still usable.
func (s *Server) reply(c *Conn, writeTimeout time.Duration, v protocol.Value) bool {
	if err := c.netConn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return false
	}
	if _, err := c.netConn.Write(protocol.Encode(v)); err != nil {
		s.logger.Debug("connection write error", "conn", c.id, "error", err)
		return false
	}
	return true
}
