package tcpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/ariefcatur/go-tcp-fabric/internal/apperr"
	"github.com/ariefcatur/go-tcp-fabric/internal/metrics"
	"github.com/ariefcatur/go-tcp-fabric/internal/wire"
)

// HandlerFunc serves one action. A returned *apperr.Error becomes the
// envelope message; anything else is reported as "handler error".
type HandlerFunc func(ctx context.Context, payload json.RawMessage) (any, error)

const (
	msgActionRequired = "action required"
	msgHandlerError   = "handler error"
	msgInvalidJSON    = "invalid json"
)

type Option func(*Server)

// WithReadTimeout bounds how long a connection may sit without sending a
// complete request.
func WithReadTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.readTimeout = d
		}
	}
}

// WithMaxConns bounds the number of connections served at once. Further
// connections wait in the accept backlog.
func WithMaxConns(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxConns = int64(n)
		}
	}
}

// Server is a long-lived listener for one service.
type Server struct {
	name        string
	log         *zap.Logger
	readTimeout time.Duration
	maxConns    int64

	mu       sync.RWMutex
	handlers map[string]HandlerFunc
	ln       net.Listener
	ready    chan struct{}
	once     sync.Once

	wg sync.WaitGroup
}

func NewServer(name string, log *zap.Logger, opts ...Option) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		name:        name,
		log:         log.With(zap.String("service", name)),
		readTimeout: 30 * time.Second,
		maxConns:    1024,
		handlers:    make(map[string]HandlerFunc),
		ready:       make(chan struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Server) Handle(action string, h HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[action] = h
}

// Register installs a whole handler set.
func (s *Server) Register(set map[string]HandlerFunc) {
	for action, h := range set {
		s.Handle(action, h)
	}
}

// Addr blocks until the server is listening. It returns nil if listening
// failed.
func (s *Server) Addr() net.Addr {
	<-s.ready
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// setListener records ln and releases Addr. Only the first call wins.
func (s *Server) setListener(ln net.Listener) bool {
	first := false
	s.once.Do(func() {
		s.ln = ln
		close(s.ready)
		first = true
	})
	return first
}

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		s.setListener(nil)
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections until ctx is canceled, then waits for the
// connections already accepted to finish. A Server serves only once.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if !s.setListener(ln) {
		_ = ln.Close()
		return errors.New("tcpx: server already started")
	}
	s.log.Info("tcp listening", zap.String("addr", ln.Addr().String()))

	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()

	sem := semaphore.NewWeighted(s.maxConns)
	defer s.wg.Wait()

	// Handlers outlive shutdown so in-flight calls to other services finish.
	handlerCtx := context.WithoutCancel(ctx)

	for {
		if err := sem.Acquire(ctx, 1); err != nil {
			return nil
		}
		conn, err := ln.Accept()
		if err != nil {
			sem.Release(1)
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				s.log.Info("tcp listener stopped")
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				s.log.Warn("accept timeout", zap.Error(err))
				continue
			}
			return fmt.Errorf("accept: %w", err)
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer sem.Release(1)
			s.serveConn(handlerCtx, conn)
		}()
	}
}

// serveConn reads one request, writes one response and closes.
func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	metrics.ServerConnsInFlight.WithLabelValues(s.name).Inc()
	defer metrics.ServerConnsInFlight.WithLabelValues(s.name).Dec()

	_ = conn.SetReadDeadline(time.Now().Add(s.readTimeout))

	var req wire.Request
	if err := wire.Read(conn, &req); err != nil {
		if errors.Is(err, io.EOF) {
			// Peer hung up before sending anything.
			return
		}
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			s.log.Debug("connection idle, closing", zap.String("remote", conn.RemoteAddr().String()))
			return
		}
		s.log.Warn("bad request frame", zap.String("remote", conn.RemoteAddr().String()), zap.Error(err))
		s.reply(conn, "", wire.Fail(msgInvalidJSON))
		return
	}
	_ = conn.SetReadDeadline(time.Time{})

	s.reply(conn, req.Action, s.dispatch(ctx, req))
}

func (s *Server) reply(conn net.Conn, action string, resp wire.Response) {
	label := action
	s.mu.RLock()
	if _, ok := s.handlers[action]; !ok {
		label = "unknown"
	}
	s.mu.RUnlock()
	metrics.ServerRequests.WithLabelValues(s.name, label, string(resp.Status)).Inc()

	if err := wire.Write(conn, resp); err != nil {
		// The caller may have timed out and gone away; the answer is dropped.
		s.log.Debug("write response", zap.String("action", action), zap.Error(err))
	}
}

func (s *Server) dispatch(ctx context.Context, req wire.Request) (resp wire.Response) {
	if req.Action == "" {
		return wire.Fail(msgActionRequired)
	}
	s.mu.RLock()
	h, ok := s.handlers[req.Action]
	s.mu.RUnlock()
	if !ok {
		return wire.Fail("unknown action " + req.Action)
	}

	defer func() {
		if r := recover(); r != nil {
			s.log.Error("handler panic", zap.String("action", req.Action), zap.Any("panic", r))
			resp = wire.Fail(msgHandlerError)
		}
	}()

	data, err := h(ctx, req.Payload)
	if err != nil {
		if e, ok := apperr.As(err); ok && e.Kind != apperr.KindHandler && e.Kind != apperr.KindTransport {
			return wire.Fail(e.Msg)
		}
		s.log.Error("handler failed", zap.String("action", req.Action), zap.Error(err))
		return wire.Fail(msgHandlerError)
	}
	out, err := wire.OK(data)
	if err != nil {
		s.log.Error("encode handler result", zap.String("action", req.Action), zap.Error(err))
		return wire.Fail(msgHandlerError)
	}
	return out
}
