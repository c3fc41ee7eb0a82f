// Package tcpx implements the one-request-per-connection TCP fabric:
// a client that dials a fresh socket per call and a service listener that
// answers exactly once and hangs up.
package tcpx

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"os"
	"time"

	"github.com/ariefcatur/go-tcp-fabric/internal/apperr"
	"github.com/ariefcatur/go-tcp-fabric/internal/metrics"
	"github.com/ariefcatur/go-tcp-fabric/internal/wire"
)

const DefaultTimeout = 4 * time.Second

// Caller is satisfied by *Client; consumers depend on it so tests can stub
// the network.
type Caller interface {
	Call(ctx context.Context, addr string, req wire.Request) (wire.Response, error)
}

// Client opens a new connection for every call. There is no pooling and
// no retry.
type Client struct {
	Timeout time.Duration
	dialer  net.Dialer
}

func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{Timeout: timeout}
}

// Call writes req to addr and waits for the peer to close the connection,
// then parses everything it sent as the response envelope.
func (c *Client) Call(ctx context.Context, addr string, req wire.Request) (resp wire.Response, err error) {
	start := time.Now()
	defer func() {
		result := "ok"
		switch {
		case err != nil:
			result = "transport_error"
		case resp.Status == wire.StatusError:
			result = "error"
		}
		metrics.ClientCalls.WithLabelValues(addr, req.Action, result).Inc()
		metrics.ClientCallSeconds.WithLabelValues(addr, req.Action).Observe(time.Since(start).Seconds())
	}()

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, err := c.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return wire.Response{}, transportErr(ctx, err)
	}
	defer conn.Close()

	if dl, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(dl)
	}
	// Cancellation closes the socket; the remote handler is not told.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	if err := wire.Write(conn, req); err != nil {
		return wire.Response{}, transportErr(ctx, err)
	}

	raw, err := io.ReadAll(conn)
	if err != nil {
		return wire.Response{}, transportErr(ctx, err)
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return wire.Response{}, apperr.Transport("Invalid JSON from server", err)
	}
	return resp, nil
}

func transportErr(ctx context.Context, err error) error {
	if ctx.Err() != nil || errors.Is(err, os.ErrDeadlineExceeded) {
		if errors.Is(ctx.Err(), context.Canceled) {
			return apperr.Transport("canceled", ctx.Err())
		}
		return apperr.Transport("timeout", err)
	}
	return apperr.Transport(err.Error(), err)
}
