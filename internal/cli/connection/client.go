package connection

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/yndnr/minikv/pkg/resp"
)

const readChunk = 4096

// ErrClosed is returned by Do after Close.
var ErrClosed = errors.New("connection: client closed")

// Client sends commands to a minikv server over one connection.
type Client struct {
	addr    string
	timeout time.Duration
	conn    net.Conn
	buf     []byte
}

// Dial connects to addr. A zero timeout means no deadline.
func Dial(ctx context.Context, addr string, timeout time.Duration) (*Client, error) {
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return &Client{addr: addr, timeout: timeout, conn: conn}, nil
}

// Addr returns the server address.
func (c *Client) Addr() string {
	return c.addr
}

// Close closes the connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// Do sends one command and waits for its reply. Error replies from the
// server are returned as values, not as errors.
func (c *Client) Do(ctx context.Context, name string, args ...string) (resp.Value, error) {
	return c.Send(ctx, resp.CommandRequest(name, args...))
}

// Send writes an already built request and reads one reply.
func (c *Client) Send(ctx context.Context, req resp.Value) (resp.Value, error) {
	if c.conn == nil {
		return resp.Value{}, ErrClosed
	}

	if err := c.setDeadline(ctx); err != nil {
		return resp.Value{}, err
	}
	if _, err := c.conn.Write(resp.Encode(req)); err != nil {
		return resp.Value{}, fmt.Errorf("write: %w", err)
	}
	return c.readReply()
}

func (c *Client) setDeadline(ctx context.Context) error {
	deadline, ok := ctx.Deadline()
	if c.timeout > 0 {
		if t := time.Now().Add(c.timeout); !ok || t.Before(deadline) {
			deadline, ok = t, true
		}
	}
	if !ok {
		return c.conn.SetDeadline(time.Time{})
	}
	return c.conn.SetDeadline(deadline)
}

// readReply reads until one complete value is buffered. Bytes past the
// value stay buffered for the next call.
func (c *Client) readReply() (resp.Value, error) {
	chunk := make([]byte, readChunk)
	for {
		if len(c.buf) > 0 {
			v, n, err := resp.Decode(c.buf)
			if err == nil {
				c.buf = c.buf[:copy(c.buf, c.buf[n:])]
				return v, nil
			}
			if !errors.Is(err, resp.ErrIncomplete) {
				return resp.Value{}, fmt.Errorf("decode reply: %w", err)
			}
		}

		n, err := c.conn.Read(chunk)
		c.buf = append(c.buf, chunk[:n]...)
		if err != nil {
			if n > 0 {
				continue
			}
			return resp.Value{}, fmt.Errorf("read: %w", err)
		}
	}
}
