// Package client provides the RESP connection used by minikv-cli.
package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/okrski/minikv/internal/protocol"
)

// DefaultTimeout bounds dialing and each request round trip.
const DefaultTimeout = 30 * time.Second

// Client is a single-connection RESP client.
type Client struct {
	conn    net.Conn
	buf     []byte
	timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// Dial connects to a minikv server at addr (host:port).
func Dial(ctx context.Context, addr string, opts ...Option) (*Client, error) {
	c := &Client{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(c)
	}

	var d net.Dialer
	d.Timeout = c.timeout
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	c.conn = conn

	return c, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Do sends one command as a RESP array of bulk strings and returns
// the decoded reply.
func (c *Client) Do(args ...string) (protocol.Value, error) {
	if len(args) == 0 {
		return protocol.Value{}, errors.New("empty command")
	}

	elems := make([]protocol.Value, len(args))
	for i, a := range args {
		elems[i] = protocol.BulkStringFrom(a)
	}

	if err := c.conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return protocol.Value{}, err
	}
	if _, err := c.conn.Write(protocol.Encode(protocol.Array(elems...))); err != nil {
		return protocol.Value{}, fmt.Errorf("write command: %w", err)
	}

	return c.readReply()
}

func (c *Client) readReply() (protocol.Value, error) {
	if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return protocol.Value{}, err
	}

	chunk := make([]byte, 4096)
	for {
		if len(c.buf) > 0 {
			v, n, err := protocol.Decode(c.buf)
			if err == nil {
				c.buf = c.buf[n:]
				return v, nil
			}
			if !errors.Is(err, protocol.ErrIncomplete) {
				return protocol.Value{}, fmt.Errorf("decode reply: %w", err)
			}
		}

		n, err := c.conn.Read(chunk)
		if n > 0 {
			c.buf = append(c.buf, chunk[:n]...)
			continue
		}
		if err != nil {
			return protocol.Value{}, fmt.Errorf("read reply: %w", err)
		}
	}
}
