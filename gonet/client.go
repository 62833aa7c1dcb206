package gonet

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var ErrNotConnected = errors.New("not connected")

type State int

const (
	Disconnected State = iota
	Connected
	Closing
)

func (s State) String() string {
	switch s {
	case Connected:
		return "connected"
	case Closing:
		return "closing"
	default:
		return "disconnected"
	}
}

// Client owns the connection to one manager address and reconnects after an
// unexpected disconnect, waiting ReconnectDelay before every attempt.
type Client struct {
	addr string
	opts Options
	log  zerolog.Logger

	// Serializes dialing, so a reconnect and a Connect never both succeed.
	dialLock sync.Mutex

	lock   sync.Mutex
	state  State
	conn   *Connection
	timer  *time.Timer
	closed bool
}

func NewClient(addr string, opts Options) *Client {
	opts = opts.withDefaults()
	return &Client{
		addr: addr,
		opts: opts,
		log:  opts.logger().With().Str("addr", addr).Logger(),
	}
}

// Connect dials the manager unless already connected. A failure here is
// returned, not retried; retries only follow the loss of a connection.
func (c *Client) Connect(ctx context.Context) error {
	c.dialLock.Lock()
	defer c.dialLock.Unlock()

	c.lock.Lock()
	switch {
	case c.closed:
		c.lock.Unlock()
		return ErrClosed
	case c.state == Connected:
		c.lock.Unlock()
		return nil
	}
	c.lock.Unlock()

	conn, err := Dial(ctx, c.addr, c.opts)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", c.addr, err)
	}
	if c.opts.OnConnect != nil {
		if err = c.opts.OnConnect(ctx, conn); err != nil {
			conn.Close()
			return fmt.Errorf("connect hook: %w", err)
		}
	}

	c.lock.Lock()
	if c.closed {
		c.lock.Unlock()
		conn.Close()
		return ErrClosed
	}
	c.conn = conn
	c.state = Connected
	c.lock.Unlock()

	c.log.Info().Msg("connected")
	go c.watch(conn)
	return nil
}

// watch waits for conn to go away and schedules a reconnect unless Close did it.
func (c *Client) watch(conn *Connection) {
	<-conn.Done()

	c.lock.Lock()
	if c.conn != conn {
		c.lock.Unlock()
		return
	}
	c.conn = nil
	if c.closed {
		c.lock.Unlock()
		return
	}
	c.state = Disconnected
	c.scheduleLocked()
	c.lock.Unlock()

	err := conn.Err()
	c.log.Warn().Err(err).Dur("retry_in", c.opts.ReconnectDelay).Msg("connection lost")
	if c.opts.OnDisconnect != nil {
		c.opts.OnDisconnect(err)
	}
}

func (c *Client) scheduleLocked() {
	c.timer = time.AfterFunc(c.opts.ReconnectDelay, c.reconnect)
}

func (c *Client) reconnect() {
	ctx, cancel := context.WithTimeout(context.Background(), c.opts.DialTimeout)
	defer cancel()

	err := c.Connect(ctx)
	if err == nil || errors.Is(err, ErrClosed) {
		return
	}

	c.lock.Lock()
	defer c.lock.Unlock()
	if c.closed || c.state == Connected {
		return
	}
	c.log.Warn().Err(err).Dur("retry_in", c.opts.ReconnectDelay).Msg("reconnect failed")
	c.scheduleLocked()
}

// Send submits req on the current connection. When there is none it fails
// with ErrNotConnected and nothing is registered.
func (c *Client) Send(ctx context.Context, req Request) (*Future, error) {
	conn := c.current()
	if conn == nil {
		return nil, ErrNotConnected
	}
	return conn.Send(ctx, req)
}

// Call is Send followed by waiting for the response.
func (c *Client) Call(ctx context.Context, req Request) (*Response, error) {
	conn := c.current()
	if conn == nil {
		return nil, ErrNotConnected
	}
	return conn.Call(ctx, req)
}

func (c *Client) current() *Connection {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.state != Connected {
		return nil
	}
	return c.conn
}

func (c *Client) State() State {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.state
}

func (c *Client) Addr() string {
	return c.addr
}

// Close closes the connection for good: no reconnect follows, pending requests
// fail with ErrClosed.
func (c *Client) Close() {
	c.lock.Lock()
	if c.closed {
		c.lock.Unlock()
		return
	}
	c.closed = true
	c.state = Closing
	if c.timer != nil {
		c.timer.Stop()
	}
	conn := c.conn
	c.conn = nil
	c.lock.Unlock()

	if conn != nil {
		conn.Close()
	}

	c.lock.Lock()
	c.state = Disconnected
	c.lock.Unlock()
	c.log.Info().Msg("closed")
}
