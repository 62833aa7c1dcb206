package gonet

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"ami-go/ami"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrConnLost = errors.New("connection lost")
	ErrClosed   = errors.New("connection closed")

	noDeadline time.Time
)

// Connection is one transport session. A single goroutine reads, frames, parses
// and routes; Send may be called from any goroutine.
type Connection struct {
	conn net.Conn
	log  zerolog.Logger

	pending    *PendingTable
	dispatcher *Dispatcher
	decoder    *ami.Decoder
	capture    *Capture

	// Owned by the read goroutine.
	splitter *ami.Splitter
	readSize int

	idPrefix string
	lastID   atomic.Uint64

	writeLock sync.Mutex
	w         *bufio.Writer

	closing   atomic.Bool
	closeOnce sync.Once
	err       error
	done      chan struct{}
}

// Dial opens a TCP connection to addr and starts reading from it.
func Dial(ctx context.Context, addr string, opts Options) (*Connection, error) {
	opts = opts.withDefaults()
	ctx, cancel := context.WithTimeout(ctx, opts.DialTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	c, err := NewConnection(conn, opts)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return c, nil
}

// NewConnection takes ownership of conn and starts reading from it.
func NewConnection(conn net.Conn, opts Options) (*Connection, error) {
	opts = opts.withDefaults()
	log := opts.logger().With().Str("remote", conn.RemoteAddr().String()).Logger()

	decoder, err := ami.NewDecoder(opts.Encoding)
	if err != nil {
		return nil, err
	}
	capture, err := OpenCapture(opts.SaveStream, log)
	if err != nil {
		return nil, err
	}

	c := &Connection{
		conn: conn,
		log:  log,

		pending:    NewPendingTable(log),
		dispatcher: NewDispatcher(opts.Events, log),
		decoder:    decoder,
		capture:    capture,

		splitter: ami.NewSplitter(opts.MaxFrameSize),
		readSize: opts.ReadBufferSize,

		idPrefix: uuid.NewString()[:8],

		w:    bufio.NewWriter(conn),
		done: make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// NextID returns a fresh ActionID, unique to this connection.
func (c *Connection) NextID() string {
	return fmt.Sprintf("%s-%d", c.idPrefix, c.lastID.Add(1))
}

// Send registers req and writes it. It does not wait for the response; the
// returned future resolves when it arrives or the connection goes away.
func (c *Connection) Send(ctx context.Context, req Request) (*Future, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	select {
	case <-c.done:
		return nil, c.err
	default:
	}

	if req.ID() == "" {
		req.SetID(c.NextID())
	}
	// Registered before writing, the response may arrive before Write returns.
	fut, err := c.pending.Register(req)
	if err != nil {
		return nil, err
	}

	if err = c.write(ctx, req); err != nil {
		err = fmt.Errorf("sending error: %w: %w", ErrConnLost, err)
		c.shutdown(err)
		return nil, err
	}
	return fut, nil
}

func (c *Connection) write(ctx context.Context, req Request) error {
	c.writeLock.Lock()
	defer c.writeLock.Unlock()

	if deadline, ok := ctx.Deadline(); ok {
		if err := c.conn.SetWriteDeadline(deadline); err != nil {
			return err
		}
		defer func() { _ = c.conn.SetWriteDeadline(noDeadline) }()
	}

	if err := req.WriteRequest(c.w); err != nil {
		return err
	}
	return c.w.Flush()
}

// Call sends req and waits for its response. When ctx ends first the request
// is forgotten, a late response is then dropped.
func (c *Connection) Call(ctx context.Context, req Request) (*Response, error) {
	fut, err := c.Send(ctx, req)
	if err != nil {
		return nil, err
	}

	select {
	case <-fut.Done():
		return fut.Result()
	case <-ctx.Done():
		c.pending.Forget(fut.ID(), ctx.Err())
		// The response may have won the race.
		return fut.Result()
	}
}

// Close closes the transport. Pending requests fail with ErrClosed.
func (c *Connection) Close() {
	c.closing.Store(true)
	c.shutdown(ErrClosed)
}

// Done is closed once the connection is gone; Err then tells why.
func (c *Connection) Done() <-chan struct{} {
	return c.done
}

func (c *Connection) Err() error {
	select {
	case <-c.done:
		return c.err
	default:
		return nil
	}
}

func (c *Connection) IsOpen() bool {
	return c.Err() == nil
}

// Pending returns the number of requests awaiting a response.
func (c *Connection) Pending() int {
	return c.pending.Len()
}

func (c *Connection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

func (c *Connection) readLoop() {
	defer func() {
		if err := c.capture.Close(); err != nil {
			c.log.Warn().Err(err).Msg("closing stream capture")
		}
	}()

	buf := make([]byte, c.readSize)
	for {
		n, err := c.conn.Read(buf)
		if n > 0 {
			if ferr := c.feed(buf[:n]); ferr != nil {
				c.shutdown(fmt.Errorf("%w: %w", ErrConnLost, ferr))
				return
			}
		}
		if err != nil {
			if c.closing.Load() {
				c.shutdown(ErrClosed)
			} else {
				c.shutdown(fmt.Errorf("receiving error: %w: %w", ErrConnLost, err))
			}
			return
		}
	}
}

// feed runs one received chunk through framing, parsing and routing.
func (c *Connection) feed(chunk []byte) error {
	c.capture.Write(chunk)

	// Complete frames ahead of an oversized tail are still routed.
	frames, err := c.splitter.Feed(chunk)
	for _, frame := range frames {
		text := c.decoder.Decode(frame)
		c.log.Trace().Str("frame", text).Msg("frame received")

		msg := ami.ParseMessage(text)
		if msg == nil {
			continue
		}
		if outcome := c.pending.Route(msg); outcome == Unmatched {
			c.dispatcher.Dispatch(msg)
		}
	}
	return err
}

func (c *Connection) shutdown(err error) {
	c.closeOnce.Do(func() {
		c.err = err
		if cerr := c.conn.Close(); cerr != nil && !errors.Is(cerr, net.ErrClosed) {
			c.log.Warn().Err(cerr).Msg("closing transport")
		}
		failed := c.pending.FailAll(err)
		close(c.done)

		ev := c.log.Debug()
		if !errors.Is(err, ErrClosed) {
			ev = c.log.Warn()
		}
		ev.Err(err).Int("failed_requests", failed).Msg("connection closed")
	})
}
