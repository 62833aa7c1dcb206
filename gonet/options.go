package gonet

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	DefaultReconnectDelay = 2 * time.Second
	DefaultDialTimeout    = 5 * time.Second
	DefaultMaxFrameSize   = 1 << 20
	DefaultReadBufferSize = 4096
)

// Options configure a Connection and the Client managing it.
type Options struct {
	// Encoding is the WHATWG label of the text encoding, see ami.NewDecoder.
	Encoding string
	// MaxFrameSize bounds an incomplete frame, negative disables the bound.
	MaxFrameSize   int
	ReadBufferSize int
	// SaveStream appends the raw received stream to this file when set.
	SaveStream string

	DialTimeout time.Duration
	// ReconnectDelay is the fixed pause before every reconnect attempt.
	ReconnectDelay time.Duration

	Events EventHandler

	// OnConnect runs after each successful dial, before the client reports
	// Connected. An error closes the connection.
	OnConnect func(ctx context.Context, conn *Connection) error
	// OnDisconnect runs when an established connection is lost.
	OnDisconnect func(err error)

	// Logger defaults to the global zerolog logger.
	Logger *zerolog.Logger
}

func (o Options) withDefaults() Options {
	if o.MaxFrameSize == 0 {
		o.MaxFrameSize = DefaultMaxFrameSize
	}
	if o.MaxFrameSize < 0 {
		o.MaxFrameSize = 0
	}
	if o.ReadBufferSize <= 0 {
		o.ReadBufferSize = DefaultReadBufferSize
	}
	if o.DialTimeout <= 0 {
		o.DialTimeout = DefaultDialTimeout
	}
	if o.ReconnectDelay <= 0 {
		o.ReconnectDelay = DefaultReconnectDelay
	}
	return o
}

func (o Options) logger() zerolog.Logger {
	if o.Logger != nil {
		return *o.Logger
	}
	return log.Logger
}
