package gonet

import (
	"ami-go/ami"

	"github.com/rs/zerolog"
)

// EventHandler receives events no pending request claimed. It runs on the
// connection's read goroutine: a slow handler stalls reading.
type EventHandler interface {
	HandleEvent(msg *ami.Message)
}

type EventHandlerFunc func(msg *ami.Message)

func (f EventHandlerFunc) HandleEvent(msg *ami.Message) {
	f(msg)
}

type Dispatcher struct {
	handler EventHandler
	log     zerolog.Logger
}

func NewDispatcher(handler EventHandler, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{handler: handler, log: log}
}

func (d *Dispatcher) Dispatch(msg *ami.Message) {
	if d.handler == nil {
		d.log.Debug().Str("event", msg.Get(ami.KeyEvent)).Msg("no event handler, dropping event")
		return
	}
	d.handler.HandleEvent(msg)
}
