package gonet

import (
	"bufio"

	"ami-go/ami"
)

// Request is an outgoing action as seen by the connection.
// If WriteRequest returns an error the connection will be closed, as it's likely to be in dirty state.
type Request interface {
	// ID is the ActionID; empty means the connection assigns one before writing.
	ID() string
	SetID(id string)
	WriteRequest(w *bufio.Writer) error

	// ListStyle requests complete on the message Terminal accepts, not on the
	// first matching message.
	ListStyle() bool
	Terminal(msg *ami.Message) bool
}

// SubIdentified requests are also routed by the CommandID their output carries.
type SubIdentified interface {
	CommandID() string
}

func commandIDOf(req Request) string {
	if sub, ok := req.(SubIdentified); ok {
		return sub.CommandID()
	}
	return ""
}
