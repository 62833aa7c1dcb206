// Package ami implements the wire format of the manager protocol: framing,
// message parsing and the serialization of outgoing actions.
package ami

import "errors"

const (
	EOL       = "\r\n"
	Delimiter = EOL + EOL

	KeyActionID  = "ActionID"
	KeyCommandID = "CommandID"
	KeyEvent     = "Event"
	KeyResponse  = "Response"
	KeyAction    = "Action"
	KeyEventList = "EventList"
)

var (
	delimiter = []byte(Delimiter)

	ErrFrameTooLarge   = errors.New("frame exceeds maximum size")
	ErrUnknownEncoding = errors.New("unknown text encoding")
)
