package ami

import (
	"bufio"
	"strings"
)

var (
	fieldSep = []byte(": ")
	newLine  = []byte(EOL)

	flattenLines = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")
)

// Action is an outgoing request. Its ActionID is filled in at submission unless
// one was given explicitly.
type Action struct {
	Name   string
	Fields []Field

	id        string
	listStyle bool
	command   bool
}

func NewAction(name string, fields ...Field) *Action {
	return &Action{Name: name, Fields: fields}
}

// NewListAction builds an action answered by a stream of events that ends with
// "EventList: Complete".
func NewListAction(name string, fields ...Field) *Action {
	a := NewAction(name, fields...)
	a.listStyle = true
	return a
}

// NewCommand builds a CLI "Command" action. Its output carries a CommandID equal
// to the action's id.
func NewCommand(command string) *Action {
	a := NewAction("Command", Field{Key: "Command", Value: command})
	a.command = true
	return a
}

func Ping() *Action {
	return NewAction("Ping")
}

func Login(username, secret string) *Action {
	return NewAction("Login",
		Field{Key: "Username", Value: username},
		Field{Key: "Secret", Value: secret},
	)
}

func Logoff() *Action {
	return NewAction("Logoff")
}

// WithID sets an explicit ActionID.
func (a *Action) WithID(id string) *Action {
	a.id = id
	return a
}

func (a *Action) ID() string {
	return a.id
}

func (a *Action) SetID(id string) {
	a.id = id
}

// CommandID is empty for anything but commands, which keeps them off the
// secondary index.
func (a *Action) CommandID() string {
	if !a.command {
		return ""
	}
	return a.id
}

func (a *Action) ListStyle() bool {
	return a.listStyle
}

// Terminal reports whether msg ends the action's result. Single-response
// actions end on their first message; lists end on the completion marker or on
// an error response.
func (a *Action) Terminal(msg *Message) bool {
	if !a.listStyle {
		return true
	}
	if strings.EqualFold(msg.Get(KeyEventList), "complete") {
		return true
	}
	return msg.IsResponse() && !msg.Success()
}

func (a *Action) WriteRequest(w *bufio.Writer) error {
	if err := writeField(w, KeyAction, a.Name); err != nil {
		return err
	}
	if a.id != "" {
		if err := writeField(w, KeyActionID, a.id); err != nil {
			return err
		}
	}
	if id := a.CommandID(); id != "" {
		if err := writeField(w, KeyCommandID, id); err != nil {
			return err
		}
	}
	for _, f := range a.Fields {
		if err := writeField(w, f.Key, f.Value); err != nil {
			return err
		}
	}
	_, err := w.Write(newLine)
	return err
}

// String is the wire form of the action.
func (a *Action) String() string {
	var b strings.Builder
	w := bufio.NewWriter(&b)
	_ = a.WriteRequest(w)
	_ = w.Flush()
	return b.String()
}

func writeField(w *bufio.Writer, key, value string) error {
	if _, err := w.WriteString(key); err != nil {
		return err
	}
	if _, err := w.Write(fieldSep); err != nil {
		return err
	}
	// A value spanning lines would end the frame early.
	if _, err := w.WriteString(flattenLines.Replace(value)); err != nil {
		return err
	}
	_, err := w.Write(newLine)
	return err
}
