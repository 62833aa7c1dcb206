package gonet

import (
	"fmt"
	"strings"

	"ami-go/ami"
)

// MockHandler answers a small set of actions the way a manager does. It backs
// `amictl mock` and the client tests.
type MockHandler struct {
	// Username and Secret, when set, are required by Login.
	Username string
	Secret   string

	// Lists maps a list action (lowercase) to the event name of its items.
	// Each list answers with Items entries and a "<Item>Complete" marker.
	Lists map[string]string
	Items int

	// Commands maps a CLI command to its output lines.
	Commands map[string][]string
}

func NewMockHandler() *MockHandler {
	return &MockHandler{
		Lists: map[string]string{
			"sippeers":         "PeerEntry",
			"coreshowchannels": "CoreShowChannel",
		},
		Items: 2,
		Commands: map[string][]string{
			"core show uptime": {"System uptime: 1 hour, 2 minutes", "Last reload: 3 minutes"},
		},
	}
}

func (h *MockHandler) HandleAction(p *Peer, action *ami.Message) error {
	id := action.ActionID()
	name := strings.ToLower(action.Get(ami.KeyAction))

	switch name {
	case "ping":
		return p.Write(response(id, "Success", ami.Field{Key: "Ping", Value: "Pong"}))
	case "login":
		if h.Username != "" && (action.Get("Username") != h.Username || action.Get("Secret") != h.Secret) {
			return p.Write(response(id, "Error", ami.Field{Key: "Message", Value: "Authentication failed"}))
		}
		return p.Write(
			response(id, "Success", ami.Field{Key: "Message", Value: "Authentication accepted"}),
			ami.NewMessage(
				ami.Field{Key: ami.KeyEvent, Value: "FullyBooted"},
				ami.Field{Key: "Privilege", Value: "system,all"},
				ami.Field{Key: "Status", Value: "Fully Booted"},
			),
		)
	case "logoff":
		if err := p.Write(response(id, "Goodbye", ami.Field{Key: "Message", Value: "Thanks for all the fish."})); err != nil {
			return err
		}
		return ErrHangup
	case "command":
		return h.command(p, id, action)
	}

	if item, ok := h.Lists[name]; ok {
		return h.list(p, id, item)
	}
	return p.Write(response(id, "Error", ami.Field{Key: "Message", Value: "Invalid/unknown command"}))
}

func (h *MockHandler) command(p *Peer, id string, action *ami.Message) error {
	output, ok := h.Commands[action.Get("Command")]
	if !ok {
		output = []string{fmt.Sprintf("No such command '%s'", action.Get("Command"))}
	}
	msg := response(id, "Success", ami.Field{Key: "Message", Value: "Command output follows"})
	if cid := action.CommandID(); cid != "" {
		msg.Add(ami.KeyCommandID, cid)
	}
	for _, line := range output {
		msg.Add("Output", line)
	}
	return p.Write(msg)
}

func (h *MockHandler) list(p *Peer, id, item string) error {
	msgs := []*ami.Message{
		response(id, "Success",
			ami.Field{Key: ami.KeyEventList, Value: "start"},
			ami.Field{Key: "Message", Value: "List will follow"},
		),
	}
	for i := 1; i <= h.Items; i++ {
		msgs = append(msgs, ami.NewMessage(
			ami.Field{Key: ami.KeyEvent, Value: item},
			ami.Field{Key: ami.KeyActionID, Value: id},
			ami.Field{Key: "ObjectName", Value: fmt.Sprintf("%d", 100+i)},
		))
	}
	msgs = append(msgs, ami.NewMessage(
		ami.Field{Key: ami.KeyEvent, Value: item + "Complete"},
		ami.Field{Key: ami.KeyActionID, Value: id},
		ami.Field{Key: ami.KeyEventList, Value: "Complete"},
		ami.Field{Key: "ListItems", Value: fmt.Sprintf("%d", h.Items)},
	))
	return p.Write(msgs...)
}

func response(id, status string, fields ...ami.Field) *ami.Message {
	msg := ami.NewMessage(ami.Field{Key: ami.KeyResponse, Value: status})
	if id != "" {
		msg.Add(ami.KeyActionID, id)
	}
	for _, f := range fields {
		msg.Add(f.Key, f.Value)
	}
	return msg
}
