package ami

import (
	"strings"
)

type Kind int

const (
	KindOther Kind = iota
	KindResponse
	KindEvent
)

func (k Kind) String() string {
	switch k {
	case KindResponse:
		return "response"
	case KindEvent:
		return "event"
	default:
		return "other"
	}
}

// Field is one "key: value" line, with the key in its original casing.
type Field struct {
	Key   string
	Value string
}

// Message is the parsed content of one frame. Lookups are case-insensitive; a
// repeated key returns its last value from Get and every value from Values.
type Message struct {
	fields []Field
	index  map[string][]int
}

func NewMessage(fields ...Field) *Message {
	m := &Message{index: make(map[string][]int, len(fields))}
	for _, f := range fields {
		m.Add(f.Key, f.Value)
	}
	return m
}

// ParseMessage parses one frame. It returns nil when the frame holds no
// "key: value" line at all.
func ParseMessage(frame string) *Message {
	var m *Message
	for _, line := range strings.Split(frame, "\n") {
		key, value, ok := splitLine(line)
		if !ok {
			continue
		}
		if m == nil {
			m = NewMessage()
		}
		m.Add(key, value)
	}
	return m
}

func splitLine(line string) (string, string, bool) {
	line = strings.TrimRight(line, "\r")
	key, value, found := strings.Cut(line, ":")
	if !found {
		return "", "", false
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", "", false
	}
	return key, strings.TrimSpace(value), true
}

func (m *Message) Add(key, value string) {
	lower := strings.ToLower(key)
	m.index[lower] = append(m.index[lower], len(m.fields))
	m.fields = append(m.fields, Field{Key: key, Value: value})
}

func (m *Message) Get(key string) string {
	v, _ := m.Lookup(key)
	return v
}

func (m *Message) Lookup(key string) (string, bool) {
	idx := m.index[strings.ToLower(key)]
	if len(idx) == 0 {
		return "", false
	}
	return m.fields[idx[len(idx)-1]].Value, true
}

func (m *Message) Has(key string) bool {
	return len(m.index[strings.ToLower(key)]) > 0
}

// Values returns every value of key in arrival order.
func (m *Message) Values(key string) []string {
	idx := m.index[strings.ToLower(key)]
	out := make([]string, 0, len(idx))
	for _, i := range idx {
		out = append(out, m.fields[i].Value)
	}
	return out
}

// Keys returns distinct keys in first-seen order, original casing.
func (m *Message) Keys() []string {
	keys := make([]string, 0, len(m.index))
	for i, f := range m.fields {
		if m.index[strings.ToLower(f.Key)][0] == i {
			keys = append(keys, f.Key)
		}
	}
	return keys
}

func (m *Message) Fields() []Field {
	return append([]Field(nil), m.fields...)
}

func (m *Message) Len() int {
	return len(m.fields)
}

// Map flattens the message, keyed by the casing of each key's first
// occurrence, last value winning.
func (m *Message) Map() map[string]string {
	out := make(map[string]string, len(m.index))
	for _, key := range m.Keys() {
		out[key] = m.Get(key)
	}
	return out
}

// Kind reports the line prefix, the key of the first line.
func (m *Message) Kind() Kind {
	if len(m.fields) == 0 {
		return KindOther
	}
	switch strings.ToLower(m.fields[0].Key) {
	case "event":
		return KindEvent
	case "response":
		return KindResponse
	default:
		return KindOther
	}
}

// Name is the value of the first line, e.g. the event name or response status.
func (m *Message) Name() string {
	if len(m.fields) == 0 {
		return ""
	}
	return m.fields[0].Value
}

// IsEvent reports whether the message carries an Event marker.
func (m *Message) IsEvent() bool {
	return m.Has(KeyEvent)
}

func (m *Message) IsResponse() bool {
	return m.Has(KeyResponse)
}

func (m *Message) ActionID() string {
	return m.Get(KeyActionID)
}

func (m *Message) CommandID() string {
	return m.Get(KeyCommandID)
}

// Success reports whether a Response is one of the non-error statuses.
func (m *Message) Success() bool {
	switch strings.ToLower(m.Get(KeyResponse)) {
	case "success", "follows", "goodbye":
		return true
	default:
		return false
	}
}

// String serializes the message back to wire form, delimiter included.
func (m *Message) String() string {
	var b strings.Builder
	for _, f := range m.fields {
		b.WriteString(f.Key)
		b.WriteString(": ")
		b.WriteString(f.Value)
		b.WriteString(EOL)
	}
	b.WriteString(EOL)
	return b.String()
}
