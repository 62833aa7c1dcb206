package gonet

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"ami-go/ami"

	"github.com/rs/zerolog"
)

var (
	ErrDuplicateID = errors.New("action id already pending")
	ErrMissingID   = errors.New("action has no id")
	ErrPending     = errors.New("request still pending")
)

// Response is the result of a completed request: the single matching message,
// or every message of a list-style request in arrival order.
type Response struct {
	Messages []*ami.Message
}

// Message returns the last message, which is the only one for single-response
// requests and the completion marker for lists.
func (r *Response) Message() *ami.Message {
	if r == nil || len(r.Messages) == 0 {
		return nil
	}
	return r.Messages[len(r.Messages)-1]
}

// Future is the completion handle of a submitted request. It is resolved once,
// with a Response or an error.
type Future struct {
	id string

	resolved atomic.Bool
	resp     *Response
	err      error

	// Closed when resp or err has been set.
	completed chan struct{}
}

func newFuture(id string) *Future {
	return &Future{id: id, completed: make(chan struct{})}
}

func (f *Future) ID() string {
	return f.id
}

func (f *Future) Done() <-chan struct{} {
	return f.completed
}

// Wait blocks until the future resolves or ctx ends. Abandoning the wait leaves
// the request pending.
func (f *Future) Wait(ctx context.Context) (*Response, error) {
	select {
	case <-f.completed:
		return f.resp, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Result returns the outcome without blocking, ErrPending until resolved.
func (f *Future) Result() (*Response, error) {
	select {
	case <-f.completed:
		return f.resp, f.err
	default:
		return nil, ErrPending
	}
}

// resolve reports false if the future was already resolved; the first outcome stays.
func (f *Future) resolve(resp *Response, err error) bool {
	if !f.resolved.CompareAndSwap(false, true) {
		return false
	}
	f.resp = resp
	f.err = err
	close(f.completed)
	return true
}

type pendingRequest struct {
	req       Request
	id        string
	commandID string
	messages  []*ami.Message
	future    *Future
}

// Outcome is what Route did with a message.
type Outcome int

const (
	// Consumed messages were handed to a pending request.
	Consumed Outcome = iota
	// Unmatched messages are events nobody waits for, they go to the dispatcher.
	Unmatched
	// Dropped messages matched nothing and are not events.
	Dropped
)

func (o Outcome) String() string {
	switch o {
	case Consumed:
		return "consumed"
	case Unmatched:
		return "unmatched"
	default:
		return "dropped"
	}
}

// PendingTable tracks in-flight requests of one connection by ActionID, and by
// CommandID for requests that have one. Both keys point at the same entry and
// are removed together.
type PendingTable struct {
	log zerolog.Logger

	lock        sync.Mutex
	byID        map[string]*pendingRequest
	byCommandID map[string]*pendingRequest

	// Set by FailAll, refuses later registrations.
	closedErr error
}

func NewPendingTable(log zerolog.Logger) *PendingTable {
	return &PendingTable{
		log:         log,
		byID:        make(map[string]*pendingRequest),
		byCommandID: make(map[string]*pendingRequest),
	}
}

func (t *PendingTable) Register(req Request) (*Future, error) {
	id := req.ID()
	if id == "" {
		return nil, ErrMissingID
	}
	commandID := commandIDOf(req)

	t.lock.Lock()
	defer t.lock.Unlock()

	if t.closedErr != nil {
		return nil, t.closedErr
	}
	if _, ok := t.byID[id]; ok {
		return nil, fmt.Errorf("%q: %w", id, ErrDuplicateID)
	}
	if _, ok := t.byCommandID[commandID]; ok && commandID != "" {
		return nil, fmt.Errorf("command %q: %w", commandID, ErrDuplicateID)
	}

	p := &pendingRequest{req: req, id: id, commandID: commandID, future: newFuture(id)}
	t.byID[id] = p
	if commandID != "" {
		t.byCommandID[commandID] = p
	}
	return p.future, nil
}

// Route offers msg to the pending requests, CommandID first, then ActionID.
func (t *PendingTable) Route(msg *ami.Message) Outcome {
	t.lock.Lock()

	var p *pendingRequest
	if cid := msg.CommandID(); cid != "" {
		p = t.byCommandID[cid]
	}
	if p == nil {
		if id := msg.ActionID(); id != "" {
			p = t.byID[id]
		}
	}

	if p == nil {
		t.lock.Unlock()
		if msg.IsEvent() {
			return Unmatched
		}
		t.log.Debug().Str("action_id", msg.ActionID()).Msg("dropping unmatched message")
		return Dropped
	}

	p.messages = append(p.messages, msg)
	done := !p.req.ListStyle() || p.req.Terminal(msg)
	if done {
		t.removeLocked(p)
	}
	t.lock.Unlock()

	if done {
		t.complete(p, &Response{Messages: p.messages}, nil)
	}
	return Consumed
}

// Forget removes the request with id and resolves it with err. It reports
// false if nothing was pending under id.
func (t *PendingTable) Forget(id string, err error) bool {
	t.lock.Lock()
	p, ok := t.byID[id]
	if ok {
		t.removeLocked(p)
	}
	t.lock.Unlock()

	if ok {
		t.complete(p, nil, err)
	}
	return ok
}

// FailAll resolves every pending request with err, empties the table and
// refuses further registrations with err. It returns the number failed.
func (t *PendingTable) FailAll(err error) int {
	t.lock.Lock()
	failed := make([]*pendingRequest, 0, len(t.byID))
	for _, p := range t.byID {
		failed = append(failed, p)
	}
	clear(t.byID)
	clear(t.byCommandID)
	t.closedErr = err
	t.lock.Unlock()

	for _, p := range failed {
		t.complete(p, nil, err)
	}
	return len(failed)
}

func (t *PendingTable) Len() int {
	t.lock.Lock()
	defer t.lock.Unlock()
	return len(t.byID)
}

func (t *PendingTable) removeLocked(p *pendingRequest) {
	delete(t.byID, p.id)
	if p.commandID != "" {
		delete(t.byCommandID, p.commandID)
	}
}

func (t *PendingTable) complete(p *pendingRequest, resp *Response, err error) {
	if !p.future.resolve(resp, err) {
		// Entries leave the table under the lock before resolving, so this is a bug.
		t.log.Error().Str("action_id", p.id).Msg("request resolved twice, keeping first result")
		return
	}
	t.log.Debug().Str("action_id", p.id).Int("messages", len(p.messages)).AnErr("error", err).Msg("request completed")
}
