package gonet

import (
	"bufio"
	"errors"
	"net"
	"sync"

	"ami-go/ami"

	"github.com/rs/zerolog"
)

// DefaultBanner is the greeting line a manager sends on accept.
const DefaultBanner = "Asterisk Call Manager/5.0.1"

// ErrHangup from an ActionHandler closes the peer after its replies are written.
var ErrHangup = errors.New("hang up")

// ActionHandler answers the actions a peer receives.
type ActionHandler interface {
	HandleAction(p *Peer, action *ami.Message) error
}

type ActionHandlerFunc func(p *Peer, action *ami.Message) error

func (f ActionHandlerFunc) HandleAction(p *Peer, action *ami.Message) error {
	return f(p, action)
}

// Peer is the serving side of one accepted connection.
type Peer struct {
	conn net.Conn
	log  zerolog.Logger

	lock sync.Mutex
	w    *bufio.Writer
}

func (p *Peer) Write(msgs ...*ami.Message) error {
	p.lock.Lock()
	defer p.lock.Unlock()
	for _, msg := range msgs {
		if _, err := p.w.WriteString(msg.String()); err != nil {
			return err
		}
	}
	return p.w.Flush()
}

// WriteRaw writes b unframed, for streams cut at arbitrary points.
func (p *Peer) WriteRaw(b []byte) error {
	p.lock.Lock()
	defer p.lock.Unlock()
	if _, err := p.w.Write(b); err != nil {
		return err
	}
	return p.w.Flush()
}

func (p *Peer) Close() error {
	return p.conn.Close()
}

// Server speaks the manager side of the protocol: it greets, frames incoming
// actions and hands each to its handler. It implements HandlerFactory.
type Server struct {
	handler ActionHandler
	banner  string
	log     zerolog.Logger

	lock  sync.Mutex
	peers map[*Peer]struct{}
	conns chan *Peer
}

func NewServer(handler ActionHandler, log zerolog.Logger) *Server {
	return &Server{
		handler: handler,
		banner:  DefaultBanner,
		log:     log,
		peers:   make(map[*Peer]struct{}),
		conns:   make(chan *Peer, 16),
	}
}

// Accepted yields every peer once its greeting has been sent.
func (s *Server) Accepted() <-chan *Peer {
	return s.conns
}

// Broadcast writes msg to every connected peer.
func (s *Server) Broadcast(msg *ami.Message) {
	for _, p := range s.Peers() {
		if err := p.Write(msg); err != nil {
			p.log.Debug().Err(err).Msg("broadcast failed")
		}
	}
}

func (s *Server) Peers() []*Peer {
	s.lock.Lock()
	defer s.lock.Unlock()
	out := make([]*Peer, 0, len(s.peers))
	for p := range s.peers {
		out = append(out, p)
	}
	return out
}

// DropAll closes every peer, as a manager restart would.
func (s *Server) DropAll() {
	for _, p := range s.Peers() {
		_ = p.Close()
	}
}

func (s *Server) New(conn net.Conn, done <-chan struct{}) {
	p := &Peer{
		conn: conn,
		log:  s.log.With().Str("peer", conn.RemoteAddr().String()).Logger(),
		w:    bufio.NewWriter(conn),
	}

	s.lock.Lock()
	s.peers[p] = struct{}{}
	s.lock.Unlock()
	defer func() {
		s.lock.Lock()
		delete(s.peers, p)
		s.lock.Unlock()
	}()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-done:
			_ = conn.Close()
		case <-stop:
		}
	}()

	if err := p.WriteRaw([]byte(s.banner + ami.EOL)); err != nil {
		_ = conn.Close()
		return
	}
	select {
	case s.conns <- p:
	default:
	}

	s.serve(p)
	_ = conn.Close()
}

func (s *Server) serve(p *Peer) {
	decoder, _ := ami.NewDecoder(ami.DefaultEncoding)
	splitter := ami.NewSplitter(DefaultMaxFrameSize)
	buf := make([]byte, DefaultReadBufferSize)
	for {
		n, err := p.conn.Read(buf)
		if n > 0 {
			frames, ferr := splitter.Feed(buf[:n])
			for _, frame := range frames {
				action := ami.ParseMessage(decoder.Decode(frame))
				if action == nil {
					continue
				}
				if herr := s.handler.HandleAction(p, action); herr != nil {
					p.log.Debug().Err(herr).Str("action", action.Get(ami.KeyAction)).Msg("closing peer")
					return
				}
			}
			if ferr != nil {
				p.log.Debug().Err(ferr).Msg("bad frame from client")
				return
			}
		}
		if err != nil {
			return
		}
	}
}
