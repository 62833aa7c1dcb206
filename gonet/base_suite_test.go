package gonet

import (
	"context"
	"time"

	"ami-go/testutil"
)

type BaseSuite struct {
	testutil.BaseSuite
}

// setupPeer starts a manager peer on an ephemeral port answering with h.
func (s *BaseSuite) setupPeer(h ActionHandler) (*Listener, *Server) {
	srv := NewServer(h, s.Logger())
	l := NewListener(0, srv)
	err := l.Start(context.Background())
	s.Require().NoError(err)

	s.T().Cleanup(func() {
		srv.DropAll()
		_ = l.Close()
	})
	return l, srv
}

func (s *BaseSuite) options() Options {
	log := s.Logger()
	return Options{
		ReconnectDelay: s.DurationEnv("TEST_RECONNECT_DELAY", 50*time.Millisecond),
		DialTimeout:    time.Second,
		Logger:         &log,
	}
}

// acceptedPeer waits for the next connection the server greets.
func (s *BaseSuite) acceptedPeer(srv *Server) *Peer {
	select {
	case p := <-srv.Accepted():
		return p
	case <-time.After(2 * time.Second):
		s.FailNow("no connection accepted")
		return nil
	}
}
