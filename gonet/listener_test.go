package gonet

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type ListenerSuite struct {
	BaseSuite
}

func TestListenerSuite(t *testing.T) {
	suite.Run(t, new(ListenerSuite))
}

// holdFactory keeps every connection open until the listener shuts down.
type holdFactory struct {
	served atomic.Int32
}

func (f *holdFactory) New(c net.Conn, done <-chan struct{}) {
	f.served.Add(1)
	<-done
	_ = c.Close()
}

func (s *ListenerSuite) TestCloseWhileAccepting() {
	f := &holdFactory{}
	l := NewListener(0, f)
	s.Require().NoError(l.Start(context.Background()))
	addr := l.Address().String()

	stop := make(chan struct{})
	var dialers sync.WaitGroup
	for i := 0; i < 8; i++ {
		dialers.Add(1)
		go func() {
			defer dialers.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				conn, err := net.DialTimeout("tcp", addr, 100*time.Millisecond)
				if err == nil {
					_ = conn.Close()
				}
			}
		}()
	}

	s.WaitFor(func() bool { return f.served.Load() > 0 }, 2*time.Second, "nothing accepted")

	closed := make(chan error, 1)
	go func() { closed <- l.Close() }()
	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		s.FailNow("close did not return")
	}
	close(stop)
	dialers.Wait()

	s.NoError(l.Close())
	_, err := net.DialTimeout("tcp", addr, 100*time.Millisecond)
	s.Error(err)
}
