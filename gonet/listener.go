package gonet

import (
	"context"
	"fmt"
	"net"
	"sync"
)

type HandlerFactory interface {
	// New serves c until it closes or done is closed. It may block.
	New(c net.Conn, done <-chan struct{})
}

type Listener struct {
	handler HandlerFactory
	addr    string

	listener  net.Listener
	done      chan struct{}
	closeOnce sync.Once

	// lock orders serving.Add against the Wait in Close.
	lock    sync.Mutex
	closed  bool
	serving sync.WaitGroup
}

func NewListener(port int, handler HandlerFactory) *Listener {
	return NewListenerForAddr(fmt.Sprintf(":%d", port), handler)
}

func NewListenerForAddr(addr string, handler HandlerFactory) *Listener {
	l := &Listener{
		handler: handler,
		addr:    addr,

		done: make(chan struct{}),
	}
	return l
}

func (l *Listener) Start(ctx context.Context) error {
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", l.addr)
	if err != nil {
		return err
	}

	l.listener = listener
	go l.listen()
	return nil
}

func (l *Listener) listen() {
	for {
		conn, err := l.listener.Accept()
		if err != nil {
			return
		}
		l.lock.Lock()
		if l.closed {
			l.lock.Unlock()
			_ = conn.Close()
			return
		}
		l.serving.Add(1)
		l.lock.Unlock()
		go func() {
			defer l.serving.Done()
			l.handler.New(conn, l.done)
		}()
	}
}

func (l *Listener) Address() net.Addr {
	return l.listener.Addr()
}

// Close stops accepting and waits for the served connections to finish.
func (l *Listener) Close() error {
	var err error
	l.closeOnce.Do(func() {
		l.lock.Lock()
		l.closed = true
		l.lock.Unlock()
		close(l.done)
		err = l.listener.Close()
		l.serving.Wait()
	})
	return err
}
