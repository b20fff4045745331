package transport

import (
	"context"
	"sync"
)

// DefaultPipeBuffer is the per-direction queue length of a Pipe.
const DefaultPipeBuffer = 64

type pipeShared struct {
	done chan struct{}
	once sync.Once
}

func (s *pipeShared) close() {
	s.once.Do(func() { close(s.done) })
}

type pipeEnd struct {
	in     chan string
	out    chan string
	shared *pipeShared
}

// Pipe returns two connected in-memory ends. Closing either end closes both.
func Pipe() (Conn, Conn) {
	return PipeSize(DefaultPipeBuffer)
}

// PipeSize is Pipe with an explicit buffer length.
func PipeSize(buffer int) (Conn, Conn) {
	ab := make(chan string, buffer)
	ba := make(chan string, buffer)
	shared := &pipeShared{done: make(chan struct{})}
	return &pipeEnd{in: ba, out: ab, shared: shared}, &pipeEnd{in: ab, out: ba, shared: shared}
}

func (p *pipeEnd) Send(ctx context.Context, msg string) error {
	select {
	case <-p.shared.done:
		return ErrClosed
	default:
	}
	select {
	case p.out <- msg:
		return nil
	case <-p.shared.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *pipeEnd) Receive(ctx context.Context) (string, error) {
	select {
	case msg := <-p.in:
		return msg, nil
	default:
	}
	select {
	case msg := <-p.in:
		return msg, nil
	case <-p.shared.done:
		return "", ErrClosed
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (p *pipeEnd) Close() error {
	p.shared.close()
	return nil
}
