package transport

import (
	"context"
	"errors"
)

// ErrClosed is returned once either end of a connection has been closed.
var ErrClosed = errors.New("transport: connection closed")

// Conn is one end of a text channel.
type Conn interface {
	Send(ctx context.Context, msg string) error
	Receive(ctx context.Context) (string, error)
	Close() error
}

// Handler consumes one inbound message.
type Handler func(ctx context.Context, msg string)

// Serve pumps messages from conn into handle until the connection closes or
// ctx is cancelled. A normal shutdown returns nil.
func Serve(ctx context.Context, conn Conn, handle Handler) error {
	for {
		msg, err := conn.Receive(ctx)
		if err != nil {
			if errors.Is(err, ErrClosed) || errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return nil
			}
			return err
		}
		handle(ctx, msg)
	}
}
