package dispatch

import (
	"context"
	"fmt"
)

// CallInfo identifies the request a handler is serving.
type CallInfo struct {
	ID   string
	Name string
}

type callKey struct{}

func withCall(ctx context.Context, info CallInfo) context.Context {
	return context.WithValue(ctx, callKey{}, info)
}

// CallFromContext returns the request being served, if any.
func CallFromContext(ctx context.Context) (CallInfo, bool) {
	info, ok := ctx.Value(callKey{}).(CallInfo)
	return info, ok
}

// PanicError wraps a recovered handler panic.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("binding panicked: %v", e.Value)
}
