package registry

import (
	"context"
	"fmt"
	"reflect"

	"github.com/GriffinCanCode/webbridge/internal/bridge/protocol"
)

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// Option configures RegisterFunc.
type Option func(*Binding)

// WithParams names the parameters exposed to the page. Unnamed parameters
// default to arg0, arg1 and so on.
func WithParams(names ...string) Option {
	return func(b *Binding) {
		b.Params = names
	}
}

// WithGlobal places the binding at the namespace root.
func WithGlobal() Option {
	return func(b *Binding) {
		b.Scope = ScopeGlobal
	}
}

// RegisterFunc adapts an arbitrary Go function and registers it.
//
// The function may take a context.Context first; every other parameter is
// decoded positionally from the request. Accepted results are (), (T),
// (error), (T, error), and a receive channel in place of T, which marks the
// binding async and resolves with the first value received.
func (r *Registry) RegisterFunc(name string, fn any, opts ...Option) error {
	b, err := Adapt(name, fn, opts...)
	if err != nil {
		return err
	}
	return r.Register(b)
}

// Adapt builds a Binding from a Go function without registering it.
func Adapt(name string, fn any, opts ...Option) (Binding, error) {
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func || fv.IsNil() {
		return Binding{}, fmt.Errorf("%w: %s is not a function", ErrInvalid, name)
	}
	ft := fv.Type()
	if ft.IsVariadic() {
		return Binding{}, fmt.Errorf("%w: %s is variadic", ErrInvalid, name)
	}

	withCtx := ft.NumIn() > 0 && ft.In(0) == contextType
	first := 0
	if withCtx {
		first = 1
	}
	argTypes := make([]reflect.Type, 0, ft.NumIn()-first)
	for i := first; i < ft.NumIn(); i++ {
		argTypes = append(argTypes, ft.In(i))
	}

	shape, err := resultShapeOf(ft)
	if err != nil {
		return Binding{}, fmt.Errorf("%w: %s: %v", ErrInvalid, name, err)
	}

	b := Binding{Name: name, Async: shape.async}
	for _, opt := range opts {
		opt(&b)
	}
	if b.Params == nil {
		b.Params = make([]string, len(argTypes))
		for i := range argTypes {
			b.Params[i] = fmt.Sprintf("arg%d", i)
		}
	}
	if len(b.Params) != len(argTypes) {
		return Binding{}, fmt.Errorf("%w: %s declares %d parameter names for %d parameters",
			ErrInvalid, name, len(b.Params), len(argTypes))
	}

	b.Handler = func(ctx context.Context, args protocol.Args) (any, error) {
		in := make([]reflect.Value, 0, ft.NumIn())
		if withCtx {
			in = append(in, reflect.ValueOf(ctx))
		}
		for i, t := range argTypes {
			v := reflect.New(t)
			args.Decode(i, v.Interface())
			in = append(in, v.Elem())
		}
		return shape.collect(ctx, fv.Call(in))
	}
	return b, nil
}

type resultShape struct {
	value    bool
	hasError bool
	async    bool
}

func resultShapeOf(ft reflect.Type) (resultShape, error) {
	var s resultShape
	switch ft.NumOut() {
	case 0:
	case 1:
		if ft.Out(0) == errorType {
			s.hasError = true
		} else {
			s.value = true
		}
	case 2:
		if ft.Out(1) != errorType {
			return s, fmt.Errorf("second result must be error")
		}
		s.value, s.hasError = true, true
	default:
		return s, fmt.Errorf("too many results")
	}
	if s.value {
		out := ft.Out(0)
		if out.Kind() == reflect.Chan {
			if out.ChanDir()&reflect.RecvDir == 0 {
				return s, fmt.Errorf("async result must be a receive channel")
			}
			s.async = true
		}
	}
	return s, nil
}

func (s resultShape) collect(ctx context.Context, out []reflect.Value) (any, error) {
	if s.hasError {
		if errVal := out[len(out)-1]; !errVal.IsNil() {
			return nil, errVal.Interface().(error)
		}
	}
	if !s.value {
		return nil, nil
	}
	if s.async {
		return Await(ctx, out[0])
	}
	return out[0].Interface(), nil
}

// Await receives the first value from a channel, honouring ctx. A closed
// channel resolves to nil.
func Await(ctx context.Context, ch reflect.Value) (any, error) {
	if ch.IsNil() {
		return nil, nil
	}
	chosen, v, ok := reflect.Select([]reflect.SelectCase{
		{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(ctx.Done())},
		{Dir: reflect.SelectRecv, Chan: ch},
	})
	if chosen == 0 {
		return nil, ctx.Err()
	}
	if !ok {
		return nil, nil
	}
	return v.Interface(), nil
}

// Receive is the typed form of Await used by generated wiring.
func Receive[T any](ctx context.Context, ch <-chan T) (any, error) {
	if ch == nil {
		return nil, nil
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case v, ok := <-ch:
		if !ok {
			return nil, nil
		}
		return v, nil
	}
}
