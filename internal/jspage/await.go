package jspage

import (
	"context"
	"time"

	"github.com/dop251/goja"
)

const pollInterval = time.Millisecond

// Await waits for v to settle if it is a promise and returns the exported
// result. Non-promise values are exported directly. A rejection is returned
// as *ScriptError.
func (p *Page) Await(ctx context.Context, v goja.Value) (any, error) {
	settled, err := p.awaitValue(ctx, v)
	if err != nil {
		return nil, err
	}
	return exportValue(settled), nil
}

// AwaitJSON is Await with the settled value rendered by JSON.stringify, which
// keeps comparisons independent of goja's export types.
func (p *Page) AwaitJSON(ctx context.Context, v goja.Value) (string, error) {
	settled, err := p.awaitValue(ctx, v)
	if err != nil {
		return "", err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return "", ErrClosed
	}
	if settled == nil || goja.IsUndefined(settled) {
		return "null", nil
	}
	stringify, ok := goja.AssertFunction(p.vm.Get("JSON").ToObject(p.vm).Get("stringify"))
	if !ok {
		return "", &ScriptError{Message: "JSON.stringify unavailable"}
	}
	out, err := stringify(goja.Undefined(), settled)
	if err != nil {
		return "", scriptError(err)
	}
	if goja.IsUndefined(out) {
		return "null", nil
	}
	return out.String(), nil
}

func (p *Page) awaitValue(ctx context.Context, v goja.Value) (goja.Value, error) {
	promise, ok := asPromise(v)
	if !ok {
		return v, nil
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return nil, ErrClosed
		}
		state := promise.State()
		result := promise.Result()
		p.mu.Unlock()

		switch state {
		case goja.PromiseStateFulfilled:
			return result, nil
		case goja.PromiseStateRejected:
			p.mu.Lock()
			defer p.mu.Unlock()
			return nil, errorFromValue(result)
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func asPromise(v goja.Value) (*goja.Promise, bool) {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, false
	}
	promise, ok := v.Export().(*goja.Promise)
	return promise, ok
}

// exportValue converts goja value to Go value
func exportValue(val goja.Value) any {
	if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
		return nil
	}
	return val.Export()
}

// errorFromValue reads message and code from a thrown or rejected value.
func errorFromValue(val goja.Value) error {
	if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
		return &ScriptError{Message: "undefined"}
	}
	obj, ok := val.(*goja.Object)
	if !ok {
		return &ScriptError{Message: val.String()}
	}
	se := &ScriptError{Message: val.String()}
	if msg := obj.Get("message"); msg != nil && !goja.IsUndefined(msg) {
		se.Message = msg.String()
	}
	if code := obj.Get("code"); code != nil && !goja.IsUndefined(code) && !goja.IsNull(code) {
		se.Code = code.String()
	}
	return se
}
