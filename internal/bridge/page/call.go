package page

import (
	"context"
	"encoding/json"

	"github.com/GriffinCanCode/webbridge/internal/bridge/protocol"
)

// Call is the handle of one outstanding invocation.
type Call struct {
	ID   string
	Name string

	done chan struct{}
	ret  json.RawMessage
	err  error
}

func newCall(id, name string) *Call {
	return &Call{ID: id, Name: name, done: make(chan struct{})}
}

func (c *Call) complete(resp protocol.Response) {
	c.ret = resp.Ret
	if resp.Error != nil {
		c.err = resp.Error
	}
	close(c.done)
}

// Done is closed when the reply has arrived.
func (c *Call) Done() <-chan struct{} {
	return c.done
}

// Await blocks until the reply arrives or ctx ends. A surfaced host fault is
// returned as *protocol.Fault.
func (c *Call) Await(ctx context.Context) (json.RawMessage, error) {
	select {
	case <-c.done:
		return c.ret, c.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Decode awaits the reply and unmarshals it into dst. A null result leaves
// dst untouched.
func (c *Call) Decode(ctx context.Context, dst any) error {
	ret, err := c.Await(ctx)
	if err != nil {
		return err
	}
	if protocol.IsNull(ret) || dst == nil {
		return nil
	}
	return protocol.Unmarshal(ret, dst)
}
