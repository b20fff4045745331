package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/webbridge/internal/bridge/page"
	"github.com/GriffinCanCode/webbridge/internal/shared/types"
	"github.com/GriffinCanCode/webbridge/internal/transport"
)

// Page is a Go page attached to one window of the host.
type Page struct {
	*page.Runtime
	manifest *types.Manifest
	bindings map[string]types.BindingInfo
	conn     transport.Conn
	cancel   context.CancelFunc
	done     chan struct{}
	err      error
	once     sync.Once
}

// Connect fetches the manifest of window and attaches a Go page runtime to
// its bridge socket. The page lives until Close or until the host detaches it.
func (c *Client) Connect(ctx context.Context, window string) (*Page, error) {
	manifest, err := c.Manifest(ctx, window)
	if err != nil {
		return nil, err
	}
	conn, err := c.Dial(ctx, manifest.Socket)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	p := &Page{
		Runtime:  page.New(conn, page.WithLogger(c.logger.With(zap.String("window", window)))),
		manifest: manifest,
		bindings: indexBindings(manifest),
		conn:     conn,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go func() {
		defer close(p.done)
		p.err = p.Runtime.Serve(runCtx, conn)
	}()
	return p, nil
}

func indexBindings(m *types.Manifest) map[string]types.BindingInfo {
	out := make(map[string]types.BindingInfo, len(m.Bindings))
	for _, b := range m.Bindings {
		out[b.Name] = b
	}
	return out
}

// Manifest returns the manifest the page was built from.
func (p *Page) Manifest() *types.Manifest {
	return p.manifest
}

// Call invokes a binding listed in the manifest and waits for its result.
// Like a generated stub, it refuses names the window does not expose.
func (p *Page) Call(ctx context.Context, name string, args ...any) (json.RawMessage, error) {
	if _, ok := p.bindings[name]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBinding, name)
	}
	call, err := p.Invoke(ctx, name, args...)
	if err != nil {
		return nil, err
	}
	return call.Await(ctx)
}

// CallInto is Call decoding the result into dst.
func (p *Page) CallInto(ctx context.Context, dst any, name string, args ...any) error {
	if _, ok := p.bindings[name]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownBinding, name)
	}
	call, err := p.Invoke(ctx, name, args...)
	if err != nil {
		return err
	}
	return call.Decode(ctx, dst)
}

// Done is closed once the connection ends.
func (p *Page) Done() <-chan struct{} {
	return p.done
}

// Close detaches the page and waits for its pump to stop.
func (p *Page) Close() error {
	var err error
	p.once.Do(func() {
		p.cancel()
		err = p.conn.Close()
		if errors.Is(err, transport.ErrClosed) {
			err = nil
		}
		<-p.done
	})
	return err
}

// Err returns the connection error once Done is closed.
func (p *Page) Err() error {
	select {
	case <-p.done:
		return p.err
	default:
		return nil
	}
}
