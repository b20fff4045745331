package client

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/webbridge/internal/bridge/script"
	"github.com/GriffinCanCode/webbridge/internal/jspage"
	"github.com/GriffinCanCode/webbridge/internal/shared/types"
)

// ScriptPage is a goja page running the host's bridge runtime and stubs.
type ScriptPage struct {
	*jspage.Page
	manifest *types.Manifest
	cancel   context.CancelFunc
	done     chan error
	once     sync.Once
	err      error
}

// ConnectScript builds a headless JS page for window from its manifest and
// attaches it to the bridge socket. Stubs are rendered locally with the
// native transport, since goja has no WebSocket.
func (c *Client) ConnectScript(ctx context.Context, window string) (*ScriptPage, error) {
	manifest, err := c.Manifest(ctx, window)
	if err != nil {
		return nil, err
	}

	cfg := jspage.DefaultConfig()
	cfg.Receiver = fmt.Sprintf("window.%s.receive", manifest.Namespace)
	jp, err := jspage.New(cfg, c.logger.With(zap.String("window", window)))
	if err != nil {
		return nil, err
	}
	if err := jp.Inject(ManifestScripts(manifest, jp.HostFunc())...); err != nil {
		jp.Close()
		return nil, err
	}

	conn, err := c.Dial(ctx, manifest.Socket)
	if err != nil {
		jp.Close()
		return nil, err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	p := &ScriptPage{Page: jp, manifest: manifest, cancel: cancel, done: make(chan error, 1)}
	go func() {
		err := jp.Run(runCtx, conn)
		conn.Close()
		p.done <- err
	}()
	return p, nil
}

// ManifestScripts renders the init scripts of a page for manifest, routing
// outbound text through hostFunc.
func ManifestScripts(m *types.Manifest, hostFunc string) []string {
	var stubs strings.Builder
	stubs.WriteString(script.WindowInit(m.Namespace, m.Object))
	for _, b := range m.Bindings {
		stubs.WriteString(script.Stub(m.Namespace, m.Object, script.StubSpec{
			Name:   b.Name,
			Params: b.Params,
			Global: b.Scope == "global",
		}))
	}
	return []string{
		script.Bootstrap(m.Namespace),
		script.NativeTransport(m.Namespace, hostFunc),
		stubs.String(),
	}
}

// Call runs the page stub for name and awaits its promise, returning the
// result as JSON text.
func (p *ScriptPage) Call(ctx context.Context, name string, args ...any) (string, error) {
	expr, err := p.StubExpr(name, args...)
	if err != nil {
		return "", err
	}
	v, err := p.Eval(ctx, expr)
	if err != nil {
		return "", err
	}
	return p.AwaitJSON(ctx, v)
}

// StubExpr renders the page expression calling the stub of name.
func (p *ScriptPage) StubExpr(name string, args ...any) (string, error) {
	var target string
	for _, b := range p.manifest.Bindings {
		if b.Name != name {
			continue
		}
		target = fmt.Sprintf("window.%s.bindings.%s.%s", p.manifest.Namespace, p.manifest.Object, name)
		if b.Scope == "global" {
			target = fmt.Sprintf("window.%s.bindings.%s", p.manifest.Namespace, name)
		}
	}
	if target == "" {
		return "", fmt.Errorf("%w: %s", ErrUnknownBinding, name)
	}

	parts := make([]string, len(args))
	for i, arg := range args {
		data, err := sonic.Marshal(arg)
		if err != nil {
			return "", fmt.Errorf("failed to encode argument %d: %w", i, err)
		}
		parts[i] = string(data)
	}
	return fmt.Sprintf("%s(%s)", target, strings.Join(parts, ", ")), nil
}

// Close detaches and releases the page.
func (p *ScriptPage) Close() error {
	p.once.Do(func() {
		p.cancel()
		p.err = <-p.done
		p.Page.Close()
	})
	return p.err
}
