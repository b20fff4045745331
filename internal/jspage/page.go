package jspage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dop251/goja"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/webbridge/internal/transport"
)

var ErrClosed = errors.New("jspage: page is closed")

// Page is a headless document backed by a goja VM.
type Page struct {
	vm     *goja.Runtime
	config Config
	logger *zap.Logger
	mu     sync.Mutex
	closed bool

	// Console output
	console   []LogEntry
	consoleMu sync.Mutex

	// Outbound queue filled by the host function
	outMu   sync.Mutex
	outbox  []string
	outWake chan struct{}
}

// New creates a page with the standard globals installed.
func New(config Config, logger *zap.Logger) (*Page, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	defaults := DefaultConfig()
	if config.HostFunc == "" {
		config.HostFunc = defaults.HostFunc
	}
	if config.Receiver == "" {
		config.Receiver = defaults.Receiver
	}

	p := &Page{
		vm:      goja.New(),
		config:  config,
		logger:  logger,
		outWake: make(chan struct{}, 1),
	}
	if config.MaxStackSize > 0 {
		p.vm.SetMaxCallStackSize(config.MaxStackSize)
	}
	if err := p.setupGlobals(); err != nil {
		return nil, err
	}
	return p, nil
}

// HostFunc returns the global name page scripts call to send text.
func (p *Page) HostFunc() string {
	return p.config.HostFunc
}

// setupGlobals configures global objects
func (p *Page) setupGlobals() error {
	vm := p.vm

	// Remove server-side globals a browser would not have
	for _, name := range []string{"require", "process", "module", "exports"} {
		if err := vm.Set(name, goja.Undefined()); err != nil {
			return err
		}
	}

	if err := vm.Set("window", vm.GlobalObject()); err != nil {
		return err
	}

	console := vm.NewObject()
	for _, level := range []string{"log", "info", "warn", "error"} {
		if err := console.Set(level, p.makeConsoleFunc(level)); err != nil {
			return err
		}
	}
	if err := vm.Set("console", console); err != nil {
		return err
	}

	crypto := vm.NewObject()
	if err := crypto.Set("randomUUID", func(goja.FunctionCall) goja.Value {
		return vm.ToValue(uuid.NewString())
	}); err != nil {
		return err
	}
	if err := vm.Set("crypto", crypto); err != nil {
		return err
	}

	// Timers are no-ops: the page is driven by inbound messages only
	noop := func(goja.FunctionCall) goja.Value { return goja.Undefined() }
	if err := vm.Set("setTimeout", noop); err != nil {
		return err
	}
	if err := vm.Set("setInterval", noop); err != nil {
		return err
	}

	return vm.Set(p.config.HostFunc, func(call goja.FunctionCall) goja.Value {
		p.enqueue(call.Argument(0).String())
		return goja.Undefined()
	})
}

// makeConsoleFunc creates a console function
func (p *Page) makeConsoleFunc(level string) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = arg.String()
		}
		msg := strings.Join(parts, " ")

		if p.config.EnableConsole {
			p.consoleMu.Lock()
			p.console = append(p.console, LogEntry{Level: level, Message: msg, Time: time.Now()})
			p.consoleMu.Unlock()
		}
		p.logger.Debug("page console", zap.String("level", level), zap.String("message", msg))
		return goja.Undefined()
	}
}

func (p *Page) enqueue(text string) {
	p.outMu.Lock()
	p.outbox = append(p.outbox, text)
	p.outMu.Unlock()

	select {
	case p.outWake <- struct{}{}:
	default:
	}
}

func (p *Page) drain() []string {
	p.outMu.Lock()
	defer p.outMu.Unlock()
	out := p.outbox
	p.outbox = nil
	return out
}

// Inject runs scripts in order, as a browser would at document creation.
func (p *Page) Inject(scripts ...string) error {
	for i, src := range scripts {
		if _, err := p.Eval(context.Background(), src); err != nil {
			return fmt.Errorf("failed to inject script %d: %w", i, err)
		}
	}
	return nil
}

// Eval runs script and returns its completion value.
func (p *Page) Eval(ctx context.Context, script string) (goja.Value, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrClosed
	}

	stop := p.watch(ctx)
	val, err := p.vm.RunString(script)
	stop()

	if err != nil {
		return nil, scriptError(err)
	}
	return val, nil
}

// watch interrupts the VM on timeout or cancellation until stop is called.
// Must be called with p.mu held.
func (p *Page) watch(ctx context.Context) (stop func()) {
	timeout := p.config.Timeout
	if timeout <= 0 {
		timeout = DefaultConfig().Timeout
	}
	timer := time.NewTimer(timeout)
	done := make(chan struct{})
	exited := make(chan struct{})

	go func() {
		defer close(exited)
		select {
		case <-timer.C:
			p.vm.Interrupt("execution timeout exceeded")
		case <-ctx.Done():
			p.vm.Interrupt("context cancelled")
		case <-done:
		}
	}()

	return func() {
		timer.Stop()
		close(done)
		<-exited
		p.vm.ClearInterrupt()
	}
}

// Deliver hands one inbound message to the page receiver.
func (p *Page) Deliver(ctx context.Context, msg string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}

	stop := p.watch(ctx)
	defer stop()

	recv, err := p.vm.RunString(p.config.Receiver)
	if err != nil {
		return scriptError(err)
	}
	fn, ok := goja.AssertFunction(recv)
	if !ok {
		return fmt.Errorf("jspage: receiver %s is not a function", p.config.Receiver)
	}
	if _, err := fn(goja.Undefined(), p.vm.ToValue(msg)); err != nil {
		return scriptError(err)
	}
	// settle promise reactions queued by the receiver
	if _, err := p.vm.RunString("void 0"); err != nil {
		return scriptError(err)
	}
	return nil
}

// Run connects the page to conn: queued outbound text is sent and inbound
// text is delivered until the connection closes or ctx ends.
func (p *Page) Run(ctx context.Context, conn transport.Conn) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errc := make(chan error, 1)
	go func() {
		errc <- p.pump(ctx, conn)
	}()

	err := transport.Serve(ctx, conn, func(ctx context.Context, msg string) {
		if err := p.Deliver(ctx, msg); err != nil {
			p.logger.Warn("Failed to deliver message to page", zap.Error(err))
		}
	})
	cancel()
	if perr := <-errc; err == nil && perr != nil && !errors.Is(perr, context.Canceled) {
		err = perr
	}
	return err
}

func (p *Page) pump(ctx context.Context, conn transport.Conn) error {
	for {
		for _, text := range p.drain() {
			if err := conn.Send(ctx, text); err != nil {
				if errors.Is(err, transport.ErrClosed) {
					return nil
				}
				return err
			}
		}
		select {
		case <-p.outWake:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Outbox removes and returns text sent by the page while no connection was
// attached.
func (p *Page) Outbox() []string {
	return p.drain()
}

// Console returns captured console output.
func (p *Page) Console() []LogEntry {
	p.consoleMu.Lock()
	defer p.consoleMu.Unlock()
	return append([]LogEntry(nil), p.console...)
}

// Close releases the VM. Further calls return ErrClosed.
func (p *Page) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	p.vm = nil
	p.consoleMu.Lock()
	p.console = nil
	p.consoleMu.Unlock()
	return nil
}

func scriptError(err error) error {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		return &ScriptError{Code: "interrupted", Message: fmt.Sprint(interrupted.Value())}
	}
	var exc *goja.Exception
	if errors.As(err, &exc) {
		return errorFromValue(exc.Value())
	}
	return err
}
