package window

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"reflect"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/webbridge/internal/bridge/dispatch"
	"github.com/GriffinCanCode/webbridge/internal/bridge/protocol"
	"github.com/GriffinCanCode/webbridge/internal/bridge/registry"
	"github.com/GriffinCanCode/webbridge/internal/bridge/script"
	"github.com/GriffinCanCode/webbridge/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/webbridge/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/webbridge/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/webbridge/internal/shared/id"
	"github.com/GriffinCanCode/webbridge/internal/shared/naming"
)

var (
	ErrClosed     = errors.New("window: closed")
	ErrTagged     = errors.New("window: application message carries the bridge tag")
	ErrNotWindow  = errors.New("window: type does not embed window.Base")
	ErrNoSessions = errors.New("window: no page attached")
)

// State is the lifecycle state of a window.
type State string

const (
	StateOpen   State = "open"
	StateClosed State = "closed"
)

// Bindable is implemented by generated wiring.
type Bindable interface {
	BridgeBindings() []registry.Binding
}

type embedder interface {
	base() *Base
}

// Base is embedded by every window type.
type Base struct {
	window *Window
}

func (b *Base) base() *Base { return b }

// Window returns the host window, or nil before the type is opened.
func (b *Base) Window() *Window {
	return b.window
}

// SendMessage posts an application message to every page of the window.
func (b *Base) SendMessage(ctx context.Context, msg string) error {
	if b.window == nil {
		return ErrNoSessions
	}
	return b.window.SendMessage(ctx, msg)
}

// MessageHandler receives untagged messages from a page.
type MessageHandler func(ctx context.Context, session id.SessionID, msg string)

// Options describe one window.
type Options struct {
	// Name is the route name; defaults to the lower-camel type name.
	Name   string
	Title  string
	Source PageSource
	// Assets back the app resource scheme and FromAsset sources.
	Assets fs.FS
	// Scripts run in the page after the bridge runtime and stubs.
	Scripts []string
}

// Env is the runtime shared by every window of a host.
type Env struct {
	Namespace string
	Logger    *zap.Logger
	Metrics   *monitoring.Metrics
	Tracer    *tracing.Tracer
	Dispatch  dispatch.Options
	// Breaker enables one circuit breaker per binding when set.
	Breaker *resilience.Settings
	// Globals resolves global bindings registered by other windows.
	Globals GlobalTable
}

// GlobalTable resolves global bindings across windows.
type GlobalTable interface {
	Lookup(name string) (registry.Binding, bool)
	Bindings() []registry.Binding
}

// Window is an opened window type.
type Window struct {
	id        id.WindowID
	name      string
	title     string
	source    PageSource
	assets    fs.FS
	impl      any
	registry  *registry.Registry
	env       Env
	breakers  *resilience.Group
	logger    *zap.Logger
	createdAt time.Time

	mu       sync.RWMutex
	state    State
	scripts  []string
	sessions map[id.SessionID]*Session
	handlers []MessageHandler
}

// New opens impl as a window. impl must be a pointer to a struct embedding
// Base; when it implements Bindable its generated bindings are registered.
func New(impl any, opts Options, env Env) (*Window, error) {
	e, ok := impl.(embedder)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrNotWindow, impl)
	}
	t := reflect.TypeOf(impl)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if env.Namespace == "" {
		env.Namespace = script.DefaultNamespace
	}
	if env.Logger == nil {
		env.Logger = zap.NewNop()
	}

	reg := registry.New(t.Name())
	name := opts.Name
	if name == "" {
		name = reg.Namespace()
	}
	if err := naming.ValidateIdentifier(name, "window name"); err != nil {
		return nil, err
	}

	w := &Window{
		id:        id.NewWindowID(),
		name:      name,
		title:     opts.Title,
		source:    opts.Source,
		assets:    opts.Assets,
		impl:      impl,
		registry:  reg,
		env:       env,
		createdAt: time.Now(),
		state:     StateOpen,
		scripts:   append([]string(nil), opts.Scripts...),
		sessions:  make(map[id.SessionID]*Session),
	}
	if w.title == "" {
		w.title = t.Name()
	}
	w.logger = env.Logger.With(zap.String("window", name), zap.String("window_id", w.id.String()))

	if b, ok := impl.(Bindable); ok {
		if err := reg.RegisterAll(b.BridgeBindings()); err != nil {
			return nil, fmt.Errorf("window %s: %w", name, err)
		}
	}
	if env.Breaker != nil {
		settings := *env.Breaker
		metrics := env.Metrics
		if metrics != nil {
			next := settings.OnStateChange
			settings.OnStateChange = func(binding string, from, to resilience.State) {
				metrics.SetBreakerState(binding, int(to))
				if next != nil {
					next(binding, from, to)
				}
			}
		}
		w.breakers = resilience.NewGroup(settings)
	}

	e.base().window = w
	return w, nil
}

func (w *Window) ID() id.WindowID              { return w.id }
func (w *Window) Name() string                 { return w.name }
func (w *Window) Title() string                { return w.title }
func (w *Window) Source() PageSource           { return w.source }
func (w *Window) Assets() fs.FS                { return w.assets }
func (w *Window) Registry() *registry.Registry { return w.registry }
func (w *Window) Namespace() string            { return w.env.Namespace }
func (w *Window) CreatedAt() time.Time         { return w.createdAt }

// Impl returns the window type instance.
func (w *Window) Impl() any { return w.impl }

// State returns the lifecycle state.
func (w *Window) State() State {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state
}

// Bind registers fn imperatively. It fails once a page has attached.
func (w *Window) Bind(name string, fn any, opts ...registry.Option) error {
	return w.registry.RegisterFunc(name, fn, opts...)
}

// AddScript appends a script run on document creation of later page loads.
func (w *Window) AddScript(js string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.scripts = append(w.scripts, js)
}

// OnMessage subscribes to untagged page messages.
func (w *Window) OnMessage(fn MessageHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers = append(w.handlers, fn)
}

// Lookup resolves a name for dispatch: the window's own bindings first,
// then global bindings of other windows.
func (w *Window) Lookup(name string) (registry.Binding, bool) {
	if b, ok := w.registry.Lookup(name); ok {
		return b, true
	}
	if w.env.Globals != nil {
		return w.env.Globals.Lookup(name)
	}
	return registry.Binding{}, false
}

// Window returns the window type name, used in logs and metrics.
func (w *Window) Window() string {
	return w.registry.Window()
}

// Bindings lists every binding callable from this window's pages.
func (w *Window) Bindings() []registry.Binding {
	own := w.registry.Bindings()
	if w.env.Globals == nil {
		return own
	}
	seen := make(map[string]bool, len(own))
	for _, b := range own {
		seen[b.Name] = true
	}
	for _, b := range w.env.Globals.Bindings() {
		if !seen[b.Name] {
			own = append(own, b)
		}
	}
	return own
}

// Circuit returns the breaker state of a binding as called through this
// window, or "" when no call has gone through a breaker yet.
func (w *Window) Circuit(name string) string {
	if w.breakers == nil {
		return ""
	}
	b, ok := w.breakers.Lookup(name)
	if !ok {
		return ""
	}
	return b.State().String()
}

// InitScripts returns the scripts injected on document creation, in order:
// runtime, transport, stubs, then user scripts.
func (w *Window) InitScripts(transport string) []string {
	ns := w.env.Namespace
	scripts := []string{script.Bootstrap(ns)}
	if transport != "" {
		scripts = append(scripts, transport)
	}

	stubs := script.WindowInit(ns, w.registry.Namespace())
	for _, b := range w.Bindings() {
		stubs += script.Stub(ns, w.registry.Namespace(), script.SpecOf(b))
	}
	scripts = append(scripts, stubs)

	w.mu.RLock()
	scripts = append(scripts, w.scripts...)
	w.mu.RUnlock()
	return scripts
}

// Page renders the start page with the init scripts injected. Remote
// sources return ErrRemoteSource.
func (w *Window) Page(transport string) ([]byte, error) {
	markup, err := w.source.Load(w.assets)
	if err != nil {
		return nil, err
	}
	scripts := w.InitScripts(transport)
	tags := make([]Script, len(scripts))
	for i, s := range scripts {
		tags[i] = Script{Content: s}
	}
	return Inject(markup, tags...)
}

// SendMessage posts msg to every attached page. Tagged text is rejected so
// application traffic cannot be mistaken for bridge envelopes.
func (w *Window) SendMessage(ctx context.Context, msg string) error {
	if protocol.IsTagged(msg) {
		return ErrTagged
	}
	sessions := w.Sessions()
	if len(sessions) == 0 {
		return ErrNoSessions
	}
	var errs []error
	for _, s := range sessions {
		if err := s.Send(ctx, msg); err != nil {
			errs = append(errs, fmt.Errorf("session %s: %w", s.ID(), err))
		}
	}
	if w.env.Metrics != nil {
		w.env.Metrics.RecordAppMessage("out")
	}
	return errors.Join(errs...)
}

// Sessions returns the attached pages.
func (w *Window) Sessions() []*Session {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]*Session, 0, len(w.sessions))
	for _, s := range w.sessions {
		out = append(out, s)
	}
	return out
}

// Close detaches every page and refuses new ones.
func (w *Window) Close() {
	w.mu.Lock()
	if w.state == StateClosed {
		w.mu.Unlock()
		return
	}
	w.state = StateClosed
	sessions := make([]*Session, 0, len(w.sessions))
	for _, s := range w.sessions {
		sessions = append(sessions, s)
	}
	w.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
	w.logger.Info("Window closed")
}

func (w *Window) deliver(ctx context.Context, session id.SessionID, msg string) {
	w.mu.RLock()
	handlers := append([]MessageHandler(nil), w.handlers...)
	w.mu.RUnlock()

	if len(handlers) == 0 {
		w.logger.Debug("Unhandled page message", zap.String("session", session.String()))
		return
	}
	for _, h := range handlers {
		h(ctx, session, msg)
	}
}
