package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/GriffinCanCode/webbridge/internal/bridge/protocol"
	"github.com/GriffinCanCode/webbridge/internal/shared/naming"
)

var (
	ErrDuplicate = errors.New("registry: binding already registered")
	ErrSealed    = errors.New("registry: table is sealed")
	ErrInvalid   = errors.New("registry: invalid binding")
)

// Scope decides where a binding's stub is placed in the page namespace.
type Scope int

const (
	ScopeWindow Scope = iota
	ScopeGlobal
)

func (s Scope) String() string {
	if s == ScopeGlobal {
		return "global"
	}
	return "window"
}

// MarshalText renders the scope for manifests.
func (s Scope) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses "global" or "window".
func (s *Scope) UnmarshalText(text []byte) error {
	switch string(text) {
	case "global":
		*s = ScopeGlobal
	case "window", "":
		*s = ScopeWindow
	default:
		return fmt.Errorf("%w: unknown scope %q", ErrInvalid, text)
	}
	return nil
}

// Handler runs a binding. Arguments are decoded fail-soft by the handler; the
// returned value is marshalled into the response.
type Handler func(ctx context.Context, args protocol.Args) (any, error)

// Binding describes one exposed native method.
type Binding struct {
	Name    string
	Params  []string
	Scope   Scope
	Async   bool
	Handler Handler
}

// Registry is the binding table of one window.
type Registry struct {
	mu        sync.RWMutex
	window    string
	namespace string
	bindings  map[string]*Binding
	order     []string
	sealed    bool
}

// New creates an empty table for the given window type name.
func New(windowType string) *Registry {
	return &Registry{
		window:    windowType,
		namespace: naming.LowerCamel(windowType),
		bindings:  make(map[string]*Binding),
	}
}

// Window returns the window type name the table belongs to.
func (r *Registry) Window() string {
	return r.window
}

// Namespace returns the child object name used for window-scoped stubs.
func (r *Registry) Namespace() string {
	return r.namespace
}

// Register adds a binding.
func (r *Registry) Register(b Binding) error {
	if err := naming.ValidateIdentifier(b.Name, "binding name"); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if b.Handler == nil {
		return fmt.Errorf("%w: %s has no handler", ErrInvalid, b.Name)
	}
	for _, p := range b.Params {
		if err := naming.ValidateParameter(p); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalid, b.Name, err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return ErrSealed
	}
	if _, exists := r.bindings[b.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicate, b.Name)
	}

	entry := b
	entry.Params = append([]string(nil), b.Params...)
	r.bindings[b.Name] = &entry
	r.order = append(r.order, b.Name)
	return nil
}

// RegisterAll adds every binding, stopping at the first error.
func (r *Registry) RegisterAll(bindings []Binding) error {
	for _, b := range bindings {
		if err := r.Register(b); err != nil {
			return err
		}
	}
	return nil
}

// Lookup finds a binding by exposed name.
func (r *Registry) Lookup(name string) (Binding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.bindings[name]
	if !ok {
		return Binding{}, false
	}
	return *b, true
}

// Bindings returns all bindings in registration order.
func (r *Registry) Bindings() []Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Binding, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, *r.bindings[name])
	}
	return out
}

// Len returns the number of bindings.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Seal rejects any further registration.
func (r *Registry) Seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

// Sealed reports whether the table accepts registrations.
func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}
