package window

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/webbridge/internal/bridge/registry"
)

var (
	ErrExists   = errors.New("window: name already open")
	ErrNotFound = errors.New("window: not found")
)

// Stats contains manager statistics
type Stats struct {
	Windows  int `json:"windows"`
	Sessions int `json:"sessions"`
	Bindings int `json:"bindings"`
	Globals  int `json:"globals"`
}

// Manager orchestrates window lifecycle and resolves global bindings
// across windows.
type Manager struct {
	mu      sync.RWMutex
	windows map[string]*Window // Protected by mu
	order   []string           // Protected by mu
	env     Env
	logger  *zap.Logger
}

// NewManager creates a window manager. Windows it opens share env and see
// each other's global bindings.
func NewManager(env Env) *Manager {
	if env.Logger == nil {
		env.Logger = zap.NewNop()
	}
	m := &Manager{
		windows: make(map[string]*Window),
		logger:  env.Logger,
	}
	env.Globals = m
	m.env = env
	return m
}

// Open creates a window for impl and registers it by name.
func (m *Manager) Open(impl any, opts Options) (*Window, error) {
	w, err := New(impl, opts, m.env)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if _, exists := m.windows[w.Name()]; exists {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrExists, w.Name())
	}
	m.windows[w.Name()] = w
	m.order = append(m.order, w.Name())
	count := len(m.windows)
	m.mu.Unlock()

	for _, b := range w.Registry().Bindings() {
		if b.Scope != registry.ScopeGlobal {
			continue
		}
		if prev, ok := m.ownerOf(b.Name, w); ok {
			m.logger.Warn("Global binding overridden",
				zap.String("binding", b.Name),
				zap.String("previous", prev),
				zap.String("window", w.Name()))
		}
	}

	if m.env.Metrics != nil {
		m.env.Metrics.SetWindowsActive(count)
	}
	m.logger.Info("Window opened",
		zap.String("window", w.Name()),
		zap.String("id", w.ID().String()),
		zap.Int("bindings", w.Registry().Len()))
	return w, nil
}

// Get retrieves a window by name
func (m *Manager) Get(name string) (*Window, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.windows[name]
	return w, ok
}

// List returns all windows in open order
func (m *Manager) List() []*Window {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Window, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, m.windows[name])
	}
	return out
}

// Close closes a window; its global bindings go with it.
func (m *Manager) Close(name string) bool {
	m.mu.Lock()
	w, ok := m.windows[name]
	if !ok {
		m.mu.Unlock()
		return false
	}
	delete(m.windows, name)
	for i, n := range m.order {
		if n == name {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	count := len(m.windows)
	m.mu.Unlock()

	w.Close()
	if m.env.Metrics != nil {
		m.env.Metrics.SetWindowsActive(count)
	}
	return true
}

// CloseAll closes every window
func (m *Manager) CloseAll() {
	for _, w := range m.List() {
		m.Close(w.Name())
	}
}

// Lookup resolves a global binding. When several windows expose the same
// global name the most recently opened one wins.
func (m *Manager) Lookup(name string) (registry.Binding, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := len(m.order) - 1; i >= 0; i-- {
		b, ok := m.windows[m.order[i]].Registry().Lookup(name)
		if ok && b.Scope == registry.ScopeGlobal {
			return b, true
		}
	}
	return registry.Binding{}, false
}

// Bindings lists the effective global bindings.
func (m *Manager) Bindings() []registry.Binding {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []registry.Binding
	index := make(map[string]int)
	for _, name := range m.order {
		for _, b := range m.windows[name].Registry().Bindings() {
			if b.Scope != registry.ScopeGlobal {
				continue
			}
			if i, ok := index[b.Name]; ok {
				out[i] = b
				continue
			}
			index[b.Name] = len(out)
			out = append(out, b)
		}
	}
	return out
}

// Stats returns manager statistics
func (m *Manager) Stats() Stats {
	windows := m.List()
	stats := Stats{Windows: len(windows), Globals: len(m.Bindings())}
	for _, w := range windows {
		stats.Sessions += len(w.Sessions())
		stats.Bindings += w.Registry().Len()
	}
	return stats
}

// Names returns window names sorted alphabetically.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.windows))
	for name := range m.windows {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m *Manager) ownerOf(binding string, except *Window) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, name := range m.order {
		w := m.windows[name]
		if w == except {
			continue
		}
		if b, ok := w.Registry().Lookup(binding); ok && b.Scope == registry.ScopeGlobal {
			return name, true
		}
	}
	return "", false
}
