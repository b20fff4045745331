package resilience

import "sync"

// Group holds one breaker per name, created on first use with shared
// settings. A window keeps one group for its bindings.
type Group struct {
	settings Settings

	mu       sync.RWMutex
	breakers map[string]*Breaker
}

func NewGroup(settings Settings) *Group {
	return &Group{settings: settings, breakers: make(map[string]*Breaker)}
}

// Get returns the breaker for name, creating it if needed
func (g *Group) Get(name string) *Breaker {
	if b, ok := g.Lookup(name); ok {
		return b
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if b, ok := g.breakers[name]; ok {
		return b
	}
	b := New(name, g.settings)
	g.breakers[name] = b
	return b
}

// Lookup returns the breaker for name if one was created
func (g *Group) Lookup(name string) (*Breaker, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	b, ok := g.breakers[name]
	return b, ok
}
