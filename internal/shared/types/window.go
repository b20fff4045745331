package types

import "time"

// WindowInfo summarizes an opened window.
type WindowInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Title     string    `json:"title"`
	State     string    `json:"state"`
	Source    string    `json:"source"`
	URL       string    `json:"url"`
	Sessions  int       `json:"sessions"`
	Bindings  int       `json:"bindings"`
	CreatedAt time.Time `json:"created_at"`
}

// BindingInfo describes one binding callable from a page of a window.
type BindingInfo struct {
	Name    string   `json:"name"`
	Params  []string `json:"params"`
	Scope   string   `json:"scope"`
	Async   bool     `json:"async,omitempty"`
	// Circuit is the breaker state once the binding has been called.
	Circuit string `json:"circuit,omitempty"`
}

// Manifest is the call surface of one window.
type Manifest struct {
	Window    string        `json:"window"`
	Namespace string        `json:"namespace"`
	Object    string        `json:"object"`
	Socket    string        `json:"socket"`
	Bindings  []BindingInfo `json:"bindings"`
}

// Health reports host liveness.
type Health struct {
	Status   string `json:"status"`
	Windows  int    `json:"windows"`
	Sessions int    `json:"sessions"`
	Bindings int    `json:"bindings"`
	Globals  int    `json:"globals"`
}
