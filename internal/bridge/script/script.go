// Package script renders the page-side bridge runtime and binding stubs as
// script text for injection into a page before any page script runs.
//
// The rendered runtime installs window.<namespace> exactly once:
//
//	window.bridge.invoke(name, args)      -> Promise
//	window.bridge.sendMessage(text)
//	window.bridge.addListener(fn) / removeListener(fn)
//	window.bridge.receive(raw)            // called by the transport shim
//	window.bridge.setTransport(fn)        // queued sends flush on attach
//	window.bridge.bindings.<name>         // global bindings
//	window.bridge.bindings.<window>.<name>
package script

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/GriffinCanCode/webbridge/internal/bridge/protocol"
	"github.com/GriffinCanCode/webbridge/internal/bridge/registry"
)

// DefaultNamespace is the page global the runtime installs.
const DefaultNamespace = "bridge"

var (
	//go:embed bootstrap.js
	bootstrapJS string

	//go:embed websocket.js
	websocketJS string
)

// StubSpec describes one forwarder function.
type StubSpec struct {
	Name   string
	Params []string
	Global bool
}

// SpecOf converts a registered binding into a stub description.
func SpecOf(b registry.Binding) StubSpec {
	return StubSpec{Name: b.Name, Params: b.Params, Global: b.Scope == registry.ScopeGlobal}
}

// Bootstrap renders the runtime installer for namespace.
func Bootstrap(namespace string) string {
	return strings.NewReplacer(
		"{{NAMESPACE}}", namespace,
		"{{TAG}}", protocol.Tag,
	).Replace(bootstrapJS)
}

// WindowInit creates the child object holding a window's scoped stubs.
func WindowInit(namespace, window string) string {
	return fmt.Sprintf("window.%s.bindings.%s = window.%s.bindings.%s || {};\n",
		namespace, window, namespace, window)
}

// Stub renders one forwarder. Window-scoped stubs live under the window's
// child object; global stubs at the bindings root.
func Stub(namespace, window string, spec StubSpec) string {
	target := fmt.Sprintf("window.%s.bindings.%s", namespace, spec.Name)
	if !spec.Global {
		target = fmt.Sprintf("window.%s.bindings.%s.%s", namespace, window, spec.Name)
	}
	params := strings.Join(spec.Params, ", ")
	return fmt.Sprintf("%s = function (%s) { return window.%s.invoke('%s', [%s]); };\n",
		target, params, namespace, spec.Name, params)
}

// Stubs renders the window child and a forwarder for every binding in reg.
func Stubs(namespace string, reg *registry.Registry) string {
	var sb strings.Builder
	sb.WriteString(WindowInit(namespace, reg.Namespace()))
	for _, b := range reg.Bindings() {
		sb.WriteString(Stub(namespace, reg.Namespace(), SpecOf(b)))
	}
	return sb.String()
}

// WebSocketTransport renders the browser shim that connects the runtime to
// the host over a WebSocket at path on the page's own origin, reconnecting
// with backoff.
func WebSocketTransport(namespace, path string) string {
	quoted, _ := protocol.Marshal(path)
	return strings.NewReplacer(
		"{{NAMESPACE}}", namespace,
		"{{PATH}}", string(quoted),
	).Replace(websocketJS)
}

// NativeTransport renders a shim routing outbound text through a host
// function already present in the page, for example an embedded engine's
// postMessage.
func NativeTransport(namespace, hostFunc string) string {
	return fmt.Sprintf("window.%s.setTransport(function (text) { %s(text); });\n", namespace, hostFunc)
}

// Bundle joins scripts in order.
func Bundle(parts ...string) string {
	return strings.Join(parts, "\n")
}
