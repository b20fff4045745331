package paths

import (
	"net/url"
	"path"
	"strings"
)

// Route prefixes
const (
	Windows = "/windows"
	Health  = "/health"
	Metrics = "/metrics"
	// LogLevel reads and changes the log level, development only
	LogLevel = "/debug/log-level"
)

// Per-window route suffixes
const (
	ManifestFile = "manifest"
	BridgeScript = "bridge.js"
	Socket       = "ws"
	AppRoot      = "app"
)

// Window returns the routes of one window
type Window struct {
	Name string
}

// Page returns the window's page path
func (w Window) Page() string {
	return w.root() + "/"
}

// Manifest returns the binding manifest path
func (w Window) Manifest() string {
	return w.root() + "/" + ManifestFile
}

// Script returns the bridge.js path
func (w Window) Script() string {
	return w.root() + "/" + BridgeScript
}

// Socket returns the bridge WebSocket path
func (w Window) Socket() string {
	return w.root() + "/" + Socket
}

// Asset returns the path of an asset under the window's resource root
func (w Window) Asset(name string) string {
	return w.root() + "/" + AppRoot + "/" + strings.TrimPrefix(path.Clean("/"+name), "/")
}

func (w Window) root() string {
	return Windows + "/" + url.PathEscape(w.Name)
}

// For returns the routes of the named window
func For(name string) Window {
	return Window{Name: name}
}

// Route patterns for the gin router
const (
	WindowPattern = Windows + "/:name"
	SocketPattern = WindowPattern + "/" + Socket
	AssetPattern  = "/" + AppRoot + "/*path"
)
