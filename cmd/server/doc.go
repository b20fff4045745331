// Package main runs the bridge host with the demo windows.
//
// Each window is served as a page with the bridge runtime injected; the page
// calls native bindings over a WebSocket.
//
// Routes:
//
//	GET /health                     liveness and window statistics
//	GET /windows                    opened windows
//	GET /windows/:name/             start page with the bridge injected
//	GET /windows/:name/manifest     bindings callable from the page
//	GET /windows/:name/bridge.js    runtime and stubs for foreign pages
//	GET /windows/:name/app/*path    window assets
//	GET /windows/:name/ws           bridge socket
//	GET /metrics                    Prometheus metrics
//	GET /metrics/json               metrics snapshot
//	PUT /debug/log-level            change the log level (-dev only)
//
// Configuration:
//   - Environment variables (12-factor), see internal/infrastructure/config
//   - CLI flags (override env vars)
//
// Usage:
//
//	./server -port 8000
//	./server -dev -strict
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
