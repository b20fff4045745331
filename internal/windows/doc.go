// Package windows contains the demo windows served by cmd/server.
//
// Binding tables live in zz_bridge_bindings.go, produced by cmd/bindgen:
//
//	go run ./cmd/bindgen -dir ./internal/windows -ts ./typescript
package windows

//go:generate go run ../../cmd/bindgen -dir . -ts ../../typescript
