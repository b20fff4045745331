// Bindgen generates the static side of the bridge.
//
// It scans Go sources for //bridge:bind methods on types embedding window.Base
// (or reads a metadata manifest) and writes:
//
//   - zz_bridge_bindings.go in every package declaring windows
//   - index.d.ts, index.js and package.json under -ts
//
// Usage:
//
// 	bindgen -dir ./internal/windows -ts ./typescript
// 	bindgen -manifest windows.yaml -ts ./typescript -namespace native
// 	bindgen -dir . -include 'internal/**/*.go' -exclude 'internal/legacy/**' -version 1.2.0
//
// Settings may also come from bindgen.yaml or bindgen.toml in the working
// directory (or -config); flags win over the file:
//
// 	dir: ./internal/windows
// 	ts: ./typescript
// 	namespace: bridge
// 	version: 1.0.0
// 	manifest_out: ./typescript/windows.yaml
package main
