// Package types provides the JSON shapes shared by the host HTTP surface and
// Go page clients.
//
// Core Types:
//   - WindowInfo: summary of an opened window
//   - Manifest: binding surface of one window, used by clients to build stubs
//   - BindingInfo: one exposed binding
//   - Health: liveness report
//
// Example Usage:
//
//	var m types.Manifest
//	_, err := client.R().SetResult(&m).Get("/windows/calcWindow/manifest")
package types
