// Package transport provides the single text channel that carries both bridge
// envelopes and generic application messages between a page and its host.
//
// The bridge assumes nothing about the channel beyond delivering text content
// intact: ordering and timing are not relied upon, since every reply is routed
// by correlation id.
//
// Implementations:
//   - Pipe: in-memory pair for headless pages and tests
//   - WSConn: gorilla/websocket text frames for browser pages
package transport
