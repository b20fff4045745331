// Package dispatch is the host side of the bridge.
//
// A Dispatcher consumes raw messages from one page session. Tagged requests
// are decoded, resolved against the window's binding table and answered with
// a response carrying the same id; untagged messages go to the fallback
// handler.
//
// Behaviour per request:
//   - malformed envelope: dropped, no reply
//   - unknown name: ret null, or a unknown_binding fault in strict mode
//   - handler error or panic: handler_fault reply, the page call rejects
//   - breaker open for the binding: circuit_open reply
//
// Sync bindings run on the pump goroutine in arrival order. Async bindings
// run on their own goroutines, bounded by MaxInFlight, and reply whenever
// they finish; the page matches replies by id so ordering does not matter.
package dispatch
