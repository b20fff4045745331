// Package page is the Go rendition of the page-side bridge runtime.
//
// It keeps the table of pending calls, sends tagged requests over the shared
// channel and completes each call when the response carrying its id arrives.
// Untagged traffic is fanned out to the generic message listeners.
//
// The script package holds the same runtime as page script; this package is
// used by headless Go pages (see bridge/client) and by tests that drive a host
// without a browser.
//
// Example Usage:
//
//	rt := page.New(conn)
//	go rt.Serve(ctx, conn)
//	call, _ := rt.Invoke(ctx, "add", 2, 3)
//	var sum float64
//	err := call.Decode(ctx, &sum)
//
// A call whose reply never arrives stays in the pending table for the life of
// the runtime. There is no cancellation of in-flight calls: cancelling the
// context passed to Await stops waiting but keeps the entry.
package page
