// Package client connects Go code to a bridge host as a headless page.
//
// Built on go-resty/resty for the HTTP surface:
//   - Manifest and window list fetched with retries
//   - Circuit breaker around host requests
//   - Context-based cancellation
//
// A Page runs the Go page runtime over a gorilla WebSocket; a ScriptPage
// runs the host's own bridge runtime script inside goja, so the exact code
// a browser receives is exercised.
//
// Usage:
//
//	c, _ := client.New(client.DefaultConfig("http://localhost:8000"), logger)
//	p, _ := c.Connect(ctx, "calcWindow")
//	defer p.Close()
//	ret, err := p.Call(ctx, "add", 2, 3)
package client
