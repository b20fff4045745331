/*
Package jspage hosts a headless page in the goja JavaScript engine.

# Overview

A Page is a single goja VM standing in for a browser document. It runs the
same bridge runtime and stub scripts a real page receives, so bindings can be
exercised end to end without a browser. Outbound text from the page goes
through a native host function; inbound text is delivered to a page function
such as window.bridge.receive.

The VM is not goroutine safe: every entry into it is serialized by the page
mutex. Promises returned by page code are awaited by polling their state.

# Globals

  - window: alias of the global object
  - console: log/info/warn/error captured as LogEntry values
  - crypto.randomUUID: backed by google/uuid
  - <HostFunc>(text): queues text for the attached connection
  - setTimeout/setInterval: no-ops

# Usage Example

	p, _ := jspage.New(jspage.DefaultConfig(), logger)
	_ = p.Inject(script.Bootstrap("bridge"), script.NativeTransport("bridge", p.HostFunc()))
	go p.Run(ctx, conn)

	v, _ := p.Eval(ctx, "window.bridge.invoke('add', [2, 3])")
	ret, err := p.Await(ctx, v)
*/
package jspage
