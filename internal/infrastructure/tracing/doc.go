/*
Package tracing provides lightweight tracing for HTTP requests and bridge calls.

# Overview

This package implements minimal span tracing with ULID trace and span ids.
Completed spans are exported through the structured logger. It follows
OpenTelemetry concepts without the dependency.

# Features

- Header propagation (Extract, Inject)
- Parent-child spans through context
- Gin middleware; a WebSocket upgrade span is the parent of its calls
- Call helper wrapping a single dispatched binding call
- Buffered export to the logger plus optional exporters (Recorder)

# Usage

	tracer := tracing.New("webbridge", logger, tracing.WithExporter(recorder))
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	err := tracing.Call(ctx, tracer, "bridge.add", map[string]string{
		"bridge.id": req.ID,
	}, func(ctx context.Context) error {
		return run(ctx)
	})

# Trace Format

Traces use standard HTTP headers for propagation:
- X-Trace-ID: Unique identifier for entire request flow
- X-Span-ID: Identifier for current operation

A page session inherits the trace id of the WebSocket upgrade request, so every
binding call made over that session shares it.
*/
package tracing
