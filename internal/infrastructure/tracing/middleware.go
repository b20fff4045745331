package tracing

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Propagation headers
const (
	HeaderTraceID = "X-Trace-ID"
	HeaderSpanID  = "X-Span-ID"
)

// Extract returns ctx carrying the trace position sent in h
func Extract(ctx context.Context, h http.Header) context.Context {
	return ContextWith(ctx, TraceID(h.Get(HeaderTraceID)), SpanID(h.Get(HeaderSpanID)))
}

// Inject writes the trace position of ctx into h
func Inject(ctx context.Context, h http.Header) {
	if traceID := TraceIDFrom(ctx); traceID != "" {
		h.Set(HeaderTraceID, string(traceID))
	}
	if spanID := SpanIDFrom(ctx); spanID != "" {
		h.Set(HeaderSpanID, string(spanID))
	}
}

// HTTPMiddleware traces each request. A WebSocket upgrade's span covers the
// whole connection, and bridge calls made over it are its children.
func HTTPMiddleware(tracer *Tracer) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		span, ctx := tracer.Start(Extract(c.Request.Context(), c.Request.Header), c.Request.Method+" "+route)
		span.SetTag("http.method", c.Request.Method)
		span.SetTag("http.route", route)
		if name := c.Param("name"); name != "" {
			span.SetTag("bridge.window", name)
		}

		c.Request = c.Request.WithContext(ctx)
		Inject(ctx, c.Writer.Header())

		c.Next()

		status := c.Writer.Status()
		span.SetTag("http.status", strconv.Itoa(status))
		var err error
		if len(c.Errors) > 0 {
			err = c.Errors.Last()
		} else if status >= http.StatusInternalServerError {
			span.Status = StatusError
		}
		span.End(err)
		tracer.Submit(span)
	}
}

// Call runs fn inside a child span named name and submits it when fn returns.
// A nil tracer runs fn untraced.
func Call(ctx context.Context, tracer *Tracer, name string, tags map[string]string, fn func(context.Context) error) error {
	if tracer == nil {
		return fn(ctx)
	}

	span, ctx := tracer.Start(ctx, name)
	for k, v := range tags {
		span.SetTag(k, v)
	}

	err := fn(ctx)
	span.End(err)
	tracer.Submit(span)
	return err
}
