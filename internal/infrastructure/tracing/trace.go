package tracing

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/webbridge/internal/shared/id"
)

// TraceID identifies one request flow, e.g. a page session
type TraceID string

// SpanID identifies one operation within a trace
type SpanID string

// Span statuses
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Span is one timed operation
type Span struct {
	TraceID  TraceID
	SpanID   SpanID
	ParentID SpanID
	Name     string
	Service  string
	Start    time.Time
	Duration time.Duration
	Tags     map[string]string
	Status   string
	Err      error
}

// SetTag adds a tag to the span
func (s *Span) SetTag(key, value string) {
	s.Tags[key] = value
}

// End stops the clock and records err, if any.
func (s *Span) End(err error) {
	s.Duration = time.Since(s.Start)
	s.Err = err
	if err != nil {
		s.Status = StatusError
	} else if s.Status == "" {
		s.Status = StatusOK
	}
}

// Exporter receives finished spans on the collector goroutine
type Exporter interface {
	Export(span *Span)
}

// ExporterFunc adapts a function to Exporter
type ExporterFunc func(*Span)

func (f ExporterFunc) Export(span *Span) { f(span) }

// Option configures a Tracer
type Option func(*Tracer)

// WithExporter adds an exporter next to the log exporter
func WithExporter(e Exporter) Option {
	return func(t *Tracer) { t.exporters = append(t.exporters, e) }
}

// WithBuffer sets how many finished spans may wait for export
func WithBuffer(n int) Option {
	return func(t *Tracer) {
		if n > 0 {
			t.buffer = n
		}
	}
}

// Tracer creates spans and exports them asynchronously
type Tracer struct {
	service   string
	logger    *zap.Logger
	exporters []Exporter
	buffer    int

	spans chan *Span
	done  chan struct{}
	wg    sync.WaitGroup
	once  sync.Once
}

// New creates a tracer whose spans are logged through logger
func New(service string, logger *zap.Logger, opts ...Option) *Tracer {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Tracer{service: service, logger: logger, buffer: 1024}
	t.exporters = []Exporter{logExporter{logger}}
	for _, opt := range opts {
		opt(t)
	}
	t.spans = make(chan *Span, t.buffer)
	t.done = make(chan struct{})

	t.wg.Add(1)
	go t.collect()
	return t
}

// Start opens a span as a child of the span in ctx, or a new trace.
func (t *Tracer) Start(ctx context.Context, name string) (*Span, context.Context) {
	traceID := TraceIDFrom(ctx)
	if traceID == "" {
		traceID = TraceID(id.NewTraceID())
	}
	span := &Span{
		TraceID:  traceID,
		SpanID:   SpanID(id.NewSpanID()),
		ParentID: SpanIDFrom(ctx),
		Name:     name,
		Service:  t.service,
		Start:    time.Now(),
		Tags:     make(map[string]string),
	}
	return span, ContextWith(ctx, span.TraceID, span.SpanID)
}

// Submit queues a finished span. Spans are dropped once the buffer is full
// or the tracer is closed.
func (t *Tracer) Submit(span *Span) {
	select {
	case <-t.done:
		return
	default:
	}
	select {
	case t.spans <- span:
	default:
		t.logger.Warn("Span buffer full, dropping span",
			zap.String("trace_id", string(span.TraceID)),
			zap.String("operation", span.Name))
	}
}

// Close stops accepting spans and exports those already queued.
func (t *Tracer) Close() {
	t.once.Do(func() {
		close(t.done)
		t.wg.Wait()
	})
}

func (t *Tracer) collect() {
	defer t.wg.Done()
	for {
		select {
		case span := <-t.spans:
			t.export(span)
		case <-t.done:
			for {
				select {
				case span := <-t.spans:
					t.export(span)
				default:
					return
				}
			}
		}
	}
}

func (t *Tracer) export(span *Span) {
	for _, e := range t.exporters {
		e.Export(span)
	}
}

type logExporter struct {
	logger *zap.Logger
}

func (l logExporter) Export(span *Span) {
	fields := make([]zap.Field, 0, 6+len(span.Tags))
	fields = append(fields,
		zap.String("trace_id", string(span.TraceID)),
		zap.String("span_id", string(span.SpanID)),
		zap.String("operation", span.Name),
		zap.String("service", span.Service),
		zap.Duration("duration", span.Duration))
	if span.ParentID != "" {
		fields = append(fields, zap.String("parent_id", string(span.ParentID)))
	}
	for k, v := range span.Tags {
		fields = append(fields, zap.String(k, v))
	}

	if span.Err != nil {
		l.logger.Error("Span failed", append(fields, zap.Error(span.Err))...)
		return
	}
	l.logger.Debug("Span completed", fields...)
}

// Recorder keeps the most recent finished spans in memory.
type Recorder struct {
	mu    sync.Mutex
	limit int
	spans []*Span
}

// NewRecorder keeps up to limit spans
func NewRecorder(limit int) *Recorder {
	return &Recorder{limit: limit}
}

func (r *Recorder) Export(span *Span) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.spans = append(r.spans, span)
	if r.limit > 0 && len(r.spans) > r.limit {
		r.spans = r.spans[len(r.spans)-r.limit:]
	}
}

// Spans returns the recorded spans, oldest first
func (r *Recorder) Spans() []*Span {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Span(nil), r.spans...)
}

type contextKey int

const (
	traceIDKey contextKey = iota
	spanIDKey
)

// ContextWith returns ctx carrying the given trace position
func ContextWith(ctx context.Context, traceID TraceID, spanID SpanID) context.Context {
	if traceID != "" {
		ctx = context.WithValue(ctx, traceIDKey, traceID)
	}
	if spanID != "" {
		ctx = context.WithValue(ctx, spanIDKey, spanID)
	}
	return ctx
}

// TraceIDFrom returns the trace id in ctx, if any
func TraceIDFrom(ctx context.Context) TraceID {
	v, _ := ctx.Value(traceIDKey).(TraceID)
	return v
}

// SpanIDFrom returns the current span id in ctx, if any
func SpanIDFrom(ctx context.Context) SpanID {
	v, _ := ctx.Value(spanIDKey).(SpanID)
	return v
}
