package dispatch

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/webbridge/internal/bridge/protocol"
	"github.com/GriffinCanCode/webbridge/internal/bridge/registry"
	"github.com/GriffinCanCode/webbridge/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/webbridge/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/webbridge/internal/infrastructure/tracing"
)

// Call status labels used for metrics.
const (
	StatusOK          = "ok"
	StatusFault       = "fault"
	StatusUnknown     = "unknown"
	StatusCircuitOpen = "circuit_open"
)

// Sender delivers raw text to the page.
type Sender interface {
	Send(ctx context.Context, msg string) error
}

// Table resolves exposed names. *registry.Registry implements it.
type Table interface {
	Lookup(name string) (registry.Binding, bool)
	Window() string
}

// FallbackHandler receives untagged application messages.
type FallbackHandler func(ctx context.Context, msg string)

// Options tunes dispatch policy.
type Options struct {
	// Strict replies unknown_binding faults instead of a null result.
	Strict bool
	// MaxInFlight bounds concurrently running async bindings. Zero is unbounded.
	MaxInFlight int
	// CallTimeout bounds a single handler run. Zero disables it.
	CallTimeout time.Duration
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

func WithLogger(logger *zap.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

func WithMetrics(metrics *monitoring.Metrics) Option {
	return func(d *Dispatcher) { d.metrics = metrics }
}

func WithTracer(tracer *tracing.Tracer) Option {
	return func(d *Dispatcher) { d.tracer = tracer }
}

// WithBreakers guards each binding with its own circuit breaker.
func WithBreakers(group *resilience.Group) Option {
	return func(d *Dispatcher) { d.breakers = group }
}

func WithFallback(fn FallbackHandler) Option {
	return func(d *Dispatcher) { d.fallback = fn }
}

func WithOptions(opts Options) Option {
	return func(d *Dispatcher) { d.opts = opts }
}

// Dispatcher answers bridge requests for one page session.
type Dispatcher struct {
	table    Table
	sender   Sender
	logger   *zap.Logger
	metrics  *monitoring.Metrics
	tracer   *tracing.Tracer
	breakers *resilience.Group
	fallback FallbackHandler
	opts     Options

	sem chan struct{}
	wg  sync.WaitGroup
}

// New creates a dispatcher over table replying through sender.
func New(table Table, sender Sender, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		table:  table,
		sender: sender,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.opts.MaxInFlight > 0 {
		d.sem = make(chan struct{}, d.opts.MaxInFlight)
	}
	d.logger = d.logger.With(zap.String("window", table.Window()))
	return d
}

// HandleMessage processes one raw inbound message. It returns once a sync
// binding has replied, or as soon as an async binding has been started.
func (d *Dispatcher) HandleMessage(ctx context.Context, raw string) {
	if !protocol.IsTagged(raw) {
		if d.metrics != nil {
			d.metrics.RecordAppMessage("in")
		}
		if d.fallback != nil {
			d.fallback(ctx, raw)
		} else {
			d.logger.Debug("Ignoring untagged message", zap.Int("size", len(raw)))
		}
		return
	}

	req, err := protocol.DecodeRequest(raw)
	if err != nil {
		d.logger.Debug("Dropping malformed envelope", zap.Error(err))
		if d.metrics != nil {
			d.metrics.RecordDropped("malformed")
		}
		return
	}

	binding, ok := d.table.Lookup(req.Name)
	if !ok {
		d.unknown(ctx, req)
		return
	}

	if !binding.Async {
		d.run(ctx, req, binding)
		return
	}

	if d.sem != nil {
		select {
		case d.sem <- struct{}{}:
		case <-ctx.Done():
			d.logger.Debug("Session closed before call started", zap.String("name", req.Name))
			return
		}
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if d.sem != nil {
			defer func() { <-d.sem }()
		}
		d.run(ctx, req, binding)
	}()
}

// Wait blocks until every started async call has replied.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) unknown(ctx context.Context, req protocol.Request) {
	d.logger.Warn("Unknown binding", zap.String("name", req.Name), zap.String("id", req.ID))
	if d.metrics != nil {
		d.metrics.RecordBridgeCall(d.table.Window(), req.Name, StatusUnknown, 0)
	}

	resp := protocol.Response{ID: req.ID}
	if d.opts.Strict {
		resp = protocol.NewFaultResponse(req.ID, protocol.CodeUnknownBinding,
			fmt.Sprintf("no binding named %q", req.Name))
	}
	d.reply(ctx, resp)
}

func (d *Dispatcher) run(ctx context.Context, req protocol.Request, binding registry.Binding) {
	if d.metrics != nil {
		d.metrics.IncInFlight()
		defer d.metrics.DecInFlight()
	}
	timer := monitoring.NewTimer(d.metrics, d.table.Window(), binding.Name)

	var ret any
	tags := map[string]string{
		"bridge.id":     req.ID,
		"bridge.window": d.table.Window(),
		"bridge.async":  strconv.FormatBool(binding.Async),
	}
	err := tracing.Call(ctx, d.tracer, "bridge."+binding.Name, tags, func(ctx context.Context) error {
		var err error
		ret, err = d.invoke(withCall(ctx, CallInfo{ID: req.ID, Name: req.Name}), binding, req.Args)
		return err
	})

	resp, status := d.response(req.ID, ret, err)
	elapsed := timer.Stop(status)

	if status != StatusOK {
		d.logger.Error("Binding call failed",
			zap.String("name", binding.Name),
			zap.String("id", req.ID),
			zap.String("status", status),
			zap.Duration("duration", elapsed),
			zap.Error(err))
	} else {
		d.logger.Debug("Binding call completed",
			zap.String("name", binding.Name),
			zap.String("id", req.ID),
			zap.Duration("duration", elapsed))
	}
	d.reply(ctx, resp)
}

func (d *Dispatcher) invoke(ctx context.Context, binding registry.Binding, args protocol.Args) (any, error) {
	if d.opts.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.opts.CallTimeout)
		defer cancel()
	}

	if d.breakers == nil {
		return safeCall(ctx, binding, args)
	}
	return d.breakers.Get(binding.Name).Execute(ctx, func(ctx context.Context) (any, error) {
		return safeCall(ctx, binding, args)
	})
}

// safeCall converts a handler panic into an error.
func safeCall(ctx context.Context, binding registry.Binding, args protocol.Args) (ret any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return binding.Handler(ctx, args)
}

func (d *Dispatcher) response(id string, ret any, err error) (protocol.Response, string) {
	if err == nil {
		resp, encErr := protocol.NewResponse(id, ret)
		if encErr == nil {
			return resp, StatusOK
		}
		err = encErr
	}

	if errors.Is(err, resilience.ErrCircuitOpen) || errors.Is(err, resilience.ErrTooManyRequests) {
		return protocol.NewFaultResponse(id, protocol.CodeCircuitOpen, err.Error()), StatusCircuitOpen
	}

	var fault *protocol.Fault
	if errors.As(err, &fault) {
		return protocol.NewFaultResponse(id, fault.Code, fault.Message), StatusFault
	}
	return protocol.NewFaultResponse(id, protocol.CodeHandlerFault, err.Error()), StatusFault
}

func (d *Dispatcher) reply(ctx context.Context, resp protocol.Response) {
	text, err := protocol.EncodeResponse(resp)
	if err != nil {
		d.logger.Error("Failed to encode response", zap.String("id", resp.ID), zap.Error(err))
		return
	}
	if err := d.sender.Send(ctx, text); err != nil {
		d.logger.Warn("Failed to send response", zap.String("id", resp.ID), zap.Error(err))
		if d.metrics != nil {
			d.metrics.RecordDropped("send_failed")
		}
	}
}
