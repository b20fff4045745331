package page

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/webbridge/internal/bridge/protocol"
	"github.com/GriffinCanCode/webbridge/internal/transport"
)

// maxIDAttempts bounds regeneration when a generated id is already pending.
const maxIDAttempts = 8

var ErrIDExhausted = errors.New("page: could not allocate a unique call id")

// Sender delivers raw text to the host.
type Sender interface {
	Send(ctx context.Context, msg string) error
}

// Listener receives untagged messages.
type Listener func(msg string)

// GenerateID returns a random UUIDv4 correlation token.
func GenerateID() string {
	return uuid.NewString()
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Runtime) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithIDGenerator replaces GenerateID.
func WithIDGenerator(fn func() string) Option {
	return func(r *Runtime) {
		if fn != nil {
			r.newID = fn
		}
	}
}

// Runtime is the page-side end of the bridge.
type Runtime struct {
	sender Sender
	logger *zap.Logger
	newID  func() string

	mu        sync.Mutex
	pending   map[string]*Call
	listeners map[uint64]Listener
	nextKey   uint64
}

// New creates a runtime sending through sender.
func New(sender Sender, opts ...Option) *Runtime {
	r := &Runtime{
		sender:    sender,
		logger:    zap.NewNop(),
		newID:     GenerateID,
		pending:   make(map[string]*Call),
		listeners: make(map[uint64]Listener),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Invoke sends a request for name and returns immediately. The returned call
// completes when the matching response arrives.
func (r *Runtime) Invoke(ctx context.Context, name string, args ...any) (*Call, error) {
	call, err := r.allocate(name)
	if err != nil {
		return nil, err
	}

	req, err := protocol.NewRequest(call.ID, name, args...)
	if err != nil {
		r.release(call.ID)
		return nil, err
	}
	text, err := protocol.EncodeRequest(req)
	if err != nil {
		r.release(call.ID)
		return nil, err
	}
	if err := r.sender.Send(ctx, text); err != nil {
		r.release(call.ID)
		return nil, fmt.Errorf("failed to send %s: %w", name, err)
	}

	r.logger.Debug("Invoked binding", zap.String("name", name), zap.String("id", call.ID))
	return call, nil
}

func (r *Runtime) allocate(name string) (*Call, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := 0; i < maxIDAttempts; i++ {
		id := r.newID()
		if _, taken := r.pending[id]; taken || id == "" {
			continue
		}
		call := newCall(id, name)
		r.pending[id] = call
		return call, nil
	}
	return nil, ErrIDExhausted
}

func (r *Runtime) release(id string) {
	r.mu.Lock()
	delete(r.pending, id)
	r.mu.Unlock()
}

// OnMessage routes one inbound message. Responses complete their pending
// call; responses for unknown ids and malformed envelopes are discarded.
// Untagged messages go to the listeners.
func (r *Runtime) OnMessage(raw string) {
	if !protocol.IsTagged(raw) {
		r.notify(raw)
		return
	}

	resp, err := protocol.DecodeResponse(raw)
	if err != nil {
		r.logger.Debug("Discarding malformed response", zap.Error(err))
		return
	}

	r.mu.Lock()
	call, ok := r.pending[resp.ID]
	if ok {
		delete(r.pending, resp.ID)
	}
	r.mu.Unlock()

	if !ok {
		r.logger.Debug("Discarding response for unknown id", zap.String("id", resp.ID))
		return
	}
	call.complete(resp)
}

func (r *Runtime) notify(msg string) {
	r.mu.Lock()
	listeners := make([]Listener, 0, len(r.listeners))
	for _, l := range r.listeners {
		listeners = append(listeners, l)
	}
	r.mu.Unlock()

	for _, l := range listeners {
		l(msg)
	}
}

// AddListener subscribes to untagged messages. The returned func removes it.
func (r *Runtime) AddListener(fn Listener) (remove func()) {
	r.mu.Lock()
	key := r.nextKey
	r.nextKey++
	r.listeners[key] = fn
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.listeners, key)
			r.mu.Unlock()
		})
	}
}

// SendMessage sends an untagged application message to the host.
func (r *Runtime) SendMessage(ctx context.Context, msg string) error {
	if protocol.IsTagged(msg) {
		return fmt.Errorf("page: application message must not start with %q", protocol.Tag)
	}
	return r.sender.Send(ctx, msg)
}

// Pending returns the number of calls awaiting a reply.
func (r *Runtime) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// Serve pumps conn into OnMessage until the connection closes.
func (r *Runtime) Serve(ctx context.Context, conn transport.Conn) error {
	return transport.Serve(ctx, conn, func(_ context.Context, msg string) {
		r.OnMessage(msg)
	})
}
