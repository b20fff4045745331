package window

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/webbridge/internal/bridge/dispatch"
	"github.com/GriffinCanCode/webbridge/internal/shared/id"
	"github.com/GriffinCanCode/webbridge/internal/transport"
)

type sessionKey struct{}

// SessionFromContext returns the page session a binding is running for.
func SessionFromContext(ctx context.Context) (id.SessionID, bool) {
	sid, ok := ctx.Value(sessionKey{}).(id.SessionID)
	return sid, ok
}

// Session is one page attached to a window.
type Session struct {
	id        id.SessionID
	conn      transport.Conn
	createdAt time.Time
}

func (s *Session) ID() id.SessionID     { return s.id }
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// Send posts raw text to the page.
func (s *Session) Send(ctx context.Context, msg string) error {
	return s.conn.Send(ctx, msg)
}

// Close disconnects the page.
func (s *Session) Close() {
	_ = s.conn.Close()
}

// Attach serves one page over conn until it disconnects, the window closes
// or ctx ends. The binding registry is sealed on the first attach.
func (w *Window) Attach(ctx context.Context, conn transport.Conn) error {
	w.mu.Lock()
	if w.state == StateClosed {
		w.mu.Unlock()
		_ = conn.Close()
		return ErrClosed
	}
	w.registry.Seal()
	s := &Session{id: id.NewSessionID(), conn: conn, createdAt: time.Now()}
	w.sessions[s.id] = s
	w.mu.Unlock()

	logger := w.logger.With(zap.String("session", s.id.String()))
	if w.env.Metrics != nil {
		w.env.Metrics.IncSessions()
	}
	logger.Info("Page attached")

	defer func() {
		w.mu.Lock()
		delete(w.sessions, s.id)
		w.mu.Unlock()
		_ = conn.Close()
		if w.env.Metrics != nil {
			w.env.Metrics.DecSessions()
		}
		logger.Info("Page detached")
	}()

	opts := []dispatch.Option{
		dispatch.WithLogger(logger),
		dispatch.WithOptions(w.env.Dispatch),
		dispatch.WithFallback(func(ctx context.Context, msg string) {
			w.deliver(ctx, s.id, msg)
		}),
	}
	if w.env.Metrics != nil {
		opts = append(opts, dispatch.WithMetrics(w.env.Metrics))
	}
	if w.env.Tracer != nil {
		opts = append(opts, dispatch.WithTracer(w.env.Tracer))
	}
	if w.breakers != nil {
		opts = append(opts, dispatch.WithBreakers(w.breakers))
	}
	d := dispatch.New(w, conn, opts...)

	ctx, cancel := context.WithCancel(context.WithValue(ctx, sessionKey{}, s.id))
	defer cancel()
	err := transport.Serve(ctx, conn, d.HandleMessage)
	// running bindings observe the disconnect through ctx
	cancel()
	d.Wait()
	return err
}
