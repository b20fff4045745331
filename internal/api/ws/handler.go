package ws

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/webbridge/internal/bridge/protocol"
	"github.com/GriffinCanCode/webbridge/internal/domain/window"
	"github.com/GriffinCanCode/webbridge/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/webbridge/internal/shared/types"
	"github.com/GriffinCanCode/webbridge/internal/shared/utils"
	"github.com/GriffinCanCode/webbridge/internal/transport"
)

// Config tunes the per-page limits.
type Config struct {
	// MessagesPerSecond paces inbound page messages; zero disables pacing.
	MessagesPerSecond int
	Burst             int
	MaxMessageSize    int
	// MaxJSONDepth bounds the nesting of tagged payloads; zero uses the default.
	MaxJSONDepth int
}

// DefaultConfig returns the default page limits.
func DefaultConfig() Config {
	return Config{
		MessagesPerSecond: 200,
		Burst:             400,
		MaxMessageSize:    utils.MaxMessageSize,
		MaxJSONDepth:      utils.MaxJSONDepth,
	}
}

// Handler attaches WebSocket pages to windows
type Handler struct {
	manager  *window.Manager
	metrics  *monitoring.Metrics
	logger   *zap.Logger
	cfg      Config
	upgrader websocket.Upgrader
}

// NewHandler creates a new WebSocket handler. metrics may be nil.
func NewHandler(manager *window.Manager, cfg Config, metrics *monitoring.Metrics, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		manager: manager,
		metrics: metrics,
		logger:  logger,
		cfg:     cfg,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Pages may be served from another origin
			},
		},
	}
}

// HandleConnection upgrades the request and runs the bridge for the named
// window until the page goes away or the window closes.
func (h *Handler) HandleConnection(c *gin.Context) {
	name := c.Param("name")
	w, ok := h.manager.Get(name)
	if !ok {
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: "window not found: " + name})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.String("window", name), zap.Error(err))
		return
	}

	if h.metrics != nil {
		h.metrics.IncWSConnections()
		defer h.metrics.DecWSConnections()
	}

	page := transport.NewWSConn(conn)
	defer page.Close()

	h.logger.Info("Page connected", zap.String("window", name), zap.String("remote", c.ClientIP()))
	if err := w.Attach(c.Request.Context(), h.wrap(page)); err != nil {
		h.logger.Warn("Page detached with error", zap.String("window", name), zap.Error(err))
		return
	}
	h.logger.Info("Page disconnected", zap.String("window", name))
}

func (h *Handler) wrap(conn transport.Conn) transport.Conn {
	lc := &limitedConn{
		Conn:    conn,
		maxSize:  h.cfg.MaxMessageSize,
		maxDepth: h.cfg.MaxJSONDepth,
		metrics:  h.metrics,
		logger:   h.logger,
	}
	if h.cfg.MessagesPerSecond > 0 {
		lc.limiter = rate.NewLimiter(rate.Limit(h.cfg.MessagesPerSecond), max(h.cfg.Burst, 1))
	}
	return lc
}

// limitedConn paces and validates inbound page messages and counts traffic.
// Oversized or invalid messages are dropped; excess rate waits, so calls are
// delayed rather than lost.
type limitedConn struct {
	transport.Conn
	limiter  *rate.Limiter
	maxSize  int
	maxDepth int
	metrics  *monitoring.Metrics
	logger   *zap.Logger
}

func (c *limitedConn) Receive(ctx context.Context) (string, error) {
	for {
		msg, err := c.Conn.Receive(ctx)
		if err != nil {
			return "", err
		}
		if err := c.validate(msg); err != nil {
			c.logger.Debug("Dropping page message", zap.Error(err))
			if c.metrics != nil {
				c.metrics.RecordDropped("invalid")
			}
			continue
		}
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return "", err
			}
		}
		if c.metrics != nil {
			c.metrics.RecordWSMessage("in", kind(msg))
		}
		return msg, nil
	}
}

// validate checks size and encoding of every message, and the nesting of
// tagged payloads. Untagged messages are opaque to the bridge.
func (c *limitedConn) validate(msg string) error {
	if err := utils.ValidateMessage(msg, c.maxSize); err != nil {
		return err
	}
	if !protocol.IsTagged(msg) {
		return nil
	}
	depth := c.maxDepth
	if depth <= 0 {
		depth = utils.MaxJSONDepth
	}
	return utils.ValidateJSON([]byte(msg[len(protocol.Tag):]), depth)
}

func (c *limitedConn) Send(ctx context.Context, msg string) error {
	if err := c.Conn.Send(ctx, msg); err != nil {
		return err
	}
	if c.metrics != nil {
		c.metrics.RecordWSMessage("out", kind(msg))
	}
	return nil
}

func kind(msg string) string {
	if protocol.IsTagged(msg) {
		return "bridge"
	}
	return "app"
}
