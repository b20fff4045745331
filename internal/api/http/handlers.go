package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/webbridge/internal/bridge/script"
	"github.com/GriffinCanCode/webbridge/internal/domain/window"
	"github.com/GriffinCanCode/webbridge/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/webbridge/internal/shared/paths"
	"github.com/GriffinCanCode/webbridge/internal/shared/types"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	manager *window.Manager
	metrics *monitoring.Metrics
	logger  *zap.Logger
}

// NewHandlers creates a new handler set. metrics may be nil.
func NewHandlers(manager *window.Manager, metrics *monitoring.Metrics, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		manager: manager,
		metrics: metrics,
		logger:  logger,
	}
}

// Register mounts every route on r.
func (h *Handlers) Register(r gin.IRouter) {
	r.GET(paths.Health, h.Health)
	r.GET(paths.Windows, h.ListWindows)

	win := r.Group(paths.WindowPattern)
	win.GET("/", h.Page)
	win.GET("/"+paths.ManifestFile, h.Manifest)
	win.GET("/"+paths.BridgeScript, h.BridgeScript)
	win.GET(paths.AssetPattern, h.Asset)

	r.GET(paths.Metrics+"/json", h.MetricsJSON)
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, health(h.manager.Stats()))
}

func health(stats window.Stats) types.Health {
	return types.Health{
		Status:   "healthy",
		Windows:  stats.Windows,
		Sessions: stats.Sessions,
		Bindings: stats.Bindings,
		Globals:  stats.Globals,
	}
}

// ListWindows lists opened windows in opening order
func (h *Handlers) ListWindows(c *gin.Context) {
	windows := h.manager.List()
	list := types.WindowList{
		Windows: make([]types.WindowInfo, 0, len(windows)),
		Stats:   health(h.manager.Stats()),
	}
	for _, w := range windows {
		list.Windows = append(list.Windows, types.WindowInfo{
			ID:        w.ID().String(),
			Name:      w.Name(),
			Title:     w.Title(),
			State:     string(w.State()),
			Source:    w.Source().String(),
			URL:       paths.For(w.Name()).Page(),
			Sessions:  len(w.Sessions()),
			Bindings:  len(w.Bindings()),
			CreatedAt: w.CreatedAt(),
		})
	}
	c.JSON(http.StatusOK, list)
}

// Manifest describes the bindings callable from a window's pages
func (h *Handlers) Manifest(c *gin.Context) {
	w, ok := h.window(c)
	if !ok {
		return
	}
	bindings := w.Bindings()
	manifest := types.Manifest{
		Window:    w.Name(),
		Namespace: w.Namespace(),
		Object:    w.Window(),
		Socket:    paths.For(w.Name()).Socket(),
		Bindings:  make([]types.BindingInfo, 0, len(bindings)),
	}
	for _, b := range bindings {
		manifest.Bindings = append(manifest.Bindings, types.BindingInfo{
			Name:    b.Name,
			Params:  append([]string{}, b.Params...),
			Scope:   b.Scope.String(),
			Async:   b.Async,
			Circuit: w.Circuit(b.Name),
		})
	}
	c.JSON(http.StatusOK, manifest)
}

// BridgeScript serves the runtime, transport and stubs of a window as one
// script for pages that are not served by this host.
func (h *Handlers) BridgeScript(c *gin.Context) {
	w, ok := h.window(c)
	if !ok {
		return
	}
	body := script.Bundle(w.InitScripts(h.transport(w))...)
	h.serve(c, "application/javascript; charset=utf-8", []byte(body))
}

// Page serves the start page of a window with the bridge injected into its
// head. Remote sources are redirected to; they load bridge.js themselves.
func (h *Handlers) Page(c *gin.Context) {
	w, ok := h.window(c)
	if !ok {
		return
	}
	page, err := w.Page(h.transport(w))
	if errors.Is(err, window.ErrRemoteSource) {
		c.Redirect(http.StatusFound, w.Source().Value)
		return
	}
	if err != nil {
		h.logger.Error("Failed to render page", zap.String("window", w.Name()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "failed to render page"})
		return
	}
	h.serve(c, "text/html; charset=utf-8", page)
}

// MetricsJSON returns the current metric snapshot
func (h *Handlers) MetricsJSON(c *gin.Context) {
	if h.metrics == nil {
		c.JSON(http.StatusServiceUnavailable, types.ErrorResponse{Error: "metrics disabled"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"snapshot":        h.metrics.Snapshot(),
		"average_latency": h.metrics.AverageLatency(),
	})
}

func (h *Handlers) transport(w *window.Window) string {
	return script.WebSocketTransport(w.Namespace(), paths.For(w.Name()).Socket())
}

func (h *Handlers) window(c *gin.Context) (*window.Window, bool) {
	name := c.Param("name")
	w, ok := h.manager.Get(name)
	if !ok {
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: "window not found: " + name})
		return nil, false
	}
	return w, true
}
