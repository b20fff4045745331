package windows

import (
	"context"
	"embed"
	"io/fs"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/webbridge/internal/domain/window"
	"github.com/GriffinCanCode/webbridge/internal/shared/id"
)

//go:embed wwwroot
var wwwroot embed.FS

// Assets returns the demo page files.
func Assets() fs.FS {
	sub, err := fs.Sub(wwwroot, "wwwroot")
	if err != nil {
		panic(err)
	}
	return sub
}

// Config tunes the demo windows.
type Config struct {
	AsyncDelay  time.Duration
	SampleDelay time.Duration
}

// DefaultConfig returns the demo pacing.
func DefaultConfig() Config {
	return Config{AsyncDelay: 2 * time.Second, SampleDelay: 100 * time.Millisecond}
}

// Open opens the start windows on m. The child window opens on demand.
func Open(m *window.Manager, cfg Config, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	assets := Assets()

	test := &TestWindow{Manager: m, Logger: logger, AsyncDelay: cfg.AsyncDelay}
	w, err := m.Open(test, window.Options{
		Title:  "Test Window",
		Source: window.FromAsset("index.html"),
		Assets: assets,
	})
	if err != nil {
		return err
	}
	w.OnMessage(func(_ context.Context, session id.SessionID, msg string) {
		logger.Info("Message received",
			zap.String("window", w.Name()),
			zap.String("session", session.String()),
			zap.String("message", msg))
	})

	_, err = m.Open(&CalcWindow{SampleDelay: cfg.SampleDelay}, window.Options{
		Title:  "Calculator",
		Source: window.FromAsset("calc.html"),
		Assets: assets,
	})
	return err
}
