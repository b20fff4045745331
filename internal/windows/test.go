package windows

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/webbridge/internal/domain/window"
	"github.com/GriffinCanCode/webbridge/internal/shared/paths"
)

// TestWindow is the main demo window.
type TestWindow struct {
	window.Base
	Manager *window.Manager
	Logger  *zap.Logger
	// AsyncDelay paces TestAsync.
	AsyncDelay time.Duration
}

//bridge:bind
func (t *TestWindow) Test(arg1, arg2 string) string {
	t.logger().Info("Test called", zap.String("arg1", arg1), zap.String("arg2", arg2))
	return "Test result"
}

//bridge:bind
func (t *TestWindow) TestAsync(ctx context.Context, arg1, arg2 string) <-chan string {
	t.logger().Info("TestAsync called", zap.String("arg1", arg1), zap.String("arg2", arg2))
	ch := make(chan string, 1)
	go func() {
		select {
		case <-time.After(t.AsyncDelay):
			ch <- "Async test result"
		case <-ctx.Done():
			close(ch)
		}
	}()
	return ch
}

// OpenChildWindow opens the child window once and returns its page path.
//
//bridge:bind
func (t *TestWindow) OpenChildWindow() (string, error) {
	if _, ok := t.Manager.Get(ChildName); !ok {
		if _, err := t.Manager.Open(&ChildWindow{Manager: t.Manager}, ChildOptions()); err != nil {
			return "", err
		}
	}
	return paths.For(ChildName).Page(), nil
}

func (t *TestWindow) logger() *zap.Logger {
	if t.Logger == nil {
		return zap.NewNop()
	}
	return t.Logger
}
