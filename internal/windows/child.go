package windows

import (
	"github.com/GriffinCanCode/webbridge/internal/domain/window"
)

// ChildName is the route name of the child window.
const ChildName = "childWindow"

// ChildWindow is opened on demand by TestWindow.
type ChildWindow struct {
	window.Base
	Manager *window.Manager
}

// CloseWindow closes this window and detaches its pages.
//
//bridge:bind
func (c *ChildWindow) CloseWindow() bool {
	if c.Window() == nil {
		return false
	}
	return c.Manager.Close(c.Window().Name())
}

// ChildOptions describes the child window page.
func ChildOptions() window.Options {
	return window.Options{
		Name:   ChildName,
		Title:  "Child Window",
		Source: window.FromAsset("child.html"),
		Assets: Assets(),
	}
}
