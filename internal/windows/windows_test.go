package windows

import (
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/webbridge/internal/bindgen"
	"github.com/GriffinCanCode/webbridge/internal/bindgen/source"
	"github.com/GriffinCanCode/webbridge/internal/bridge/page"
	"github.com/GriffinCanCode/webbridge/internal/bridge/protocol"
	"github.com/GriffinCanCode/webbridge/internal/domain/window"
	"github.com/GriffinCanCode/webbridge/internal/transport"
)

func TestGeneratedBindingsUpToDate(t *testing.T) {
	snap, err := source.New(source.Config{Dir: "."}, nil).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Windows, 3)

	want, err := bindgen.Wiring(snap.Windows)
	require.NoError(t, err)
	got, err := os.ReadFile(bindgen.GeneratedFile)
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got), "run cmd/bindgen to refresh %s", bindgen.GeneratedFile)
}

func TestAssets(t *testing.T) {
	for _, name := range []string{"index.html", "child.html", "calc.html", "js/main.js", "js/calc.js", "css/style.css"} {
		_, err := fs.Stat(Assets(), name)
		assert.NoError(t, err, name)
	}
}

func openPage(t *testing.T, w *window.Window) *page.Runtime {
	t.Helper()
	pageEnd, hostEnd := transport.Pipe()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	go w.Attach(ctx, hostEnd)
	rt := page.New(pageEnd)
	go rt.Serve(ctx, pageEnd)
	require.Eventually(t, func() bool { return len(w.Sessions()) > 0 }, time.Second, 5*time.Millisecond)
	return rt
}

func call(t *testing.T, rt *page.Runtime, name string, args ...any) (json.RawMessage, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c, err := rt.Invoke(ctx, name, args...)
	require.NoError(t, err)
	return c.Await(ctx)
}

func TestDemoWindows(t *testing.T) {
	m := window.NewManager(window.Env{})
	require.NoError(t, Open(m, Config{AsyncDelay: 10 * time.Millisecond}, nil))
	assert.Equal(t, []string{"calcWindow", "testWindow"}, m.Names())

	calcWin, _ := m.Get("calcWindow")
	calc := openPage(t, calcWin)

	ret, err := call(t, calc, "add", 2, 3)
	require.NoError(t, err)
	assert.JSONEq(t, "5", string(ret))

	ret, err = call(t, calc, "divide", 1, 4)
	require.NoError(t, err)
	assert.JSONEq(t, "0.25", string(ret))

	_, err = call(t, calc, "divide", 1, 0)
	var fault *protocol.Fault
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, protocol.CodeHandlerFault, fault.Code)
	assert.Contains(t, fault.Message, ErrDivideByZero.Error())

	ret, err = call(t, calc, "points", 3)
	require.NoError(t, err)
	var points []Point
	require.NoError(t, json.Unmarshal(ret, &points))
	require.Len(t, points, 3)
	assert.Equal(t, Point{X: 0, Y: 0}, points[0])

	ret, err = call(t, calc, "points", 1_000_000_000_000)
	require.NoError(t, err)
	points = nil
	require.NoError(t, json.Unmarshal(ret, &points))
	assert.Len(t, points, MaxPoints)

	ret, err = call(t, calc, "scale", []Point{{X: 1, Y: 2}}, 2)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"x":2,"y":4}]`, string(ret))

	testWin, _ := m.Get("testWindow")
	test := openPage(t, testWin)

	ret, err = call(t, test, "test", "a", "b")
	require.NoError(t, err)
	assert.JSONEq(t, `"Test result"`, string(ret))

	ret, err = call(t, test, "testAsync", "a", "b")
	require.NoError(t, err)
	assert.JSONEq(t, `"Async test result"`, string(ret))

	ret, err = call(t, test, "randomNumber")
	require.NoError(t, err, "globals of other windows are callable")
	var n int
	require.NoError(t, json.Unmarshal(ret, &n))
	assert.True(t, n >= 0 && n < 100)

	ret, err = call(t, test, "openChildWindow")
	require.NoError(t, err)
	assert.JSONEq(t, `"/windows/childWindow/"`, string(ret))
	child, ok := m.Get(ChildName)
	require.True(t, ok)
	assert.Equal(t, "Child Window", child.Title())

	closeWindow, ok := child.Lookup("closeWindow")
	require.True(t, ok)
	ret2, err := closeWindow.Handler(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, true, ret2)
	assert.Equal(t, window.StateClosed, child.State())
	_, open := m.Get(ChildName)
	assert.False(t, open)
}
