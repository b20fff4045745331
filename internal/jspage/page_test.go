package jspage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/GriffinCanCode/webbridge/internal/transport"
)

func newPage(t *testing.T, mutate ...func(*Config)) *Page {
	t.Helper()
	config := DefaultConfig()
	config.Receiver = "window.inbox"
	for _, m := range mutate {
		m(&config)
	}
	p, err := New(config, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func TestEval(t *testing.T) {
	ctx := context.Background()
	p := newPage(t)

	tests := []struct {
		name   string
		script string
		want   any
	}{
		{"number", "40 + 2", int64(42)},
		{"string", "'hello'.toUpperCase()", "HELLO"},
		{"window is global", "var x = 7; window.x", int64(7)},
		{"crypto uuid", "crypto.randomUUID().length", int64(36)},
		{"no require", "typeof require", "undefined"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := p.Eval(ctx, tt.script)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.Export())
		})
	}
}

func TestEvalErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("exception", func(t *testing.T) {
		p := newPage(t)
		_, err := p.Eval(ctx, "var e = new Error('bad'); e.code = 'E1'; throw e;")
		var se *ScriptError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, "E1", se.Code)
		assert.Equal(t, "bad", se.Message)
	})

	t.Run("timeout", func(t *testing.T) {
		p := newPage(t, func(c *Config) { c.Timeout = 20 * time.Millisecond })
		_, err := p.Eval(ctx, "for (;;) {}")
		var se *ScriptError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, "interrupted", se.Code)

		v, err := p.Eval(ctx, "1")
		require.NoError(t, err, "interrupt must be cleared for the next evaluation")
		assert.Equal(t, int64(1), v.Export())
	})

	t.Run("closed", func(t *testing.T) {
		p := newPage(t)
		require.NoError(t, p.Close())
		_, err := p.Eval(ctx, "1")
		assert.ErrorIs(t, err, ErrClosed)
	})
}

func TestConsole(t *testing.T) {
	p := newPage(t)
	_, err := p.Eval(context.Background(), "console.log('a', 1); console.error('b')")
	require.NoError(t, err)

	entries := p.Console()
	require.Len(t, entries, 2)
	assert.Equal(t, "log", entries[0].Level)
	assert.Equal(t, "a 1", entries[0].Message)
	assert.Equal(t, "error", entries[1].Level)
}

func TestHostFuncAndDeliver(t *testing.T) {
	ctx := context.Background()
	p := newPage(t)

	require.NoError(t, p.Inject(
		"var received = [];",
		"window.inbox = function (m) { received.push(m); "+p.HostFunc()+"('ack:' + m); };",
	))

	require.NoError(t, p.Deliver(ctx, "one"))
	require.NoError(t, p.Deliver(ctx, "two"))

	v, err := p.Eval(ctx, "received.join(',')")
	require.NoError(t, err)
	assert.Equal(t, "one,two", v.String())
	assert.Equal(t, []string{"ack:one", "ack:two"}, p.Outbox())
	assert.Empty(t, p.Outbox())
}

func TestAwait(t *testing.T) {
	ctx := context.Background()
	p := newPage(t)

	require.NoError(t, p.Inject(`
		var settle;
		window.inbox = function (m) { settle(m); };
	`))

	t.Run("plain value", func(t *testing.T) {
		v, err := p.Eval(ctx, "'x'")
		require.NoError(t, err)
		got, err := p.Await(ctx, v)
		require.NoError(t, err)
		assert.Equal(t, "x", got)
	})

	t.Run("resolved later", func(t *testing.T) {
		v, err := p.Eval(ctx, "new Promise(function (resolve) { settle = function (m) { resolve({v: m}); }; })")
		require.NoError(t, err)

		go func() {
			time.Sleep(5 * time.Millisecond)
			_ = p.Deliver(ctx, "done")
		}()

		out, err := p.AwaitJSON(ctx, v)
		require.NoError(t, err)
		assert.JSONEq(t, `{"v":"done"}`, out)
	})

	t.Run("rejected", func(t *testing.T) {
		v, err := p.Eval(ctx, "Promise.reject(new Error('nope'))")
		require.NoError(t, err)
		_, err = p.Await(ctx, v)
		var se *ScriptError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, "nope", se.Message)
	})

	t.Run("context cancelled", func(t *testing.T) {
		v, err := p.Eval(ctx, "new Promise(function () {})")
		require.NoError(t, err)
		cctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
		defer cancel()
		_, err = p.Await(cctx, v)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := newPage(t)
	require.NoError(t, p.Inject(
		"window.inbox = function (m) { "+p.HostFunc()+"('echo:' + m); };",
		p.HostFunc()+"('early');",
	))

	pageEnd, hostEnd := transport.Pipe()
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx, pageEnd) }()

	msg, err := hostEnd.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "early", msg)

	require.NoError(t, hostEnd.Send(ctx, "ping"))
	msg, err = hostEnd.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "echo:ping", msg)

	require.NoError(t, hostEnd.Close())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after close")
	}
}
