package resilience

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errHandler = errors.New("handler failed")

// clock is a manually advanced time source.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock { return &clock{now: time.Unix(1_700_000_000, 0)} }

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Add(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func call(b *Breaker, err error) error {
	_, got := b.Execute(context.Background(), func(context.Context) (any, error) {
		return nil, err
	})
	return got
}

func tripAfter(n uint32) func(Counts) bool {
	return func(c Counts) bool { return c.ConsecutiveFailures >= n }
}

func TestBreakerTransitions(t *testing.T) {
	tests := []struct {
		name    string
		results []error
		advance time.Duration
		want    State
	}{
		{"successes keep it closed", []error{nil, nil, nil}, 0, StateClosed},
		{"failures below threshold", []error{errHandler, errHandler}, 0, StateClosed},
		{"success resets the streak", []error{errHandler, errHandler, nil, errHandler}, 0, StateClosed},
		{"threshold opens", []error{errHandler, errHandler, errHandler}, 0, StateOpen},
		{"timeout half-opens", []error{errHandler, errHandler, errHandler}, 30 * time.Second, StateHalfOpen},
		{"canceled caller is not a failure", []error{context.Canceled, context.Canceled, context.Canceled}, 0, StateClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clk := newClock()
			b := New("add", Settings{Timeout: 30 * time.Second, ReadyToTrip: tripAfter(3), Now: clk.Now})
			for _, err := range tt.results {
				call(b, err)
			}
			clk.Add(tt.advance)
			assert.Equal(t, tt.want, b.State())
		})
	}
}

func TestBreakerRejectsWhileOpen(t *testing.T) {
	clk := newClock()
	ran := 0
	b := New("divide", Settings{Timeout: time.Minute, ReadyToTrip: tripAfter(1), Now: clk.Now})

	require.ErrorIs(t, call(b, errHandler), errHandler)

	_, err := b.Execute(context.Background(), func(context.Context) (any, error) {
		ran++
		return nil, nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Zero(t, ran)
}

func TestBreakerHalfOpen(t *testing.T) {
	t.Run("successes close", func(t *testing.T) {
		clk := newClock()
		b := New("points", Settings{MaxRequests: 2, Timeout: time.Second, ReadyToTrip: tripAfter(1), Now: clk.Now})
		call(b, errHandler)
		clk.Add(time.Second)

		require.NoError(t, call(b, nil))
		assert.Equal(t, StateHalfOpen, b.State())
		require.NoError(t, call(b, nil))
		assert.Equal(t, StateClosed, b.State())
	})

	t.Run("failure reopens", func(t *testing.T) {
		clk := newClock()
		b := New("points", Settings{Timeout: time.Second, ReadyToTrip: tripAfter(1), Now: clk.Now})
		call(b, errHandler)
		clk.Add(time.Second)

		call(b, errHandler)
		assert.Equal(t, StateOpen, b.State())
	})

	t.Run("limits trial calls", func(t *testing.T) {
		clk := newClock()
		b := New("points", Settings{MaxRequests: 1, Timeout: time.Second, ReadyToTrip: tripAfter(1), Now: clk.Now})
		call(b, errHandler)
		clk.Add(time.Second)

		release := make(chan struct{})
		started := make(chan struct{})
		go b.Execute(context.Background(), func(context.Context) (any, error) {
			close(started)
			<-release
			return nil, nil
		})
		<-started

		assert.ErrorIs(t, call(b, nil), ErrTooManyRequests)
		close(release)
	})
}

func TestBreakerIntervalClearsCounts(t *testing.T) {
	clk := newClock()
	b := New("scale", Settings{Interval: time.Minute, ReadyToTrip: tripAfter(3), Now: clk.Now})

	call(b, errHandler)
	call(b, errHandler)
	assert.Equal(t, uint32(2), b.Counts().ConsecutiveFailures)

	clk.Add(time.Minute)
	call(b, errHandler)
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, Counts{Requests: 1, TotalFailures: 1, ConsecutiveFailures: 1}, b.Counts())
}

func TestBreakerStaleResultIgnored(t *testing.T) {
	clk := newClock()
	b := New("slow", Settings{Timeout: time.Second, ReadyToTrip: tripAfter(1), Now: clk.Now})

	release := make(chan struct{})
	done := make(chan struct{})
	started := make(chan struct{})
	go func() {
		defer close(done)
		b.Execute(context.Background(), func(context.Context) (any, error) {
			close(started)
			<-release
			return nil, errHandler
		})
	}()
	<-started

	// trips on a faster call; the slow failure lands in a later generation
	call(b, errHandler)
	clk.Add(time.Second)
	require.Equal(t, StateHalfOpen, b.State())

	close(release)
	<-done
	assert.Equal(t, StateHalfOpen, b.State())
}

func TestBreakerStateChange(t *testing.T) {
	clk := newClock()
	var changes []string
	b := New("add", Settings{
		Timeout:     time.Second,
		ReadyToTrip: tripAfter(1),
		Now:         clk.Now,
		OnStateChange: func(name string, from, to State) {
			changes = append(changes, name+":"+from.String()+"->"+to.String())
		},
	})

	call(b, errHandler)
	clk.Add(time.Second)
	call(b, nil)

	assert.Equal(t, []string{
		"add:closed->open",
		"add:open->half-open",
		"add:half-open->closed",
	}, changes)
}

func TestBreakerIsSuccessful(t *testing.T) {
	notFound := errors.New("not found")
	b := New("host", Settings{
		ReadyToTrip:  tripAfter(1),
		IsSuccessful: func(err error) bool { return err == nil || errors.Is(err, notFound) },
	})

	assert.ErrorIs(t, call(b, notFound), notFound)
	assert.Equal(t, StateClosed, b.State())

	call(b, errHandler)
	assert.Equal(t, StateOpen, b.State())
}

func TestBreakerPanicCountsAsFailure(t *testing.T) {
	b := New("explode", Settings{ReadyToTrip: tripAfter(1)})

	assert.Panics(t, func() {
		b.Execute(context.Background(), func(context.Context) (any, error) {
			panic("boom")
		})
	})
	assert.Equal(t, StateOpen, b.State())
}

func TestBreakerPassesContext(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "window")
	b := New("ctx", Settings{})

	ret, err := b.Execute(ctx, func(ctx context.Context) (any, error) {
		return ctx.Value(key{}), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "window", ret)
}

func TestGroup(t *testing.T) {
	g := NewGroup(Settings{ReadyToTrip: tripAfter(1)})

	_, ok := g.Lookup("add")
	assert.False(t, ok)

	add := g.Get("add")
	assert.Same(t, add, g.Get("add"))
	assert.Equal(t, "add", add.Name())

	call(g.Get("explode"), errHandler)
	assert.Equal(t, StateOpen, g.Get("explode").State())
	assert.Equal(t, StateClosed, add.State())

	b, ok := g.Lookup("explode")
	require.True(t, ok)
	assert.Equal(t, "explode", b.Name())
}
