package resilience

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrCircuitOpen     = errors.New("circuit breaker is open")
	ErrTooManyRequests = errors.New("too many requests")
)

// State is the position of a breaker
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Settings configures a breaker. Zero fields take defaults.
type Settings struct {
	// MaxRequests is the number of trial calls let through while half-open,
	// and the successes needed to close again.
	MaxRequests uint32
	// Interval clears the closed-state counts periodically. Zero keeps them
	// until the next transition.
	Interval time.Duration
	// Timeout is how long the breaker stays open.
	Timeout time.Duration
	// ReadyToTrip decides after a failure in the closed state whether to open.
	ReadyToTrip func(counts Counts) bool
	// OnStateChange observes transitions.
	OnStateChange func(name string, from State, to State)
	// IsSuccessful classifies a call result. By default a nil error and a
	// canceled caller both count as success.
	IsSuccessful func(err error) bool
	// Now is the clock, for tests.
	Now func() time.Time
}

func (s Settings) withDefaults() Settings {
	if s.MaxRequests == 0 {
		s.MaxRequests = 1
	}
	if s.Timeout <= 0 {
		s.Timeout = 60 * time.Second
	}
	if s.ReadyToTrip == nil {
		s.ReadyToTrip = func(c Counts) bool { return c.ConsecutiveFailures > 5 }
	}
	if s.IsSuccessful == nil {
		s.IsSuccessful = func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		}
	}
	if s.Now == nil {
		s.Now = time.Now
	}
	return s
}

// Counts are the call statistics of the current generation
type Counts struct {
	Requests             uint32
	TotalSuccesses       uint32
	TotalFailures        uint32
	ConsecutiveSuccesses uint32
	ConsecutiveFailures  uint32
}

func (c *Counts) success() {
	c.TotalSuccesses++
	c.ConsecutiveSuccesses++
	c.ConsecutiveFailures = 0
}

func (c *Counts) failure() {
	c.TotalFailures++
	c.ConsecutiveFailures++
	c.ConsecutiveSuccesses = 0
}

// Breaker guards one named call target, such as a binding or a remote host.
type Breaker struct {
	name     string
	settings Settings

	mu         sync.Mutex
	state      State
	generation uint64
	counts     Counts
	// deadline ends the open state, or the closed-state interval.
	deadline time.Time
}

// New creates a closed breaker
func New(name string, settings Settings) *Breaker {
	b := &Breaker{name: name, settings: settings.withDefaults()}
	b.rearm(b.settings.Now())
	return b
}

func (b *Breaker) Name() string { return b.name }

// State returns the state as of now
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.advance(b.settings.Now())
}

// Counts returns a copy of the current generation's counts
func (b *Breaker) Counts() Counts {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.counts
}

// Execute runs fn unless the breaker rejects it. The result of fn is
// classified with Settings.IsSuccessful; a panic counts as a failure and is
// re-raised.
func (b *Breaker) Execute(ctx context.Context, fn func(context.Context) (any, error)) (any, error) {
	gen, err := b.admit()
	if err != nil {
		return nil, err
	}

	settled := false
	defer func() {
		if !settled {
			b.settle(gen, false)
		}
	}()

	ret, err := fn(ctx)
	settled = true
	b.settle(gen, b.settings.IsSuccessful(err))
	return ret, err
}

func (b *Breaker) admit() (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.advance(b.settings.Now()) {
	case StateOpen:
		return 0, ErrCircuitOpen
	case StateHalfOpen:
		if b.counts.Requests >= b.settings.MaxRequests {
			return 0, ErrTooManyRequests
		}
	}
	b.counts.Requests++
	return b.generation, nil
}

// settle records a result. Results from an earlier generation are stale.
func (b *Breaker) settle(gen uint64, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.settings.Now()
	state := b.advance(now)
	if gen != b.generation {
		return
	}

	if ok {
		b.counts.success()
		if state == StateHalfOpen && b.counts.ConsecutiveSuccesses >= b.settings.MaxRequests {
			b.transition(StateClosed, now)
		}
		return
	}

	b.counts.failure()
	if state == StateHalfOpen || b.settings.ReadyToTrip(b.counts) {
		b.transition(StateOpen, now)
	}
}

// advance applies time-driven changes and returns the state.
func (b *Breaker) advance(now time.Time) State {
	if b.deadline.IsZero() || now.Before(b.deadline) {
		return b.state
	}
	switch b.state {
	case StateClosed:
		b.generation++
		b.counts = Counts{}
		b.rearm(now)
	case StateOpen:
		b.transition(StateHalfOpen, now)
	}
	return b.state
}

func (b *Breaker) transition(to State, now time.Time) {
	from := b.state
	if from == to {
		return
	}
	b.state = to
	b.generation++
	b.counts = Counts{}
	b.rearm(now)

	if b.settings.OnStateChange != nil {
		b.settings.OnStateChange(b.name, from, to)
	}
}

func (b *Breaker) rearm(now time.Time) {
	switch {
	case b.state == StateOpen:
		b.deadline = now.Add(b.settings.Timeout)
	case b.state == StateClosed && b.settings.Interval > 0:
		b.deadline = now.Add(b.settings.Interval)
	default:
		b.deadline = time.Time{}
	}
}
