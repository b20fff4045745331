/*
Package resilience provides circuit breaker implementation for graceful degradation.

# Overview

This package implements the circuit breaker pattern. The bridge dispatcher keeps
one breaker per binding in a Group, so a handler that keeps faulting is answered
with a circuit_open fault immediately instead of running again.

# Features

- Closed, Open and Half-Open states with time-driven transitions
- Pluggable trip and success classification
- State change callbacks, used for the breaker gauge
- Named groups with lazy creation
- Injectable clock

# Usage

	breaker := resilience.New("add", resilience.Settings{
		MaxRequests: 3,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warn("breaker state change", zap.String("binding", name),
				zap.Stringer("from", from), zap.Stringer("to", to))
		},
	})

	ret, err := breaker.Execute(ctx, func(ctx context.Context) (any, error) {
		return binding.Handler(ctx, args)
	})

	// one breaker per binding
	group := resilience.NewGroup(settings)
	ret, err = group.Get("add").Execute(ctx, call)

A canceled caller context is not counted as a failure unless IsSuccessful
says otherwise. Results that arrive after a transition are ignored.

# States

- Closed: Normal operation, requests pass through
- Open: Service unavailable, requests fail immediately
- Half-Open: Testing if service recovered, limited requests allowed

# Pattern

The circuit breaker transitions between states based on success/failure rates:

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                           |
	                                    [failure]
	                                           |
	                                           v
	                                         Open
*/
package resilience
