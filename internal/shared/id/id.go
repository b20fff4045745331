// Package id provides ULID-based identifiers for windows, page sessions and
// traces.
//
// Design Principles:
//   - K-sortable: ids created later sort later, also within one millisecond
//   - Debuggable: prefixes make logs readable (win_*, sess_*, trace_*)
//   - Type safety: separate types prevent passing a session id as a window id
//
// Bridge correlation tokens are not ULIDs: the page generates those as
// random UUIDv4 text (see bridge/page) because the browser side has no ULID
// source.
package id

import (
	"crypto/rand"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// WindowID identifies a native window instance
type WindowID string

// SessionID identifies one attached page session of a window
type SessionID string

// TraceID identifies a trace spanning a page session
type TraceID string

// SpanID identifies one traced operation
type SpanID string

func (id WindowID) String() string  { return string(id) }
func (id SessionID) String() string { return string(id) }
func (id TraceID) String() string   { return string(id) }
func (id SpanID) String() string    { return string(id) }

// Prefixes
const (
	WindowPrefix  = "win"
	SessionPrefix = "sess"
	TracePrefix   = "trace"
	SpanPrefix    = "span"
)

var ErrInvalid = errors.New("id: invalid identifier")

// Generator produces monotonic ULIDs. It is safe for concurrent use.
type Generator struct {
	mu      sync.Mutex
	entropy io.Reader
	now     func() time.Time
}

// NewGenerator uses crypto/rand with monotonic increments
func NewGenerator() *Generator {
	return NewGeneratorWithEntropy(ulid.Monotonic(rand.Reader, 0), time.Now)
}

// NewGeneratorWithEntropy is for deterministic tests
func NewGeneratorWithEntropy(entropy io.Reader, now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{entropy: entropy, now: now}
}

// Generate returns the next ULID
func (g *Generator) Generate() ulid.ULID {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(g.now()), g.entropy)
}

// WithPrefix returns "<prefix>_<ulid>"
func (g *Generator) WithPrefix(prefix string) string {
	return prefix + "_" + g.Generate().String()
}

var (
	defaultGen  *Generator
	defaultOnce sync.Once
)

// Default returns the process-wide generator
func Default() *Generator {
	defaultOnce.Do(func() { defaultGen = NewGenerator() })
	return defaultGen
}

func newID[T ~string](prefix string) T {
	return T(Default().WithPrefix(prefix))
}

func NewWindowID() WindowID   { return newID[WindowID](WindowPrefix) }
func NewSessionID() SessionID { return newID[SessionID](SessionPrefix) }
func NewTraceID() TraceID     { return newID[TraceID](TracePrefix) }
func NewSpanID() SpanID       { return newID[SpanID](SpanPrefix) }

// Split parses a prefixed id into its prefix and ULID
func Split(s string) (string, ulid.ULID, error) {
	prefix, raw, ok := strings.Cut(s, "_")
	if !ok || prefix == "" {
		return "", ulid.ULID{}, ErrInvalid
	}
	u, err := ulid.ParseStrict(raw)
	if err != nil {
		return "", ulid.ULID{}, errors.Join(ErrInvalid, err)
	}
	return prefix, u, nil
}

// Time returns the creation time encoded in a prefixed id
func Time(s string) (time.Time, error) {
	_, u, err := Split(s)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(u.Time()), nil
}
