package id

import (
	"bytes"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypedIDs(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		prefix string
	}{
		{"window", NewWindowID().String(), WindowPrefix},
		{"session", NewSessionID().String(), SessionPrefix},
		{"trace", NewTraceID().String(), TracePrefix},
		{"span", NewSpanID().String(), SpanPrefix},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefix, _, err := Split(tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.prefix, prefix)
			assert.Len(t, strings.TrimPrefix(tt.id, tt.prefix+"_"), 26)
		})
	}
}

func TestMonotonicWithinMillisecond(t *testing.T) {
	fixed := time.UnixMilli(1_700_000_000_000)
	gen := NewGeneratorWithEntropy(NewGenerator().entropy, func() time.Time { return fixed })

	ids := make([]string, 100)
	for i := range ids {
		ids[i] = gen.WithPrefix(SessionPrefix)
	}
	assert.True(t, sort.StringsAreSorted(ids), "ids from one millisecond sort in creation order")
}

func TestDeterministicEntropy(t *testing.T) {
	at := func() time.Time { return time.UnixMilli(42) }
	a := NewGeneratorWithEntropy(bytes.NewReader(make([]byte, 16)), at).Generate()
	b := NewGeneratorWithEntropy(bytes.NewReader(make([]byte, 16)), at).Generate()
	assert.Equal(t, a, b)
}

func TestConcurrentGeneration(t *testing.T) {
	const workers, each = 8, 250

	var mu sync.Mutex
	seen := make(map[WindowID]bool, workers*each)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]WindowID, each)
			for i := range local {
				local[i] = NewWindowID()
			}
			mu.Lock()
			defer mu.Unlock()
			for _, id := range local {
				seen[id] = true
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*each)
}

func TestTime(t *testing.T) {
	at := time.UnixMilli(1_700_000_123_456)
	gen := NewGeneratorWithEntropy(bytes.NewReader(make([]byte, 16)), func() time.Time { return at })

	got, err := Time(gen.WithPrefix(TracePrefix))
	require.NoError(t, err)
	assert.True(t, at.Equal(got))
}

func TestSplitRejects(t *testing.T) {
	for _, s := range []string{"", "win", "_01ARZ3NDEKTSV4RRFFQ69G5FAV", "win_nope", "win_01ARZ3NDEKTSV4RRFFQ69G5FA"} {
		_, _, err := Split(s)
		assert.ErrorIs(t, err, ErrInvalid, s)
	}
}
