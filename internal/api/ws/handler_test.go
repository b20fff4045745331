package ws

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/GriffinCanCode/webbridge/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/webbridge/internal/transport"
)

func nested(depth int) string {
	return strings.Repeat("[", depth) + "1" + strings.Repeat("]", depth)
}

func TestLimitedConnDropsInvalid(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	metrics := monitoring.NewMetrics(prometheus.NewRegistry())
	h := NewHandler(nil, Config{MaxMessageSize: 256, MaxJSONDepth: 4}, metrics, zaptest.NewLogger(t))
	page, host := transport.Pipe()
	defer page.Close()
	conn := h.wrap(host)

	sent := []string{
		strings.Repeat("x", 300),
		"\xff\xfe",
		`bind:{"id":"1","name":"add","args":` + nested(8) + `}`,
		`bind:{"id":"2","name":"add","args":` + nested(2) + `}`,
		nested(8),
	}
	for _, msg := range sent {
		require.NoError(t, page.Send(ctx, msg))
	}

	msg, err := conn.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, sent[3], msg, "oversized, non UTF-8 and deeply nested tagged messages are dropped")

	msg, err = conn.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, sent[4], msg, "untagged messages are not parsed")

	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.BridgeDropped.WithLabelValues("invalid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.WSMessages.WithLabelValues("in", "bridge")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.WSMessages.WithLabelValues("in", "app")))
}

func TestLimitedConnDefaultDepth(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	h := NewHandler(nil, Config{}, nil, nil)
	page, host := transport.Pipe()
	defer page.Close()
	conn := h.wrap(host)

	deep := `bind:{"id":"1","name":"add","args":` + nested(40) + `}`
	ok := `bind:{"id":"2","name":"add","args":[1,2]}`
	require.NoError(t, page.Send(ctx, deep))
	require.NoError(t, page.Send(ctx, ok))

	msg, err := conn.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, ok, msg)
}
