package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware records every request against its route pattern, so
// /windows/a/ and /windows/b/ share one series. Unrouted requests are
// labelled "unmatched".
func Middleware(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordHTTPRequest(
			c.Request.Method,
			route,
			strconv.Itoa(c.Writer.Status()),
			time.Since(start),
			max(c.Request.ContentLength, 0),
			int64(max(c.Writer.Size(), 0)),
		)
	}
}

// Timer measures one binding call.
type Timer struct {
	start           time.Time
	metrics         *Metrics
	window, binding string
}

// NewTimer starts a timer. A nil metrics yields a timer that records nothing.
func NewTimer(metrics *Metrics, window, binding string) *Timer {
	return &Timer{start: time.Now(), metrics: metrics, window: window, binding: binding}
}

// Stop records the call under status and returns its duration.
func (t *Timer) Stop(status string) time.Duration {
	d := time.Since(t.start)
	if t.metrics != nil {
		t.metrics.RecordBridgeCall(t.window, t.binding, status, d)
	}
	return d
}
