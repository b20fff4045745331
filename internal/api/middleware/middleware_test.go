package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func scriptRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(mw)
	router.GET("/windows/:name/bridge.js", func(c *gin.Context) {
		c.Header("ETag", `"abc"`)
		c.String(http.StatusOK, "// bridge")
	})
	return router
}

func request(router http.Handler, method, remote string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/windows/calcWindow/bridge.js", nil)
	if remote != "" {
		req.RemoteAddr = remote
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name       string
		origins    []string
		method     string
		origin     string
		wantStatus int
		wantAllow  string
	}{
		{"any origin", []string{"*"}, http.MethodGet, "http://localhost:3000", http.StatusOK, "*"},
		{"preflight", []string{"*"}, http.MethodOptions, "http://localhost:3000", http.StatusNoContent, "*"},
		{"same origin", []string{"*"}, http.MethodGet, "", http.StatusOK, ""},
		{"listed origin", []string{"https://app.example.com"}, http.MethodGet, "https://app.example.com", http.StatusOK, "https://app.example.com"},
		{"wildcard port", []string{"http://localhost:*"}, http.MethodGet, "http://localhost:5173", http.StatusOK, "http://localhost:5173"},
		{"unlisted origin", []string{"http://localhost:*"}, http.MethodGet, "https://evil.example", http.StatusForbidden, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := scriptRouter(CORS(CORSConfig{Origins: tt.origins, MaxAge: time.Hour}))
			header := map[string]string{}
			if tt.origin != "" {
				header["Origin"] = tt.origin
			}
			if tt.method == http.MethodOptions {
				header["Access-Control-Request-Method"] = http.MethodGet
			}

			w := request(router, tt.method, "", header)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantAllow, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestCORSReadOnly(t *testing.T) {
	router := scriptRouter(CORS(DefaultCORSConfig()))

	w := request(router, http.MethodOptions, "", map[string]string{
		"Origin":                        "http://localhost:3000",
		"Access-Control-Request-Method": http.MethodGet,
	})
	methods := w.Header().Get("Access-Control-Allow-Methods")
	assert.Contains(t, methods, "GET")
	assert.NotContains(t, methods, "POST")

	w = request(router, http.MethodGet, "", map[string]string{"Origin": "http://localhost:3000"})
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "Etag")
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "X-Trace-Id")
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestRateLimit(t *testing.T) {
	router := scriptRouter(RateLimit(RateLimitConfig{RequestsPerSecond: 1, Burst: 2}))

	for i := range 2 {
		assert.Equal(t, http.StatusOK, request(router, http.MethodGet, "192.168.1.1:1234", nil).Code, "request %d within burst", i+1)
	}

	w := request(router, http.MethodGet, "192.168.1.1:1234", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"error":"rate limit exceeded"}`, w.Body.String())

	assert.Equal(t, http.StatusOK, request(router, http.MethodGet, "192.168.1.2:1234", nil).Code, "other clients keep their own bucket")
}

func TestRateLimitSkipsWebSocket(t *testing.T) {
	router := scriptRouter(RateLimit(RateLimitConfig{RequestsPerSecond: 1, Burst: 1, Skip: IsWebSocket}))

	for range 3 {
		w := request(router, http.MethodGet, "192.168.1.1:1234", map[string]string{"Upgrade": "WebSocket"})
		assert.Equal(t, http.StatusOK, w.Code)
	}
	assert.Equal(t, http.StatusOK, request(router, http.MethodGet, "192.168.1.1:1234", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, request(router, http.MethodGet, "192.168.1.1:1234", nil).Code)
}

func TestLimiterTableEvictsIdleClients(t *testing.T) {
	table := newLimiterTable(RateLimitConfig{RequestsPerSecond: 1, Burst: 1, IdleTTL: time.Minute})
	now := time.Now()

	assert.True(t, table.allow("a", now))
	assert.True(t, table.allow("b", now))
	assert.False(t, table.allow("a", now))
	assert.Equal(t, 2, table.len())

	later := now.Add(2 * time.Minute)
	assert.True(t, table.allow("a", later), "bucket refilled")
	assert.Equal(t, 1, table.len(), "b was idle past the TTL")
}

func BenchmarkRateLimit(b *testing.B) {
	router := scriptRouter(RateLimit(DefaultRateLimitConfig()))
	req := httptest.NewRequest(http.MethodGet, "/windows/calcWindow/bridge.js", nil)
	req.RemoteAddr = "192.168.1.1:1234"

	b.ResetTimer()
	for range b.N {
		router.ServeHTTP(httptest.NewRecorder(), req)
	}
}
