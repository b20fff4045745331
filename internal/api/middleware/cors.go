package middleware

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/webbridge/internal/infrastructure/tracing"
)

// CORSConfig selects which foreign pages may load bridge.js and manifests.
type CORSConfig struct {
	// Origins are allowed origins; "*" allows any, and an entry may carry
	// one wildcard such as "http://localhost:*".
	Origins []string
	MaxAge  time.Duration
}

// DefaultCORSConfig allows any origin.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{Origins: []string{"*"}, MaxAge: 12 * time.Hour}
}

// Bridge routes are read-only and never use cookies.
var (
	corsMethods = []string{http.MethodGet, http.MethodHead, http.MethodOptions}
	corsHeaders = []string{
		"Accept",
		"Accept-Encoding",
		"Cache-Control",
		"If-None-Match",
		"Origin",
		tracing.HeaderSpanID,
		tracing.HeaderTraceID,
	}
	corsExposed = []string{"ETag", tracing.HeaderSpanID, tracing.HeaderTraceID}
)

// CORS creates the CORS middleware for the bridge routes.
func CORS(cfg CORSConfig) gin.HandlerFunc {
	c := cors.Config{
		AllowMethods:  corsMethods,
		AllowHeaders:  corsHeaders,
		ExposeHeaders: corsExposed,
		MaxAge:        cfg.MaxAge,
	}
	if len(cfg.Origins) == 0 || slices.Contains(cfg.Origins, "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.Origins
		c.AllowWildcard = true
	}
	return cors.New(c)
}
