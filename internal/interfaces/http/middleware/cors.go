package middleware

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CorsConfig is the cross-origin policy for the pipeline.
type CorsConfig struct {
	// AllowOrigin is a comma separated list of origins, or "*" for any.
	AllowOrigin  string
	AllowMethods []string
	AllowHeaders []string
}

// DefaultCorsConfig allows any origin with the usual REST verbs and headers.
func DefaultCorsConfig() CorsConfig {
	return CorsConfig{
		AllowOrigin:  "*",
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Authorization", "Accept", "Content-Type", "Origin"},
	}
}

// Cors builds the CORS unit. A wildcard origin, or a list that yields no
// usable origin after filtering, degrades to allow-all without credentials.
// An explicit origin list enables credential support.
func Cors(cfg CorsConfig) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowMethods: cfg.AllowMethods,
		AllowHeaders: cfg.AllowHeaders,
		MaxAge:       12 * time.Hour,
	}

	origins := splitOrigins(cfg.AllowOrigin)
	if cfg.AllowOrigin == "*" || len(origins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
		corsConfig.AllowCredentials = true
	}

	return cors.New(corsConfig)
}

// splitOrigins drops empty entries and stray wildcards from the list.
func splitOrigins(allowOrigin string) []string {
	parts := strings.Split(allowOrigin, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin == "" || origin == "*" {
			continue
		}
		origins = append(origins, origin)
	}
	return origins
}
