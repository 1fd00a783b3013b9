package middleware

import "github.com/gin-gonic/gin"

// SecurityHeadersConfig holds the values for the standard security response
// headers. Empty fields fall back to the defaults.
type SecurityHeadersConfig struct {
	ContentSecurityPolicy   string
	StrictTransportSecurity string
	XContentTypeOptions     string
	XFrameOptions           string
	XXSSProtection          string
	ReferrerPolicy          string
	PermissionsPolicy       string
}

// DefaultSecurityHeadersConfig returns the restrictive defaults.
func DefaultSecurityHeadersConfig() SecurityHeadersConfig {
	return SecurityHeadersConfig{
		ContentSecurityPolicy:   "default-src 'self';",
		StrictTransportSecurity: "max-age=31536000; includeSubDomains; preload",
		XContentTypeOptions:     "nosniff",
		XFrameOptions:           "DENY",
		XXSSProtection:          "1; mode=block",
		ReferrerPolicy:          "no-referrer",
		PermissionsPolicy:       "geolocation=(self), microphone=(), camera=()",
	}
}

func (cfg SecurityHeadersConfig) withDefaults() SecurityHeadersConfig {
	defaults := DefaultSecurityHeadersConfig()
	if cfg.ContentSecurityPolicy == "" {
		cfg.ContentSecurityPolicy = defaults.ContentSecurityPolicy
	}
	if cfg.StrictTransportSecurity == "" {
		cfg.StrictTransportSecurity = defaults.StrictTransportSecurity
	}
	if cfg.XContentTypeOptions == "" {
		cfg.XContentTypeOptions = defaults.XContentTypeOptions
	}
	if cfg.XFrameOptions == "" {
		cfg.XFrameOptions = defaults.XFrameOptions
	}
	if cfg.XXSSProtection == "" {
		cfg.XXSSProtection = defaults.XXSSProtection
	}
	if cfg.ReferrerPolicy == "" {
		cfg.ReferrerPolicy = defaults.ReferrerPolicy
	}
	if cfg.PermissionsPolicy == "" {
		cfg.PermissionsPolicy = defaults.PermissionsPolicy
	}
	return cfg
}

// SecurityHeaders stamps the configured security headers on every response.
// The configured values always win; anything a handler set under the same
// name is overwritten.
func SecurityHeaders(cfg SecurityHeadersConfig) gin.HandlerFunc {
	cfg = cfg.withDefaults()

	apply := func(c *gin.Context) {
		header := c.Writer.Header()
		header.Set("Content-Security-Policy", cfg.ContentSecurityPolicy)
		header.Set("Strict-Transport-Security", cfg.StrictTransportSecurity)
		header.Set("X-Content-Type-Options", cfg.XContentTypeOptions)
		header.Set("X-Frame-Options", cfg.XFrameOptions)
		header.Set("X-XSS-Protection", cfg.XXSSProtection)
		header.Set("Referrer-Policy", cfg.ReferrerPolicy)
		header.Set("Permissions-Policy", cfg.PermissionsPolicy)
	}

	return func(c *gin.Context) {
		apply(c)
		c.Next()
		// Handlers may have replaced a header after the fact; the
		// configured values always win.
		apply(c)
	}
}
