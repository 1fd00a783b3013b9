// Package constants defines system-wide constants for the apikit service.
package constants

import "time"

// ================================================================================
// HTTP Header Constants
// ================================================================================

const (
	// HeaderAuthorization is the standard HTTP authorization header.
	HeaderAuthorization = "Authorization"

	// HeaderRequestID carries the per-request unique identifier.
	HeaderRequestID = "X-Request-Id"

	// HeaderWWWAuthenticate is returned on basic-auth challenges.
	HeaderWWWAuthenticate = "WWW-Authenticate"

	// BearerScheme is the Authorization scheme marker for bearer tokens.
	BearerScheme = "Bearer"

	// BasicScheme is the Authorization scheme marker for basic credentials.
	BasicScheme = "Basic"

	// BasicRealm is the realm announced on failed basic authentication.
	BasicRealm = "RESTRICTED"
)

// ================================================================================
// Context Key Constants
// ================================================================================

// ContextKey is the type used for values stored in a request context.
type ContextKey string

const (
	// ContextKeyRequestID stores the request identifier in the context.
	ContextKeyRequestID ContextKey = "request_id"
)

// ================================================================================
// Token Lifetime Constants
// ================================================================================

const (
	// AccessTokenDefaultTTL is the default lifetime for access tokens (15 minutes).
	AccessTokenDefaultTTL = 15 * time.Minute

	// RefreshTokenDefaultTTL is the default lifetime for refresh tokens (7 days).
	RefreshTokenDefaultTTL = 7 * 24 * time.Hour
)

// ================================================================================
// Metrics Constants
// ================================================================================

const (
	// MetricsPath is the Prometheus scrape endpoint; requests to it are
	// excluded from access logs and HTTP request metrics.
	MetricsPath = "/metrics"
)
