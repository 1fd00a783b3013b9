package crypto

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/quarkgate/apikit/pkg/constants"
)

// AccessToken pairs an opaque signed token string with its expiry.
type AccessToken struct {
	Token     string
	ExpiredAt time.Time
}

// ExtractFromHeaders scans the Authorization header for a bearer token.
// The boolean is false when the header is absent, carries no Bearer marker,
// or the remainder is empty; the boundary layer must answer that with an
// authentication failure rather than proceed with an empty credential.
func ExtractFromHeaders(headers http.Header) (AccessToken, bool) {
	return ExtractFromHeader(headers.Get(constants.HeaderAuthorization))
}

// ExtractFromHeader extracts a bearer token from a raw Authorization value.
// ExpiredAt is populated by peeking the token's exp claim without signature
// verification; the authoritative expiry check still happens in Parse.
func ExtractFromHeader(header string) (AccessToken, bool) {
	_, after, found := strings.Cut(header, constants.BearerScheme)
	if !found {
		return AccessToken{}, false
	}

	token := strings.TrimSpace(after)
	if token == "" {
		return AccessToken{}, false
	}

	return AccessToken{Token: token, ExpiredAt: peekExpiry(token)}, true
}

// peekExpiry reads the exp claim without verifying the signature. A token
// that cannot be decoded leaves the zero time.
func peekExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}

	return exp.Time.UTC()
}
