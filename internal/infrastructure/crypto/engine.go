// Package crypto implements the JWT token engine: key material management,
// token signing, parsing and strict expiry enforcement.
package crypto

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/quarkgate/apikit/pkg/constants"
)

// ErrExpiredToken reports a well-formed token whose embedded expiry has
// elapsed. Callers distinguish it from ParseError to trigger refresh flows
// instead of hard rejections.
var ErrExpiredToken = errors.New("expired token")

// ParseError reports a malformed token or an invalid signature.
type ParseError struct {
	cause error
}

func (e *ParseError) Error() string {
	return "parse token error: " + e.cause.Error()
}

func (e *ParseError) Unwrap() error {
	return e.cause
}

// Config carries the engine construction parameters. Symmetric algorithms
// require Secret; asymmetric algorithms take PEM-encoded PrivateKey for
// issuing and/or PublicKey for validating.
type Config struct {
	Algorithm       string
	AccessLifetime  time.Duration
	RefreshLifetime time.Duration
	Secret          string
	PrivateKey      string
	PublicKey       string
}

// Engine issues and validates signed tokens for a single fixed algorithm.
// It is safe for concurrent use: Generate and Parse take read snapshots of
// the key material, and key rotation swaps keys under the write lock.
type Engine struct {
	algorithm string
	spec      algorithmSpec

	mu              sync.RWMutex
	accessLifetime  time.Duration
	refreshLifetime time.Duration
	encodingKey     any
	decodingKey     any
}

// New constructs an Engine from configuration. All failures here are
// configuration errors, fatal at startup.
func New(cfg Config) (*Engine, error) {
	spec, err := lookupAlgorithm(cfg.Algorithm)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		algorithm:       cfg.Algorithm,
		spec:            spec,
		accessLifetime:  cfg.AccessLifetime,
		refreshLifetime: cfg.RefreshLifetime,
	}
	if e.accessLifetime <= 0 {
		e.accessLifetime = constants.AccessTokenDefaultTTL
	}
	if e.refreshLifetime <= 0 {
		e.refreshLifetime = constants.RefreshTokenDefaultTTL
	}

	if spec.symmetric {
		secret := strings.TrimSpace(cfg.Secret)
		if secret == "" {
			return nil, &KeyError{Side: EncodingSide, Reason: "missing shared secret"}
		}
		if err := e.SetEncodingKey(secret); err != nil {
			return nil, err
		}
		if err := e.SetDecodingKey(secret); err != nil {
			return nil, err
		}
		return e, nil
	}

	if cfg.PrivateKey == "" && cfg.PublicKey == "" {
		return nil, &KeyError{Side: EncodingSide, Reason: "no key material: supply a private key for issuing or a public key for validating"}
	}
	if cfg.PrivateKey != "" {
		if err := e.SetEncodingKey(strings.TrimSpace(cfg.PrivateKey)); err != nil {
			return nil, err
		}
	}
	if cfg.PublicKey != "" {
		if err := e.SetDecodingKey(strings.TrimSpace(cfg.PublicKey)); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// Algorithm returns the fixed signing algorithm name.
func (e *Engine) Algorithm() string {
	return e.algorithm
}

// AccessLifetime returns the configured access token lifetime.
func (e *Engine) AccessLifetime() time.Duration {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.accessLifetime
}

// RefreshLifetime returns the configured refresh token lifetime.
func (e *Engine) RefreshLifetime() time.Duration {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.refreshLifetime
}

// SetAccessLifetime updates the access token lifetime.
func (e *Engine) SetAccessLifetime(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.accessLifetime = d
}

// SetRefreshLifetime updates the refresh token lifetime.
func (e *Engine) SetRefreshLifetime(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.refreshLifetime = d
}

// SetEncodingKey replaces the signing key, re-deriving it from the raw
// secret or PEM bytes with the algorithm's key-shape mapping. The algorithm
// itself never changes.
func (e *Engine) SetEncodingKey(raw string) error {
	key, err := e.spec.encodingKey([]byte(raw))
	if err != nil {
		return &KeyError{Side: EncodingSide, Reason: "invalid key material", cause: err}
	}

	e.mu.Lock()
	e.encodingKey = key
	e.mu.Unlock()
	return nil
}

// SetDecodingKey replaces the verification key. See SetEncodingKey.
func (e *Engine) SetDecodingKey(raw string) error {
	key, err := e.spec.decodingKey([]byte(raw))
	if err != nil {
		return &KeyError{Side: DecodingSide, Reason: "invalid key material", cause: err}
	}

	e.mu.Lock()
	e.decodingKey = key
	e.mu.Unlock()
	return nil
}

// Generate signs the caller-supplied claims and returns the token string
// paired with expiresAt. The expiry returned here is informational; the
// authoritative expiry lives in the signed exp claim, which the caller is
// responsible for embedding.
func (e *Engine) Generate(claims jwt.Claims, expiresAt time.Time) (AccessToken, error) {
	e.mu.RLock()
	key := e.encodingKey
	e.mu.RUnlock()

	if key == nil {
		return AccessToken{}, &KeyError{Side: EncodingSide, Reason: "empty key"}
	}

	signed, err := jwt.NewWithClaims(e.spec.method, claims).SignedString(key)
	if err != nil {
		return AccessToken{}, &KeyError{Side: EncodingSide, Reason: "signing failed", cause: err}
	}

	return AccessToken{Token: signed, ExpiredAt: expiresAt.UTC()}, nil
}

// Parse verifies tokenString against the decoding key and unmarshals the
// payload into claims. An expired signature surfaces as ErrExpiredToken;
// every other verification failure is a ParseError.
func (e *Engine) Parse(tokenString string, claims jwt.Claims) error {
	e.mu.RLock()
	key := e.decodingKey
	e.mu.RUnlock()

	if key == nil {
		return &KeyError{Side: DecodingSide, Reason: "empty key"}
	}

	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return key, nil },
		jwt.WithValidMethods([]string{e.algorithm}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrExpiredToken
		}
		return &ParseError{cause: err}
	}

	return nil
}
