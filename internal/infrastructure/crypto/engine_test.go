package crypto

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

func newECKeyPair(t *testing.T, curve elliptic.Curve) (string, string) {
	t.Helper()

	key, err := ecdsa.GenerateKey(curve, rand.Reader)
	require.NoError(t, err)

	privDER, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)
	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)

	priv := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: privDER})
	pub := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})
	return string(priv), string(pub)
}

func newRSAKeyPair(t *testing.T) (string, string) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	privDER := x509.MarshalPKCS1PrivateKey(key)
	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)

	priv := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: privDER})
	pub := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})
	return string(priv), string(pub)
}

func newEdKeyPair(t *testing.T) (string, string) {
	t.Helper()

	pubKey, privKey, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	privDER, err := x509.MarshalPKCS8PrivateKey(privKey)
	require.NoError(t, err)
	pubDER, err := x509.MarshalPKIXPublicKey(pubKey)
	require.NoError(t, err)

	priv := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privDER})
	pub := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})
	return string(priv), string(pub)
}

func newClaims(expiresAt time.Time) *testClaims {
	return &testClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-42",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Role: "admin",
	}
}

func TestEngineRoundTripAllAlgorithms(t *testing.T) {
	symmetric := []string{"HS256", "HS384", "HS512"}
	for _, algo := range symmetric {
		t.Run(algo, func(t *testing.T) {
			engine, err := New(Config{Algorithm: algo, Secret: "my_very_secret_value"})
			require.NoError(t, err)

			expiresAt := time.Now().Add(10 * time.Minute)
			token, err := engine.Generate(newClaims(expiresAt), expiresAt)
			require.NoError(t, err)
			assert.NotEmpty(t, token.Token)
			assert.WithinDuration(t, expiresAt.UTC(), token.ExpiredAt, time.Second)

			parsed := &testClaims{}
			require.NoError(t, engine.Parse(token.Token, parsed))
			assert.Equal(t, "user-42", parsed.Subject)
			assert.Equal(t, "admin", parsed.Role)
		})
	}

	type asymmetricCase struct {
		algo string
		priv string
		pub  string
	}
	cases := []asymmetricCase{}

	esPriv256, esPub256 := newECKeyPair(t, elliptic.P256())
	cases = append(cases, asymmetricCase{"ES256", esPriv256, esPub256})
	esPriv384, esPub384 := newECKeyPair(t, elliptic.P384())
	cases = append(cases, asymmetricCase{"ES384", esPriv384, esPub384})

	rsaPriv, rsaPub := newRSAKeyPair(t)
	for _, algo := range []string{"RS256", "RS384", "RS512", "PS256", "PS384", "PS512"} {
		cases = append(cases, asymmetricCase{algo, rsaPriv, rsaPub})
	}

	edPriv, edPub := newEdKeyPair(t)
	cases = append(cases, asymmetricCase{"EdDSA", edPriv, edPub})

	for _, tc := range cases {
		t.Run(tc.algo, func(t *testing.T) {
			engine, err := New(Config{Algorithm: tc.algo, PrivateKey: tc.priv, PublicKey: tc.pub})
			require.NoError(t, err)

			expiresAt := time.Now().Add(10 * time.Minute)
			token, err := engine.Generate(newClaims(expiresAt), expiresAt)
			require.NoError(t, err)

			parsed := &testClaims{}
			require.NoError(t, engine.Parse(token.Token, parsed))
			assert.Equal(t, "user-42", parsed.Subject)
			assert.Equal(t, "admin", parsed.Role)
		})
	}
}

func TestEngineExpiredTokenIsDistinct(t *testing.T) {
	engine, err := New(Config{Algorithm: "HS512", Secret: "secret"})
	require.NoError(t, err)

	expiresAt := time.Now().Add(-1 * time.Minute)
	token, err := engine.Generate(newClaims(expiresAt), expiresAt)
	require.NoError(t, err)

	err = engine.Parse(token.Token, &testClaims{})
	assert.ErrorIs(t, err, ErrExpiredToken)

	// A corrupted signature is a parse error, not an expiry.
	valid := time.Now().Add(10 * time.Minute)
	good, err := engine.Generate(newClaims(valid), valid)
	require.NoError(t, err)

	err = engine.Parse(good.Token+"corrupted", &testClaims{})
	assert.NotErrorIs(t, err, ErrExpiredToken)

	var parseErr *ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestEngineRejectsForeignAlgorithm(t *testing.T) {
	hs256, err := New(Config{Algorithm: "HS256", Secret: "secret"})
	require.NoError(t, err)
	hs512, err := New(Config{Algorithm: "HS512", Secret: "secret"})
	require.NoError(t, err)

	expiresAt := time.Now().Add(time.Minute)
	token, err := hs256.Generate(newClaims(expiresAt), expiresAt)
	require.NoError(t, err)

	err = hs512.Parse(token.Token, &testClaims{})
	var parseErr *ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestEngineConfigErrors(t *testing.T) {
	t.Run("unknown algorithm", func(t *testing.T) {
		_, err := New(Config{Algorithm: "XX512", Secret: "secret"})

		var algoErr *InvalidAlgorithmError
		require.ErrorAs(t, err, &algoErr)
		assert.Equal(t, "XX512", algoErr.Name)
	})

	t.Run("symmetric without secret", func(t *testing.T) {
		_, err := New(Config{Algorithm: "HS256"})

		var keyErr *KeyError
		require.ErrorAs(t, err, &keyErr)
		assert.Equal(t, EncodingSide, keyErr.Side)
	})

	t.Run("asymmetric without any key", func(t *testing.T) {
		_, err := New(Config{Algorithm: "RS256"})

		var keyErr *KeyError
		assert.ErrorAs(t, err, &keyErr)
	})

	t.Run("asymmetric with malformed private key", func(t *testing.T) {
		_, err := New(Config{Algorithm: "ES256", PrivateKey: "not a pem"})

		var keyErr *KeyError
		require.ErrorAs(t, err, &keyErr)
		assert.Equal(t, EncodingSide, keyErr.Side)
	})

	t.Run("asymmetric with malformed public key", func(t *testing.T) {
		priv, _ := newECKeyPair(t, elliptic.P256())
		_, err := New(Config{Algorithm: "ES256", PrivateKey: priv, PublicKey: "not a pem"})

		var keyErr *KeyError
		require.ErrorAs(t, err, &keyErr)
		assert.Equal(t, DecodingSide, keyErr.Side)
	})
}

func TestEngineRoleRequiresMatchingKey(t *testing.T) {
	priv, pub := newECKeyPair(t, elliptic.P256())
	expiresAt := time.Now().Add(time.Minute)

	t.Run("issuing side only", func(t *testing.T) {
		engine, err := New(Config{Algorithm: "ES256", PrivateKey: priv})
		require.NoError(t, err)

		token, err := engine.Generate(newClaims(expiresAt), expiresAt)
		require.NoError(t, err)
		assert.NotEmpty(t, token.Token)

		err = engine.Parse(token.Token, &testClaims{})
		var keyErr *KeyError
		require.ErrorAs(t, err, &keyErr)
		assert.Equal(t, DecodingSide, keyErr.Side)
	})

	t.Run("validating side only", func(t *testing.T) {
		engine, err := New(Config{Algorithm: "ES256", PublicKey: pub})
		require.NoError(t, err)

		_, err = engine.Generate(newClaims(expiresAt), expiresAt)
		var keyErr *KeyError
		require.ErrorAs(t, err, &keyErr)
		assert.Equal(t, EncodingSide, keyErr.Side)
	})
}

func TestEngineKeyRotation(t *testing.T) {
	engine, err := New(Config{Algorithm: "HS256", Secret: "old_secret"})
	require.NoError(t, err)

	expiresAt := time.Now().Add(time.Minute)
	oldToken, err := engine.Generate(newClaims(expiresAt), expiresAt)
	require.NoError(t, err)

	require.NoError(t, engine.SetEncodingKey("new_secret"))
	require.NoError(t, engine.SetDecodingKey("new_secret"))

	// Tokens signed before the rotation no longer verify.
	err = engine.Parse(oldToken.Token, &testClaims{})
	var parseErr *ParseError
	assert.ErrorAs(t, err, &parseErr)

	newToken, err := engine.Generate(newClaims(expiresAt), expiresAt)
	require.NoError(t, err)
	assert.NoError(t, engine.Parse(newToken.Token, &testClaims{}))
}

func TestEngineLifetimeDefaults(t *testing.T) {
	engine, err := New(Config{Algorithm: "HS512", Secret: "secret"})
	require.NoError(t, err)

	assert.Equal(t, 15*time.Minute, engine.AccessLifetime())
	assert.Equal(t, 7*24*time.Hour, engine.RefreshLifetime())
	assert.Equal(t, "HS512", engine.Algorithm())

	engine.SetAccessLifetime(30 * time.Minute)
	engine.SetRefreshLifetime(48 * time.Hour)
	assert.Equal(t, 30*time.Minute, engine.AccessLifetime())
	assert.Equal(t, 48*time.Hour, engine.RefreshLifetime())
}

func TestEngineConcurrentGenerateAndParse(t *testing.T) {
	engine, err := New(Config{Algorithm: "HS256", Secret: "secret"})
	require.NoError(t, err)

	done := make(chan error, 32)
	for i := 0; i < 32; i++ {
		go func() {
			expiresAt := time.Now().Add(time.Minute)
			token, err := engine.Generate(newClaims(expiresAt), expiresAt)
			if err != nil {
				done <- err
				return
			}
			parseErr := engine.Parse(token.Token, &testClaims{})
			if parseErr != nil && !errors.Is(parseErr, ErrExpiredToken) {
				// Rotation may race a parse; a signature mismatch is the
				// only acceptable non-nil outcome here.
				var pe *ParseError
				if !errors.As(parseErr, &pe) {
					done <- parseErr
					return
				}
			}
			done <- nil
		}()
	}

	// Rotate while requests are in flight.
	require.NoError(t, engine.SetEncodingKey("secret"))
	require.NoError(t, engine.SetDecodingKey("secret"))

	for i := 0; i < 32; i++ {
		assert.NoError(t, <-done)
	}
}
