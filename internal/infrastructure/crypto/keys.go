package crypto

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// KeySide identifies which half of the key material an error refers to.
type KeySide string

const (
	// EncodingSide is the signing side of the key material.
	EncodingSide KeySide = "encoding"

	// DecodingSide is the verification side of the key material.
	DecodingSide KeySide = "decoding"
)

// InvalidAlgorithmError reports an unrecognized signing algorithm name.
type InvalidAlgorithmError struct {
	Name string
}

func (e *InvalidAlgorithmError) Error() string {
	return fmt.Sprintf("invalid or unsupported algorithm: %s", e.Name)
}

// KeyError reports missing or malformed key material for one side.
type KeyError struct {
	Side   KeySide
	Reason string
	cause  error
}

func (e *KeyError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s key error: %s: %v", e.Side, e.Reason, e.cause)
	}
	return fmt.Sprintf("%s key error: %s", e.Side, e.Reason)
}

func (e *KeyError) Unwrap() error {
	return e.cause
}

// keyFunc derives a signing or verification key from raw secret/PEM bytes.
type keyFunc func(raw []byte) (any, error)

// algorithmSpec binds an algorithm name to its signing method and the
// key-derivation routines for each side. Adding an algorithm means adding
// one table entry below.
type algorithmSpec struct {
	method      jwt.SigningMethod
	symmetric   bool
	encodingKey keyFunc
	decodingKey keyFunc
}

// algorithms is the closed set of supported signing algorithms.
// HMAC uses the raw shared secret for both sides; the asymmetric families
// expect PEM-encoded keys matching their family.
var algorithms = map[string]algorithmSpec{
	"HS256": {method: jwt.SigningMethodHS256, symmetric: true, encodingKey: secretKey, decodingKey: secretKey},
	"HS384": {method: jwt.SigningMethodHS384, symmetric: true, encodingKey: secretKey, decodingKey: secretKey},
	"HS512": {method: jwt.SigningMethodHS512, symmetric: true, encodingKey: secretKey, decodingKey: secretKey},
	"ES256": {method: jwt.SigningMethodES256, encodingKey: ecPrivateKey, decodingKey: ecPublicKey},
	"ES384": {method: jwt.SigningMethodES384, encodingKey: ecPrivateKey, decodingKey: ecPublicKey},
	"RS256": {method: jwt.SigningMethodRS256, encodingKey: rsaPrivateKey, decodingKey: rsaPublicKey},
	"RS384": {method: jwt.SigningMethodRS384, encodingKey: rsaPrivateKey, decodingKey: rsaPublicKey},
	"RS512": {method: jwt.SigningMethodRS512, encodingKey: rsaPrivateKey, decodingKey: rsaPublicKey},
	"PS256": {method: jwt.SigningMethodPS256, encodingKey: rsaPrivateKey, decodingKey: rsaPublicKey},
	"PS384": {method: jwt.SigningMethodPS384, encodingKey: rsaPrivateKey, decodingKey: rsaPublicKey},
	"PS512": {method: jwt.SigningMethodPS512, encodingKey: rsaPrivateKey, decodingKey: rsaPublicKey},
	"EdDSA": {method: jwt.SigningMethodEdDSA, encodingKey: edPrivateKey, decodingKey: edPublicKey},
}

// lookupAlgorithm resolves an algorithm name against the dispatch table.
func lookupAlgorithm(name string) (algorithmSpec, error) {
	spec, ok := algorithms[name]
	if !ok {
		return algorithmSpec{}, &InvalidAlgorithmError{Name: name}
	}
	return spec, nil
}

func secretKey(raw []byte) (any, error) {
	return raw, nil
}

func ecPrivateKey(raw []byte) (any, error) {
	return jwt.ParseECPrivateKeyFromPEM(raw)
}

func ecPublicKey(raw []byte) (any, error) {
	return jwt.ParseECPublicKeyFromPEM(raw)
}

func rsaPrivateKey(raw []byte) (any, error) {
	return jwt.ParseRSAPrivateKeyFromPEM(raw)
}

func rsaPublicKey(raw []byte) (any, error) {
	return jwt.ParseRSAPublicKeyFromPEM(raw)
}

func edPrivateKey(raw []byte) (any, error) {
	return jwt.ParseEdPrivateKeyFromPEM(raw)
}

func edPublicKey(raw []byte) (any, error) {
	return jwt.ParseEdPublicKeyFromPEM(raw)
}
