package core

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenMalformed is returned when a token does not parse into the
	// expected three-part compact form.
	ErrTokenMalformed = errors.New("malformed token")
	// ErrInvalidSignature is returned when the recomputed MAC does not match
	// the embedded signature, including tokens signed with another algorithm.
	ErrInvalidSignature = errors.New("invalid token signature")
)

// AccessClaims is the claim set carried inside issued tokens.
type AccessClaims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenCodec issues and decodes signed access tokens. The signing key and
// lifetime are fixed at construction; the same codec is shared read-only by
// the validator, so there is no hidden key state.
type TokenCodec struct {
	key      []byte
	lifetime time.Duration
}

// NewTokenCodec builds a codec from a base64-encoded HS256 secret and a token
// lifetime in milliseconds.
func NewTokenCodec(base64Secret string, lifetimeMs int) (*TokenCodec, error) {
	key, err := base64.StdEncoding.DecodeString(base64Secret)
	if err != nil {
		return nil, fmt.Errorf("jwt secret is not valid base64: %w", err)
	}
	if len(key) == 0 {
		return nil, errors.New("empty jwt secret")
	}
	if lifetimeMs <= 0 {
		return nil, errors.New("token lifetime must be positive")
	}
	return &TokenCodec{key: key, lifetime: time.Duration(lifetimeMs) * time.Millisecond}, nil
}

// Issue signs a token asserting the principal's username and numeric id.
// Expiry is always issued-at plus the configured lifetime.
func (tc *TokenCodec) Issue(p Principal) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		UserID: p.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tc.lifetime)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tc.key)
}

// DecodeClaims parses the compact form and verifies the signature over
// header+claims. Expiry is deliberately not interpreted here; that is the
// validator's call.
func (tc *TokenCodec) DecodeClaims(tokenString string) (*AccessClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	token, err := parser.ParseWithClaims(tokenString, &AccessClaims{}, func(t *jwt.Token) (interface{}, error) {
		return tc.key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return nil, ErrTokenMalformed
		}
		return nil, ErrInvalidSignature
	}
	claims, ok := token.Claims.(*AccessClaims)
	if !ok {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}
