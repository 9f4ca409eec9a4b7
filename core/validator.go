package core

import "time"

// TokenValidator checks decoded tokens for integrity, subject binding, and
// expiry. Validity requires all three; there is no partial-trust mode.
type TokenValidator struct {
	codec *TokenCodec
}

func NewTokenValidator(codec *TokenCodec) *TokenValidator {
	return &TokenValidator{codec: codec}
}

// IsValid reports whether tokenString verifies against the process key, names
// expectedSubject, and has not expired. Decode failures fail closed.
func (v *TokenValidator) IsValid(tokenString, expectedSubject string) bool {
	claims, err := v.codec.DecodeClaims(tokenString)
	if err != nil {
		return false
	}
	if claims.Subject != expectedSubject {
		return false
	}
	return claims.ExpiresAt != nil && claims.ExpiresAt.After(time.Now())
}

// ExtractSubject decodes the token and returns its subject claim, propagating
// decode failures.
func (v *TokenValidator) ExtractSubject(tokenString string) (string, error) {
	claims, err := v.codec.DecodeClaims(tokenString)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}
