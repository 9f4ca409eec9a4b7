package core

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode"
)

// ErrValidation wraps sign-up input failures reported back as 400s.
var ErrValidation = errors.New("validation failed")

const passwordSpecials = "@#$%^&+=!*()"

// ValidateSignup enforces the sign-up input rules: username length, email
// shape, and password strength.
func ValidateSignup(username, password, email string) error {
	if l := len(username); l < 3 || l > 20 {
		return fmt.Errorf("%w: username must be from 3 to 20 characters", ErrValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil || email != strings.TrimSpace(email) {
		return fmt.Errorf("%w: email is not valid", ErrValidation)
	}
	if !isStrongPassword(password) {
		return fmt.Errorf("%w: password must be at least 8 characters with a digit, a lowercase letter, an uppercase letter, and a special character", ErrValidation)
	}
	return nil
}

// isStrongPassword requires at least 8 characters containing a digit, a
// lowercase letter, an uppercase letter, and one of passwordSpecials.
func isStrongPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var digit, lower, upper, special bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}
	return digit && lower && upper && special
}
