package core

import (
	"context"
	"errors"
	"time"
)

// Principal represents an authenticated identity returned to handlers.
type Principal struct {
	ID        int64
	Username  string
	Email     string
	Roles     []Role
	CreatedAt time.Time
}

// HasAnyRole reports whether the principal holds at least one of the given roles.
func (p Principal) HasAnyRole(roles ...Role) bool {
	for _, want := range roles {
		for _, have := range p.Roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

var (
	// ErrInvalidCredentials is returned when username/password is wrong.
	// The same value covers unknown users so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrDuplicateUsername is returned when a sign-up names a taken username.
	ErrDuplicateUsername = errors.New("username is already taken")
	// ErrDuplicateEmail is returned when a sign-up names a used email.
	ErrDuplicateEmail = errors.New("email is already in use")
)

// AuthService defines authentication behaviour.
type AuthService interface {
	SignIn(ctx context.Context, username, password string) (string, Principal, error)
	SignUp(ctx context.Context, username, password, email string, roleNames []string) (Principal, error)
}

func principalFromRecord(u *UserRecord) Principal {
	return Principal{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Roles:     rolesFromStrings(u.Roles),
		CreatedAt: u.CreatedAt,
	}
}
