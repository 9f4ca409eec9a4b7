package core

import (
	"context"
	"log"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// RepositoryAuthService implements AuthService over the user repository,
// bcrypt hashing, and the token codec. The limiter is optional; nil disables
// sign-in throttling.
type RepositoryAuthService struct {
	users   UserRepository
	codec   *TokenCodec
	limiter *LoginLimiter
}

func NewRepositoryAuthService(users UserRepository, codec *TokenCodec, limiter *LoginLimiter) *RepositoryAuthService {
	return &RepositoryAuthService{users: users, codec: codec, limiter: limiter}
}

// SignIn verifies the credentials and issues a token bound to the found
// principal. Unknown users, wrong passwords, and throttled attempts all
// surface as the same ErrInvalidCredentials.
func (s *RepositoryAuthService) SignIn(ctx context.Context, username, password string) (string, Principal, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return "", Principal{}, ErrInvalidCredentials
	}

	if s.limiter != nil {
		if err := s.limiter.Enforce(ctx, username); err != nil {
			log.Printf("sign-in throttled for %q: %v", username, err)
			return "", Principal{}, ErrInvalidCredentials
		}
	}

	u, err := s.users.FindByUsername(ctx, username)
	if err != nil || u == nil {
		return "", Principal{}, ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", Principal{}, ErrInvalidCredentials
	}

	p := principalFromRecord(u)
	token, err := s.codec.Issue(p)
	if err != nil {
		return "", Principal{}, err
	}

	if s.limiter != nil {
		_ = s.limiter.Reset(ctx, username)
	}
	return token, p, nil
}

// SignUp validates the input, rejects duplicate usernames and emails, hashes
// the password, and persists the new principal. Requested role names resolve
// against the closed vocabulary; unknown names and an absent set both default
// to the user role.
func (s *RepositoryAuthService) SignUp(ctx context.Context, username, password, email string, roleNames []string) (Principal, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if err := ValidateSignup(username, password, email); err != nil {
		return Principal{}, err
	}

	taken, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return Principal{}, err
	}
	if taken {
		return Principal{}, ErrDuplicateUsername
	}

	used, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return Principal{}, err
	}
	if used {
		return Principal{}, ErrDuplicateEmail
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Principal{}, err
	}

	roles := ResolveRoles(roleNames)
	if _, err := s.users.Create(ctx, username, email, string(hash), roleStrings(roles)); err != nil {
		return Principal{}, err
	}

	// Re-fetch so the returned principal carries the store-assigned id and
	// creation timestamp.
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return Principal{}, err
	}
	return principalFromRecord(u), nil
}
