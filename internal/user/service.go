package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"userhub.org/internal/auth"
)

// Service implements registration, login and listing over a Store.
type Service struct {
	store      Store
	tokens     *auth.TokenManager
	bcryptCost int
}

// NewService constructs a Service. The bcrypt cost comes from configuration
// and was validated at startup.
func NewService(store Store, tokens *auth.TokenManager, bcryptCost int) *Service {
	return &Service{store: store, tokens: tokens, bcryptCost: bcryptCost}
}

// Register creates a new user. The email is normalized to lower case; an
// empty role falls back to RoleUser. The pre-check keeps the common duplicate
// path cheap, the store's unique constraint stays authoritative under races.
func (s *Service) Register(ctx context.Context, name, email, password, role string) (*User, error) {
	parsedRole, ok := ParseRole(role)
	if !ok {
		return nil, ErrInvalidRole
	}
	email = strings.TrimSpace(strings.ToLower(email))

	if _, err := s.store.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("user: lookup existing email: %w", err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("user: hash password: %w", err)
	}

	u := &User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		Role:         parsedRole,
	}
	if err := s.store.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login verifies credentials and issues a signed token. An unknown email and
// a wrong password remain distinct domain failures; both map to the same
// status code at the HTTP layer.
func (s *Service) Login(ctx context.Context, email, password string) (string, *User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	u, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil, ErrNotFound
		}
		return "", nil, fmt.Errorf("user: lookup by email: %w", err)
	}
	if err := auth.VerifyPassword(u.PasswordHash, password); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(u.ID, string(u.Role))
	if err != nil {
		return "", nil, fmt.Errorf("user: issue token: %w", err)
	}
	return token, u, nil
}

// List returns all users. With a CachedStore underneath this is the cache
// read-through path.
func (s *Service) List(ctx context.Context) ([]User, error) {
	users, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("user: list: %w", err)
	}
	if users == nil {
		users = []User{}
	}
	return users, nil
}
