package user

import "context"

// Store describes persistence operations required by the user subsystem.
type Store interface {
	// Create persists a new user and fills in ID and CreatedAt. A duplicate
	// email returns ErrEmailTaken.
	Create(ctx context.Context, u *User) error

	// FindByEmail returns the user with the given (lowercased) email or
	// ErrNotFound.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// List returns all users ordered by creation time.
	List(ctx context.Context) ([]User, error)
}
