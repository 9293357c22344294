package user

import "errors"

var (
	// ErrNotFound indicates no user matches the lookup.
	ErrNotFound = errors.New("user: not found")

	// ErrEmailTaken indicates the email address is already registered. The
	// store-level unique constraint surfaces as this domain conflict, never
	// as a crash.
	ErrEmailTaken = errors.New("user: email already registered")

	// ErrInvalidCredentials indicates a failed password check on login.
	ErrInvalidCredentials = errors.New("user: invalid credentials")

	// ErrInvalidRole indicates an unknown role value was supplied.
	ErrInvalidRole = errors.New("user: invalid role")
)
