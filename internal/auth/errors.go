package auth

import "errors"

var (
	// ErrInvalidToken indicates the token failed validation. Expired, tampered
	// and malformed tokens are deliberately indistinguishable.
	ErrInvalidToken = errors.New("auth: invalid token")

	// ErrUnauthenticated indicates no valid identity was presented.
	ErrUnauthenticated = errors.New("auth: unauthenticated")

	// ErrUnauthorized indicates a valid identity without the required role.
	ErrUnauthorized = errors.New("auth: unauthorized")
)
