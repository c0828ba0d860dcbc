package shared

import "errors"

var (
	// ErrNotFound indicates the referenced record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a duplicate name, email, or association.
	ErrConflict = errors.New("already exists")
	// ErrValidation indicates malformed or incomplete input.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidCredentials indicates login failure. Unknown email and wrong
	// password deliberately share this value.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated indicates a missing, invalid, or expired session.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden indicates a valid session without the required role.
	ErrForbidden = errors.New("forbidden")
	// ErrRateLimited indicates too many login attempts.
	ErrRateLimited = errors.New("too many attempts")
)
