package domain

import "errors"

// Caller-fixable errors. Handlers map each to a distinct machine-readable
// code; Used and Invalid reset tokens are never collapsed into one.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrPasswordTooShort   = errors.New("password too short")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailExists        = errors.New("email already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrResetTokenUsed     = errors.New("reset token already used")
	ErrResetTokenInvalid  = errors.New("reset token invalid")
)

// Internal errors. Surfaced to callers as a generic INTERNAL code; full
// detail is logged server-side only.
var (
	ErrHashFailure = errors.New("password hashing failed")
)

// MinPasswordLen is enforced before any transactional work so that a
// trivially short password never spends a database round trip.
const MinPasswordLen = 12
