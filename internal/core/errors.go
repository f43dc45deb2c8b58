package core

import "errors"

// Errors returned by the account service. Storage detail is logged where it
// happens and never wrapped into them.
var (
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrRegistrationFailed = errors.New("registration failed")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidPassword    = errors.New("invalid password")
)
