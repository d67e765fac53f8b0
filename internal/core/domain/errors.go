package domain

import "errors"

// Failure taxonomy for the identity core. Every operation surfaces one of
// these sentinels (or a wrapped infrastructure error for storage failures);
// the HTTP layer owns the mapping to status codes.
var (
	ErrNotFound            = errors.New("account not found")
	ErrAccountLocked       = errors.New("account locked")
	ErrAccountDisabled     = errors.New("account not activated")
	ErrCredentialsExpired  = errors.New("password expired")
	ErrBadCredentials      = errors.New("invalid credentials")
	ErrPasswordMismatch    = errors.New("passwords do not match")
	ErrReusedPassword      = errors.New("new password matches the current one")
	ErrTokenInvalid        = errors.New("token invalid")
	ErrTokenExpired        = errors.New("token expired")
	ErrTokenAlreadyRevoked = errors.New("token already logged out")
	ErrActivationExpired   = errors.New("activation token expired")
	ErrEmailExists         = errors.New("email already registered")
	ErrAlreadyActivated    = errors.New("account already activated")
	ErrInvalidAuthority    = errors.New("unknown authority")
)
