package service

import "errors"

var (
	// ErrValidation covers bad or missing request input.
	ErrValidation = errors.New("invalid request")
	// ErrConflict is returned when the username or email is already taken.
	ErrConflict = errors.New("user with same username or email already exists")
	// ErrNotFound is returned when no user matches the given identity.
	ErrNotFound = errors.New("user not found")
	// ErrInvalidCredentials is returned on a password mismatch.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUploadFailed is returned when the required asset upload fails.
	ErrUploadFailed = errors.New("avatar upload failed")

	// ErrInvalidToken is returned for a malformed, foreign-signed or expired
	// refresh token, or one whose subject no longer resolves to a user.
	ErrInvalidToken = errors.New("invalid refresh token")
	// ErrTokenSuperseded is returned when a verifiable refresh token is no
	// longer the stored one: it was rotated away or revoked by logout.
	ErrTokenSuperseded = errors.New("refresh token is expired or used")
	// ErrTokenIssuance hides every internal cause of a failed issuance.
	ErrTokenIssuance = errors.New("something went wrong while generating access and refresh tokens")
)
