package model

import "errors"

var (
	// ErrInvalidEmail is returned when an email fails the address grammar check.
	ErrInvalidEmail = errors.New("invalid email")

	// ErrInvalidCredentialFormat is returned when an API key fails the shape
	// check (wrong prefix, wrong length, characters outside the alphabet).
	ErrInvalidCredentialFormat = errors.New("invalid credential format")

	// ErrUnknownCredential is returned by validation for any credential that
	// does not resolve to a registered user. Malformed and well-formed-but-
	// unknown keys surface as this same kind so responses stay constant-shape.
	ErrUnknownCredential = errors.New("unknown credential")

	// ErrUnknownPartition is returned by store operations given a user ID
	// that was never registered.
	ErrUnknownPartition = errors.New("unknown partition")

	// ErrUnauthenticated is returned when an operation runs without an
	// identity in the request context.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrStorageUnavailable wraps transient store faults; callers may retry
	// with backoff.
	ErrStorageUnavailable = errors.New("storage unavailable")

	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
)
