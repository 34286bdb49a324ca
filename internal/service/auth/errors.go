package auth

import "errors"

// Common authentication service errors.
var (
	// ErrInvalidToken indicates the token is malformed or its signature
	// doesn't match.
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken indicates the token has expired.
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrAuthRequired indicates an operation needed an authenticated
	// caller and the request carried no usable credentials.
	ErrAuthRequired = errors.New("authorization required")
)
