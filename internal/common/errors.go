// Package common defines shared constants, sentinel errors and small helpers
// used across the Pecunia server. Callers should use errors.Is to match the
// sentinel values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal   = errors.New("internal error")
	ErrorValidation = errors.New("validation error")

	// ErrorUnauthorized is returned for any failed credential check. The
	// message is the same for an unknown email and a wrong password.
	ErrorUnauthorized = errors.New("incorrect email or password")

	// Token errors.
	ErrInvalidToken        = errors.New("invalid token")
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// Onboarding errors.
	ErrOnboardingCompleted = errors.New("onboarding already completed")
)
