// Package common defines shared constants and sentinel errors used across
// the status server and the publisher. Callers should use errors.Is to
// match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Validation errors (bad segment, oversized field).
	ErrorValidation     = errors.New("validation error")
	ErrorInvalidSegment = fmt.Errorf("%w: unknown segment", ErrorValidation)

	// Repository-level errors.
	ErrorStorage = errors.New("storage error")

	// Startup configuration errors.
	ErrorMissingSecret = errors.New("secret is not configured")
)
