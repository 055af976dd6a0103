package domain

import "nathanbeddoewebdev/cfdash/internal/domain"

// Re-export shared sentinel errors so analytics callers do not need to
// import the cross-domain package directly.
var (
	ErrNotFound       = domain.ErrNotFound
	ErrUnauthorized   = domain.ErrUnauthorized
	ErrRateLimited    = domain.ErrRateLimited
	ErrUnavailable    = domain.ErrUnavailable
	ErrInvalidPayload = domain.ErrInvalidPayload
)
