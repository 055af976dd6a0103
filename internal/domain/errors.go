package domain

import "errors"

// Sentinel errors for classifying upstream API failures.
// Providers should wrap these so callers can handle error categories
// uniformly without knowing about the provider's wire format.
//
//	return fmt.Errorf("failed to fetch analytics: %w", domain.ErrUnauthorized)
var (
	// ErrNotFound indicates the requested resource (e.g. a zone) does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrUnauthorized indicates the request was rejected due to
	// invalid, expired, or missing credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates the provider throttled the request.
	ErrRateLimited = errors.New("rate limited")

	// ErrUnavailable indicates a transient upstream failure (5xx).
	ErrUnavailable = errors.New("service unavailable")

	// ErrInvalidPayload indicates the provider answered with a response
	// that is missing required sections.
	ErrInvalidPayload = errors.New("invalid analytics payload")
)
