package domain

import "context"

// Fetcher retrieves analytics for a time window from a remote provider.
// Any returned error is a fetch failure whose message is shown to the user
// as-is; implementations own their own timeout and retry policy.
type Fetcher interface {
	// GetDisplayName returns the human-readable provider name (e.g. "Cloudflare").
	GetDisplayName() string

	// Fetch returns the analytics for the window ending now.
	Fetch(ctx context.Context, r TimeRange) (*Result, error)
}
