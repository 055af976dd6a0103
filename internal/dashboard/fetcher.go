package dashboard

import (
	"context"

	"nathanbeddoewebdev/cfdash/internal/analytics/domain"
)

// unavailableFetcher fails every fetch with the error that prevented the
// real fetcher from being built.
type unavailableFetcher struct {
	name string
	err  error
}

// UnavailableFetcher returns a Fetcher whose every Fetch returns err. It lets
// the dashboard render its failure state (with the settings hint) when the
// provider could not be configured, e.g. because no token is stored.
func UnavailableFetcher(name string, err error) domain.Fetcher {
	return unavailableFetcher{name: name, err: err}
}

func (f unavailableFetcher) GetDisplayName() string { return f.name }

func (f unavailableFetcher) Fetch(context.Context, domain.TimeRange) (*domain.Result, error) {
	return nil, f.err
}
