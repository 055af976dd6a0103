// Package viewprefs provides a service layer for per-user dashboard view
// preferences.
package viewprefs

import (
	"nathanbeddoewebdev/cfdash/internal/analytics/domain"
	"nathanbeddoewebdev/cfdash/internal/viewprefs"
)

// Service wraps the viewprefs repository with default handling.
type Service struct {
	repo viewprefs.Repository
}

// NewService creates a new preferences service. A nil repo yields a service
// that always reports the default selection and discards writes.
func NewService(repo viewprefs.Repository) *Service {
	return &Service{repo: repo}
}

// Close releases repository resources.
func (s *Service) Close() error {
	if s.repo == nil {
		return nil
	}
	return s.repo.Close()
}

// Get returns the saved selection for userID. When nothing is saved, or the
// store cannot be read, the default (last week, pageviews) is returned. The
// error reports a read failure; the returned preference is usable either way.
func (s *Service) Get(userID string) (viewprefs.ViewPreference, error) {
	if s.repo == nil {
		return viewprefs.Default(userID), nil
	}
	pref, err := s.repo.Get(userID)
	if err != nil {
		return viewprefs.Default(userID), err
	}
	if pref == nil {
		return viewprefs.Default(userID), nil
	}
	return *pref, nil
}

// Set overwrites the saved selection for userID.
func (s *Service) Set(userID string, r domain.TimeRange, m domain.MetricKind) error {
	if s.repo == nil {
		return nil
	}
	return s.repo.Save(&viewprefs.ViewPreference{
		UserID: userID,
		Range:  r,
		Metric: m,
	})
}
