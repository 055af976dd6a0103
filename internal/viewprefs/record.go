package viewprefs

import (
	"time"

	"nathanbeddoewebdev/cfdash/internal/analytics/domain"
)

// ViewPreference is the dashboard selection saved for a single user.
type ViewPreference struct {
	UserID    string            `json:"user_id"`
	Range     domain.TimeRange  `json:"current_time"`
	Metric    domain.MetricKind `json:"current_type"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Default returns the selection used when a user has none saved.
func Default(userID string) ViewPreference {
	return ViewPreference{
		UserID: userID,
		Range:  domain.DefaultTimeRange,
		Metric: domain.DefaultMetric,
	}
}
