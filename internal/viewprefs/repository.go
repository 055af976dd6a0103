// Package viewprefs provides persistent storage for per-user dashboard view
// preferences.
//
// Each user has at most one row holding the selected time range and metric.
// Saving always overwrites the whole row.
//
// Storage is backed by the shared SQLite database at
// ~/.config/cfdash/cfdash.db.
package viewprefs

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"nathanbeddoewebdev/cfdash/internal/analytics/domain"
	"nathanbeddoewebdev/cfdash/internal/database"
)

// Repository defines the persistence interface for view preferences.
type Repository interface {
	// Get returns the preference for userID, or nil if none is saved.
	Get(userID string) (*ViewPreference, error)

	// Save upserts the preference for pref.UserID.
	Save(pref *ViewPreference) error

	// Close releases database resources.
	Close() error
}

// SQLiteRepository implements Repository backed by a local SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

// Open creates or opens the repository at the default database path.
func Open() (*SQLiteRepository, error) {
	path, err := database.DefaultPath()
	if err != nil {
		return nil, err
	}
	return OpenAt(path)
}

// OpenAt creates or opens a SQLite database at the given path.
// The parent directory is created if it does not exist.
func OpenAt(path string) (*SQLiteRepository, error) {
	db, err := database.Open(path)
	if err != nil {
		return nil, fmt.Errorf("viewprefs: %w", err)
	}

	r := &SQLiteRepository{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return r, nil
}

// migrate creates the view_prefs table if it doesn't exist.
func (r *SQLiteRepository) migrate() error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS view_prefs (
			user_id    TEXT PRIMARY KEY,
			time_range INTEGER NOT NULL,
			metric     TEXT NOT NULL,
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		);
	`
	if _, err := r.db.Exec(ddl); err != nil {
		return fmt.Errorf("viewprefs: migration failed: %w", err)
	}
	return nil
}

// Get returns the preference for userID, or nil if not found. A stored row
// whose range or metric is no longer recognized is reported as not found.
func (r *SQLiteRepository) Get(userID string) (*ViewPreference, error) {
	row := r.db.QueryRow(`
		SELECT user_id, time_range, metric, updated_at
		FROM view_prefs WHERE user_id = ?`,
		userID)

	var (
		pref       ViewPreference
		rangeVal   int64
		metricStr  string
		updatedStr string
	)
	err := row.Scan(&pref.UserID, &rangeVal, &metricStr, &updatedStr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("viewprefs: query failed: %w", err)
	}

	pref.Range = domain.TimeRange(rangeVal)
	pref.Metric = domain.MetricKind(metricStr)
	if !pref.Range.Valid() || !pref.Metric.Valid() {
		return nil, nil
	}

	pref.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedStr)
	return &pref, nil
}

// Save upserts the preference. The range and metric must be members of
// their enumerations.
func (r *SQLiteRepository) Save(pref *ViewPreference) error {
	if pref == nil || pref.UserID == "" {
		return errors.New("viewprefs: user id is required")
	}
	if !pref.Range.Valid() {
		return fmt.Errorf("viewprefs: invalid time range %d", int(pref.Range))
	}
	if !pref.Metric.Valid() {
		return fmt.Errorf("viewprefs: invalid metric %q", string(pref.Metric))
	}

	pref.UpdatedAt = time.Now().UTC()

	_, err := r.db.Exec(`
		INSERT INTO view_prefs (user_id, time_range, metric, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			time_range = excluded.time_range,
			metric = excluded.metric,
			updated_at = excluded.updated_at`,
		pref.UserID, int(pref.Range), string(pref.Metric), pref.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("viewprefs: upsert failed: %w", err)
	}
	return nil
}

// Close releases database resources.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
