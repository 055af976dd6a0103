// Package cache provides TTL caching of analytics results.
//
// Entries are stored through a Backend (JSON files under the user cache
// directory by default, or Redis). AnalyticsCache layers key naming and
// result encoding on top.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Backend stores opaque values with an expiry.
type Backend interface {
	// Get returns the stored value and true, or false if the key is absent
	// or expired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key for ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes every key starting with prefix.
	Clear(ctx context.Context, prefix string) error
}

// fileEntry is the on-disk format of a single cached value.
type fileEntry struct {
	ExpiresAt time.Time       `json:"expires_at"`
	Data      json.RawMessage `json:"data"`
}

// FileBackend is a Backend storing one JSON file per key. Values must be
// JSON documents; they are embedded in the entry as-is.
type FileBackend struct {
	dir string
	now func() time.Time
}

// Compile-time check that FileBackend satisfies Backend.
var _ Backend = (*FileBackend)(nil)

// NewFileBackend returns a backend rooted at dir.
func NewFileBackend(dir string) *FileBackend {
	return &FileBackend{dir: dir, now: time.Now}
}

// NewDefaultFileBackend returns a backend rooted at the OS user cache dir.
func NewDefaultFileBackend() *FileBackend {
	return NewFileBackend(DefaultDir())
}

// WithClock replaces the time source. Intended for testing.
func (c *FileBackend) WithClock(now func() time.Time) *FileBackend {
	c.now = now
	return c
}

// Get returns the value for key if present and not expired. Expired and
// corrupt entries are removed and reported as a miss.
func (c *FileBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	if c == nil || c.dir == "" {
		return nil, false, nil
	}

	path := c.pathForKey(key)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var entry fileEntry
	if err := json.Unmarshal(data, &entry); err != nil || entry.ExpiresAt.IsZero() {
		_ = os.Remove(path)
		return nil, false, nil
	}

	if !c.now().Before(entry.ExpiresAt) {
		_ = os.Remove(path)
		return nil, false, nil
	}

	return entry.Data, true, nil
}

// Set writes value under key atomically. A non-positive ttl stores nothing.
func (c *FileBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if c == nil || c.dir == "" || ttl <= 0 {
		return nil
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}

	payload, err := json.Marshal(fileEntry{ExpiresAt: c.now().Add(ttl), Data: value})
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(c.dir, sanitizeKey(key)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}

	return os.Rename(tmpName, c.pathForKey(key))
}

// Delete removes a single cached entry.
func (c *FileBackend) Delete(_ context.Context, key string) error {
	if c == nil || c.dir == "" {
		return nil
	}

	err := os.Remove(c.pathForKey(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Clear removes cached entries whose key starts with prefix.
func (c *FileBackend) Clear(_ context.Context, prefix string) error {
	if c == nil || c.dir == "" {
		return nil
	}

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	sanitized := sanitizeKey(prefix)
	for _, entry := range entries {
		name := entry.Name()
		if prefix != "" && !strings.HasPrefix(name, sanitized) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(c.dir, name)); err != nil {
			return err
		}
	}

	return nil
}

func (c *FileBackend) pathForKey(key string) string {
	return filepath.Join(c.dir, sanitizeKey(key)+".json")
}

// DefaultDir returns the directory used by NewDefaultFileBackend.
func DefaultDir() string {
	base, err := os.UserCacheDir()
	if err != nil || base == "" {
		base = os.TempDir()
	}
	return filepath.Join(base, "cfdash")
}

// sanitizeKey maps key onto a safe file name. Distinct analytics keys stay
// distinct because they only contain [a-z0-9_-].
func sanitizeKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return "cache"
	}

	var b strings.Builder
	b.Grow(len(key))
	for i := 0; i < len(key); i++ {
		ch := key[i]
		if (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') || ch == '-' || ch == '_' {
			b.WriteByte(ch)
			continue
		}
		b.WriteByte('_')
	}
	return b.String()
}
