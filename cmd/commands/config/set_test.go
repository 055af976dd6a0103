package config

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"nathanbeddoewebdev/cfdash/internal/config"
)

const testZoneID = "023e105f4ecef8ad9ca31a8372d0c353"

// setupTestConfig points the config package at a temp file.
func setupTestConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	config.SetPath(path)
	t.Cleanup(config.ResetPath)
	return path
}

// execConfig creates the config command, wires up output buffers, runs with the
// given args, and returns what was written to stdout and stderr.
func execConfig(t *testing.T, args ...string) (stdout, stderr string) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	cmd := NewCommand()
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)
	_ = cmd.Execute()
	return outBuf.String(), errBuf.String()
}

func TestSet_ZoneID(t *testing.T) {
	setupTestConfig(t)

	stdout, stderr := execConfig(t, "set", "zone-id", " "+testZoneID+" ")

	if stderr != "" {
		t.Errorf("unexpected stderr: %s", stderr)
	}
	if !strings.Contains(stdout, `"`+testZoneID+`"`) {
		t.Errorf("expected confirmation with zone id, got: %s", stdout)
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.ZoneID != testZoneID {
		t.Errorf("expected ZoneID %q, got %q", testZoneID, cfg.ZoneID)
	}
}

func TestSet_CacheTimeZero(t *testing.T) {
	setupTestConfig(t)

	_, stderr := execConfig(t, "set", "cache-time", "0")
	if stderr != "" {
		t.Fatalf("unexpected stderr: %s", stderr)
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.CacheTTL() != 0 {
		t.Errorf("expected caching disabled, got TTL %v", cfg.CacheTTL())
	}
}

func TestSet_InvalidValue(t *testing.T) {
	path := setupTestConfig(t)

	_, stderr := execConfig(t, "set", "zone-id", "example.com")

	if !strings.Contains(stderr, "invalid value for zone-id") {
		t.Errorf("expected validation error, got: %s", stderr)
	}

	cfg, err := config.LoadFrom(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.ZoneID != "" {
		t.Errorf("invalid value must not be saved, got %q", cfg.ZoneID)
	}
}

func TestSet_UnknownKey(t *testing.T) {
	setupTestConfig(t)

	_, stderr := execConfig(t, "set", "bogus-key", "value")

	if !strings.Contains(stderr, "unknown configuration key") {
		t.Errorf("expected 'unknown configuration key' error, got: %s", stderr)
	}
	if !strings.Contains(stderr, "zone-id") {
		t.Errorf("expected valid keys list, got: %s", stderr)
	}
}

func TestSet_KeyIsCaseInsensitive(t *testing.T) {
	setupTestConfig(t)

	_, stderr := execConfig(t, "set", "Log-Level", "DEBUG")
	if stderr != "" {
		t.Fatalf("unexpected stderr: %s", stderr)
	}

	cfg, _ := config.Load()
	if cfg.LogLevel != "debug" {
		t.Errorf("expected log level %q, got %q", "debug", cfg.LogLevel)
	}
}
