package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"nathanbeddoewebdev/cfdash/internal/analytics/domain"

	"github.com/google/go-cmp/cmp"
)

func intPtr(v int) *int { return &v }

func TestLoad_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent", "config.json")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ZoneID != "" {
		t.Errorf("expected empty ZoneID, got %q", cfg.ZoneID)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfdash", "config.json")

	want := &Config{
		ZoneID:       "023e105f4ecef8ad9ca31a8372d0c353",
		CacheTime:    intPtr(0),
		CacheBackend: "redis",
		RedisURL:     "redis://localhost:6379/0",
		ChartColors:  []string{"#111111", "#222222"},
		Timezone:     "Pacific/Auckland",
	}
	if err := want.SaveTo(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestSave_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "deep")
	path := filepath.Join(dir, "config.json")

	cfg := &Config{ZoneID: "023e105f4ecef8ad9ca31a8372d0c353"}
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config file at %s: %v", path, err)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json}"), 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	_, err := LoadFrom(path)
	if err == nil {
		t.Fatal("expected error for invalid JSON, got nil")
	}
}

func TestPathOverride(t *testing.T) {
	t.Cleanup(ResetPath)
	path := filepath.Join(t.TempDir(), "config.json")
	SetPath(path)

	got, err := Path()
	if err != nil {
		t.Fatalf("Path error: %v", err)
	}
	if got != path {
		t.Errorf("Path = %q, want %q", got, path)
	}
}

func TestCacheTTL(t *testing.T) {
	tests := []struct {
		name string
		in   *int
		want time.Duration
	}{
		{"unset", nil, 900 * time.Second},
		{"disabled", intPtr(0), 0},
		{"negative", intPtr(-5), 0},
		{"custom", intPtr(60), time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{CacheTime: tt.in}
			if got := cfg.CacheTTL(); got != tt.want {
				t.Errorf("CacheTTL() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDefaults(t *testing.T) {
	cfg := &Config{}
	if cfg.Backend() != "file" {
		t.Errorf("Backend() = %q", cfg.Backend())
	}
	if cfg.Listen() != ":8080" {
		t.Errorf("Listen() = %q", cfg.Listen())
	}
	if cfg.User() != "admin" {
		t.Errorf("User() = %q", cfg.User())
	}
	if cfg.Level() != "info" {
		t.Errorf("Level() = %q", cfg.Level())
	}
	if cfg.Palette() != nil {
		t.Errorf("Palette() = %v, want nil", cfg.Palette())
	}
	if loc, err := cfg.Location(); err != nil || loc != time.Local {
		t.Errorf("Location() = %v, %v", loc, err)
	}
}

func TestLocation_Invalid(t *testing.T) {
	cfg := &Config{Timezone: "Mars/Olympus_Mons"}
	if _, err := cfg.Location(); err == nil {
		t.Fatal("expected error for unknown zone")
	}
}

func TestPalette_ReturnsCopy(t *testing.T) {
	cfg := &Config{ChartColors: []string{"#111111"}}
	p := cfg.Palette()
	p[0] = "#000000"
	if cfg.ChartColors[0] != "#111111" {
		t.Error("Palette() must not alias the config slice")
	}
}

func TestLabels(t *testing.T) {
	if (&Config{}).Labels() != nil {
		t.Error("expected nil labels when unset")
	}

	cfg := &Config{MetricLabels: map[string]string{"uniques": "Visitors", "threats": "Threats", "requests": ""}}
	want := map[domain.MetricKind]string{domain.MetricUniques: "Visitors"}
	if diff := cmp.Diff(want, cfg.Labels()); diff != "" {
		t.Errorf("Labels mismatch (-want +got):\n%s", diff)
	}
}
