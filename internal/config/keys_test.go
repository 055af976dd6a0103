package config

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLookup_Exists(t *testing.T) {
	spec := Lookup("zone-id")
	if spec == nil {
		t.Fatal("expected to find key 'zone-id', got nil")
	}
	if spec.Name != "zone-id" {
		t.Errorf("expected Name %q, got %q", "zone-id", spec.Name)
	}
}

func TestLookup_CaseInsensitive(t *testing.T) {
	spec := Lookup(" CACHE-TIME ")
	if spec == nil {
		t.Fatal("expected case-insensitive lookup to succeed")
	}
	if spec.Name != "cache-time" {
		t.Errorf("expected Name %q, got %q", "cache-time", spec.Name)
	}
}

func TestLookup_NotFound(t *testing.T) {
	spec := Lookup("nonexistent-key")
	if spec != nil {
		t.Errorf("expected nil for unknown key, got %+v", spec)
	}
}

func TestKeys_AllHaveGetAndSet(t *testing.T) {
	for _, k := range Keys {
		if k.Get == nil {
			t.Errorf("key %q has nil Get function", k.Name)
		}
		if k.Set == nil {
			t.Errorf("key %q has nil Set function", k.Name)
		}
		if k.Description == "" {
			t.Errorf("key %q has empty Description", k.Name)
		}
	}
}

// sampleValues holds a valid value for every key.
var sampleValues = map[string]string{
	"zone-id":       "023e105f4ecef8ad9ca31a8372d0c353",
	"cache-time":    "0",
	"cache-backend": "redis",
	"cache-prefix":  "site_a_",
	"redis-url":     "redis://localhost:6379/0",
	"chart-colors":  "#F68B1F,#4D4D4D",
	"metric-labels": "requests=Hits,uniques=Visitors",
	"timezone":      "Europe/Berlin",
	"listen-addr":   "127.0.0.1:9000",
	"default-user":  "editor",
	"log-level":     "debug",
}

func TestKeys_ApplyGetRoundtrip(t *testing.T) {
	for _, k := range Keys {
		value, ok := sampleValues[k.Name]
		if !ok {
			t.Errorf("key %q has no sample value", k.Name)
			continue
		}
		cfg := &Config{}
		if err := k.Apply(cfg, value); err != nil {
			t.Errorf("key %q: Apply(%q) error: %v", k.Name, value, err)
			continue
		}
		if got := k.Get(cfg); got != value {
			t.Errorf("key %q: Apply then Get = %q, want %q", k.Name, got, value)
		}
	}
}

func TestKeys_ApplyRejectsInvalid(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"zone-id", "example.com"},
		{"cache-time", "-1"},
		{"cache-time", "fifteen"},
		{"cache-backend", "memcached"},
		{"redis-url", "http://localhost:6379"},
		{"redis-url", "redis://"},
		{"chart-colors", "orange"},
		{"chart-colors", " , "},
		{"cache-prefix", "  "},
		{"cache-prefix", "site a"},
		{"metric-labels", "threats=Threats"},
		{"metric-labels", "requests"},
		{"metric-labels", "requests= "},
		{"timezone", "Mars/Olympus_Mons"},
		{"listen-addr", "8080"},
		{"log-level", "chatty"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			cfg := &Config{}
			err := Lookup(tt.key).Apply(cfg, tt.value)
			if err == nil {
				t.Fatalf("expected error for %s=%q", tt.key, tt.value)
			}
			if !strings.Contains(err.Error(), tt.key) {
				t.Errorf("error %q does not name the key", err)
			}
			if diff := cmp.Diff(&Config{}, cfg); diff != "" {
				t.Errorf("config modified on invalid value (-want +got):\n%s", diff)
			}
		})
	}
}

func TestChartColors_TrimsEntries(t *testing.T) {
	cfg := &Config{}
	if err := Lookup("chart-colors").Apply(cfg, " #111111 , #222222,"); err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if diff := cmp.Diff([]string{"#111111", "#222222"}, cfg.ChartColors); diff != "" {
		t.Errorf("colors mismatch (-want +got):\n%s", diff)
	}
}

func TestKeyNames(t *testing.T) {
	names := KeyNames()
	if len(names) != len(Keys) {
		t.Fatalf("expected %d names, got %d", len(Keys), len(names))
	}
	for i, name := range names {
		if name != Keys[i].Name {
			t.Errorf("index %d: expected %q, got %q", i, Keys[i].Name, name)
		}
	}
}

func TestKeysHelp_ContainsAllKeys(t *testing.T) {
	help := KeysHelp()
	if !strings.Contains(help, "Available keys:") {
		t.Error("expected 'Available keys:' header in help output")
	}
	for _, k := range Keys {
		if !strings.Contains(help, k.Name) {
			t.Errorf("expected key %q in help output", k.Name)
		}
		if !strings.Contains(help, k.Description) {
			t.Errorf("expected description %q in help output", k.Description)
		}
	}
}

func TestMetricLabels_NormalizesNames(t *testing.T) {
	cfg := &Config{}
	if err := Lookup("metric-labels").Apply(cfg, " Pageviews = Views , REQUESTS=Hits"); err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	want := map[string]string{"pageviews": "Views", "requests": "Hits"}
	if diff := cmp.Diff(want, cfg.MetricLabels); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
	if got := Lookup("metric-labels").Get(cfg); got != "requests=Hits,pageviews=Views" {
		t.Errorf("Get = %q", got)
	}
}
