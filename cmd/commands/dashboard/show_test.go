package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"nathanbeddoewebdev/cfdash/internal/analytics/domain"
	"nathanbeddoewebdev/cfdash/internal/analytics/providers"
	"nathanbeddoewebdev/cfdash/internal/app"
	"nathanbeddoewebdev/cfdash/internal/cache"
	"nathanbeddoewebdev/cfdash/internal/config"
	"nathanbeddoewebdev/cfdash/internal/services/auth"

	"github.com/spf13/cobra"
)

type stubFetcher struct {
	err error
}

func (s stubFetcher) GetDisplayName() string { return "Cloudflare" }

func (s stubFetcher) Fetch(_ context.Context, r domain.TimeRange) (*domain.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	since := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	return &domain.Result{
		Totals: domain.Totals{
			Requests: domain.RequestTotals{
				Counter:     domain.Counter{All: 300, Cached: 200, Uncached: 100},
				SSL:         domain.SSLCounts{Encrypted: 250, Unencrypted: 50},
				ContentType: domain.Counts{{Key: "html", Value: 100}, {Key: "css", Value: 200}},
				Country:     domain.Counts{{Key: "NZ", Value: 300}},
			},
			Bandwidth: domain.Counter{All: 2048, Cached: 1024, Uncached: 1024},
			Pageviews: domain.Counter{All: 12},
			Uniques:   domain.Counter{All: 4},
		},
		Timeseries: []domain.Interval{
			{Since: since, Bandwidth: domain.Counter{All: 1024, Cached: 512, Uncached: 512}, Pageviews: domain.Counter{All: 5}},
			{Since: since.Add(24 * time.Hour), Bandwidth: domain.Counter{All: 1024, Cached: 512, Uncached: 512}, Pageviews: domain.Counter{All: 7}},
		},
	}, nil
}

// setupShow points config at a temp file and wires the dashboard with f.
func setupShow(t *testing.T, f domain.Fetcher) {
	t.Helper()
	config.SetPath(filepath.Join(t.TempDir(), "config.json"))
	t.Cleanup(config.ResetPath)
	if err := (&config.Config{Timezone: "UTC"}).Save(); err != nil {
		t.Fatalf("save config: %v", err)
	}

	providers.Reset()
	t.Cleanup(providers.Reset)
	providers.Register(app.ProviderName, func(auth.Store, string) (domain.Fetcher, error) { return f, nil })

	prefsPath := filepath.Join(t.TempDir(), "prefs.db")
	cacheDir := t.TempDir()
	orig := openApp
	openApp = func(ctx context.Context, cmd *cobra.Command, cfg *config.Config) (*app.App, error) {
		return app.Open(ctx, cfg, app.Options{
			Store:     auth.NewMockStore(),
			LogOutput: cmd.ErrOrStderr(),
			PrefsPath: prefsPath,
			Backend:   cache.NewFileBackend(cacheDir),
		})
	}
	t.Cleanup(func() { openApp = orig })
}

func execDashboard(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	cmd := NewCommand()
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return outBuf.String(), errBuf.String(), err
}

func TestShow_JSON(t *testing.T) {
	setupShow(t, stubFetcher{})

	stdout, _, err := execDashboard(t, "show", "-o", "json", "--range", "week", "--metric", "bandwidth")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got struct {
		CurrentTime string `json:"current_time"`
		CurrentType string `json:"current_type"`
		Cached      bool   `json:"cached"`
		Charts      struct {
			Interval struct {
				Labels []string `json:"labels"`
			} `json:"interval"`
		} `json:"charts"`
	}
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, stdout)
	}
	if got.CurrentTime != "-10080" || got.CurrentType != "bandwidth" {
		t.Errorf("view = %s/%s", got.CurrentTime, got.CurrentType)
	}
	if got.Cached {
		t.Error("first render must not be cached")
	}
}

func TestShow_RemembersView(t *testing.T) {
	setupShow(t, stubFetcher{})

	if _, _, err := execDashboard(t, "show", "-o", "json", "--user", "bob", "--range", "-1440", "--metric", "uniques"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stdout, _, err := execDashboard(t, "show", "-o", "table", "--user", "bob")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "Unique Visitors, Last 24 hours (cached)") {
		t.Errorf("expected remembered view served from cache, got:\n%s", stdout)
	}
}

func TestShow_Table(t *testing.T) {
	setupShow(t, stubFetcher{})

	stdout, _, err := execDashboard(t, "show", "-o", "table", "--metric", "bandwidth")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{
		"Pageviews:", "12",
		"Bandwidth:", "2 KB",
		"250 encrypted, 50 unencrypted",
		"CONTENT TYPE", "css",
		"COUNTRY", "NZ",
		"INTERVAL", "BANDWIDTH", "CACHED", "UNCACHED",
		"6/30", "1 KB",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected %q in output:\n%s", want, stdout)
		}
	}
	// css outranks html.
	if strings.Index(stdout, "css") > strings.Index(stdout, "html") {
		t.Errorf("content types not sorted by value:\n%s", stdout)
	}
}

func TestShow_Chart(t *testing.T) {
	setupShow(t, stubFetcher{})

	stdout, _, err := execDashboard(t, "show", "-o", "chart")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "Pageviews, Last week") {
		t.Errorf("expected default view in header:\n%s", stdout)
	}
}

func TestShow_FetchFailure(t *testing.T) {
	setupShow(t, stubFetcher{err: domain.ErrUnauthorized})

	stdout, _, err := execDashboard(t, "show", "-o", "table")
	if err == nil {
		t.Fatal("expected error for failed fetch")
	}
	if !strings.Contains(err.Error(), "unable to connect to Cloudflare") {
		t.Errorf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "Unable to connect to Cloudflare") || !strings.Contains(stdout, "cfdash auth login") {
		t.Errorf("expected failure and settings hint, got:\n%s", stdout)
	}
}

func TestShow_InvalidFlags(t *testing.T) {
	setupShow(t, stubFetcher{})

	tests := [][]string{
		{"show", "--range", "-30"},
		{"show", "--metric", "threats"},
		{"show", "-o", "yaml"},
	}
	for _, args := range tests {
		if _, _, err := execDashboard(t, args...); err == nil {
			t.Errorf("%v: expected error", args)
		}
	}
}

func TestShow_UserFlagOverridesDefaultUser(t *testing.T) {
	setupShow(t, stubFetcher{})
	if err := (&config.Config{Timezone: "UTC", DefaultUser: "carol"}).Save(); err != nil {
		t.Fatalf("save config: %v", err)
	}

	stdout, _, err := execDashboard(t, "show", "-o", "json", "--user", "bob", "--metric", "uniques")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got struct {
		UserID string `json:"user_id"`
	}
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.UserID != "bob" {
		t.Errorf("user_id = %q, want bob", got.UserID)
	}

	// carol's view is untouched by bob's override.
	stdout, _, err = execDashboard(t, "show", "-o", "table")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "Pageviews, Last week") {
		t.Errorf("default user picked up the override's view:\n%s", stdout)
	}
}

func TestShow_ConfiguredMetricLabels(t *testing.T) {
	setupShow(t, stubFetcher{})
	cfg := &config.Config{Timezone: "UTC", MetricLabels: map[string]string{"bandwidth": "Traffic"}}
	if err := cfg.Save(); err != nil {
		t.Fatalf("save config: %v", err)
	}

	stdout, _, err := execDashboard(t, "show", "-o", "json", "--metric", "bandwidth")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got struct {
		MetricOptions []struct {
			Value string `json:"value"`
			Label string `json:"label"`
		} `json:"metric_options"`
		Charts struct {
			Interval struct {
				Datasets []struct {
					Label string `json:"label"`
				} `json:"datasets"`
			} `json:"interval"`
		} `json:"charts"`
	}
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(got.Charts.Interval.Datasets) == 0 || got.Charts.Interval.Datasets[0].Label != "Traffic" {
		t.Errorf("datasets = %+v, want first label Traffic", got.Charts.Interval.Datasets)
	}
	found := false
	for _, o := range got.MetricOptions {
		if o.Value == "bandwidth" {
			found = o.Label == "Traffic"
		}
	}
	if !found {
		t.Errorf("metric options = %+v, want bandwidth labelled Traffic", got.MetricOptions)
	}
}

func TestServe_LogsListeningOnce(t *testing.T) {
	setupShow(t, stubFetcher{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var outBuf, errBuf bytes.Buffer
	cmd := NewCommand()
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs([]string{"serve", "--listen", "127.0.0.1:0"})
	if err := cmd.ExecuteContext(ctx); err != nil {
		t.Fatalf("serve: %v", err)
	}

	if n := strings.Count(errBuf.String(), "dashboard server listening"); n != 1 {
		t.Errorf("listening logged %d times, want 1:\n%s", n, errBuf.String())
	}
}
