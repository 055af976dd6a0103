package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nathanbeddoewebdev/cfdash/internal/analytics/domain"
	"nathanbeddoewebdev/cfdash/internal/retry"
	"nathanbeddoewebdev/cfdash/internal/services/auth"

	"github.com/google/go-cmp/cmp"
)

// --- Test helpers ---

const testZoneID = "023e105f4ecef8ad9ca31a8372d0c353"

// newTestCloudflareFetcher creates a CloudflareFetcher pointed at the given
// test server, retrying without delay.
func newTestCloudflareFetcher(t *testing.T, serverURL string) *CloudflareFetcher {
	t.Helper()
	f := NewCloudflareFetcher("test-token", testZoneID)
	f.baseURL = serverURL
	f.retry = retry.Config{MaxAttempts: 3}
	return f
}

// cfSuccessEnvelope returns a Cloudflare success envelope wrapping the given result.
func cfSuccessEnvelope(result any) map[string]any {
	return map[string]any{
		"success":  true,
		"errors":   []any{},
		"messages": []any{},
		"result":   result,
	}
}

// cfErrorEnvelope returns a Cloudflare error envelope.
func cfErrorEnvelope(code int, message string) map[string]any {
	return map[string]any{
		"success":  false,
		"errors":   []any{map[string]any{"code": code, "message": message}},
		"messages": []any{},
		"result":   nil,
	}
}

// testDashboardJSON is a trimmed analytics dashboard payload. Content types
// are written out of value order to exercise order preservation.
const testDashboardJSON = `{
	"totals": {
		"since": "2026-06-30T00:00:00Z",
		"until": "2026-07-07T00:00:00Z",
		"requests": {
			"all": 1234, "cached": 1000, "uncached": 234,
			"content_type": {"html": 50, "css": 80, "js": 50},
			"country": {"US": 900, "NZ": 334},
			"ssl": {"encrypted": 1200, "unencrypted": 34},
			"http_status": {"200": 1200}
		},
		"bandwidth": {"all": 4096, "cached": 3072, "uncached": 1024},
		"threats": {"all": 0},
		"pageviews": {"all": 321, "search_engine": {}},
		"uniques": {"all": 77}
	},
	"timeseries": [
		{
			"since": "2026-06-30T00:00:00Z",
			"until": "2026-07-01T00:00:00Z",
			"requests": {"all": 100, "cached": 60, "uncached": 40, "content_type": {}, "country": []},
			"bandwidth": {"all": 10, "cached": 6, "uncached": 4},
			"pageviews": {"all": 20},
			"uniques": {"all": 5}
		}
	]
}`

func writeEnvelope(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func dashboardHandler(t *testing.T) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, cfSuccessEnvelope(json.RawMessage(testDashboardJSON)))
	}
}

// --- Fetch tests ---

func TestCloudflare_Fetch_HappyPath(t *testing.T) {
	var gotPath, gotSince, gotContinuous, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotSince = r.URL.Query().Get("since")
		gotContinuous = r.URL.Query().Get("continuous")
		gotAuth = r.Header.Get("Authorization")
		dashboardHandler(t)(w, r)
	}))
	t.Cleanup(srv.Close)

	f := newTestCloudflareFetcher(t, srv.URL)
	result, err := f.Fetch(context.Background(), domain.RangeLastWeek)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if gotPath != "/zones/"+testZoneID+"/analytics/dashboard" {
		t.Errorf("path = %q", gotPath)
	}
	if gotSince != "-10080" {
		t.Errorf("since = %q, want -10080", gotSince)
	}
	if gotContinuous != "true" {
		t.Errorf("continuous = %q, want true", gotContinuous)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("Authorization = %q", gotAuth)
	}

	since := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	want := &domain.Result{
		Totals: domain.Totals{
			Since: since,
			Until: since.Add(7 * 24 * time.Hour),
			Requests: domain.RequestTotals{
				Counter:     domain.Counter{All: 1234, Cached: 1000, Uncached: 234},
				SSL:         domain.SSLCounts{Encrypted: 1200, Unencrypted: 34},
				ContentType: domain.Counts{{Key: "html", Value: 50}, {Key: "css", Value: 80}, {Key: "js", Value: 50}},
				Country:     domain.Counts{{Key: "US", Value: 900}, {Key: "NZ", Value: 334}},
			},
			Bandwidth: domain.Counter{All: 4096, Cached: 3072, Uncached: 1024},
			Pageviews: domain.Counter{All: 321},
			Uniques:   domain.Counter{All: 77},
		},
		Timeseries: []domain.Interval{
			{
				Since:     since,
				Until:     since.Add(24 * time.Hour),
				Requests:  domain.Counter{All: 100, Cached: 60, Uncached: 40},
				Bandwidth: domain.Counter{All: 10, Cached: 6, Uncached: 4},
				Pageviews: domain.Counter{All: 20},
				Uniques:   domain.Counter{All: 5},
			},
		},
	}
	if diff := cmp.Diff(want, result); diff != "" {
		t.Errorf("Fetch mismatch (-want +got):\n%s", diff)
	}
}

func TestCloudflare_Fetch_EmptyBreakdowns(t *testing.T) {
	payload := `{
		"totals": {"requests": {"all": 0, "content_type": [], "country": null}, "bandwidth": {"all": 0}},
		"timeseries": []
	}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, cfSuccessEnvelope(json.RawMessage(payload)))
	}))
	t.Cleanup(srv.Close)

	result, err := newTestCloudflareFetcher(t, srv.URL).Fetch(context.Background(), domain.RangeLast24Hours)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Totals.Requests.ContentType == nil || len(result.Totals.Requests.ContentType) != 0 {
		t.Errorf("expected empty content types, got %#v", result.Totals.Requests.ContentType)
	}
	if result.Totals.Requests.Country == nil || len(result.Totals.Requests.Country) != 0 {
		t.Errorf("expected empty countries, got %#v", result.Totals.Requests.Country)
	}
	if result.Timeseries == nil || len(result.Timeseries) != 0 {
		t.Errorf("expected empty timeseries, got %#v", result.Timeseries)
	}
}

func TestCloudflare_Fetch_MissingSections(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{"no totals", `{"timeseries": []}`, "missing totals"},
		{"no requests", `{"totals": {"bandwidth": {}}, "timeseries": []}`, "missing totals.requests"},
		{"no bandwidth", `{"totals": {"requests": {}}, "timeseries": []}`, "missing totals.bandwidth"},
		{"no timeseries", `{"totals": {"requests": {}, "bandwidth": {}}}`, "missing timeseries"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeEnvelope(w, http.StatusOK, cfSuccessEnvelope(json.RawMessage(tt.payload)))
			}))
			t.Cleanup(srv.Close)

			_, err := newTestCloudflareFetcher(t, srv.URL).Fetch(context.Background(), domain.RangeLastWeek)
			if !errors.Is(err, domain.ErrInvalidPayload) {
				t.Fatalf("expected ErrInvalidPayload, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestCloudflare_Fetch_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		code     int
		message  string
		sentinel error
		attempts int
	}{
		{"unauthorized", http.StatusUnauthorized, 10000, "Authentication error", domain.ErrUnauthorized, 1},
		{"forbidden", http.StatusForbidden, 10000, "Authentication error", domain.ErrUnauthorized, 1},
		{"unknown zone", http.StatusNotFound, 7003, "Could not route to /zones/x", domain.ErrNotFound, 1},
		{"api code auth", http.StatusBadRequest, 9109, "Invalid access token", domain.ErrUnauthorized, 1},
		{"rate limited", http.StatusTooManyRequests, 10013, "Rate limited", domain.ErrRateLimited, 3},
		{"server error", http.StatusBadGateway, 0, "bad gateway", domain.ErrUnavailable, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				writeEnvelope(w, tt.status, cfErrorEnvelope(tt.code, tt.message))
			}))
			t.Cleanup(srv.Close)

			_, err := newTestCloudflareFetcher(t, srv.URL).Fetch(context.Background(), domain.RangeLastWeek)
			if !errors.Is(err, tt.sentinel) {
				t.Fatalf("expected %v, got %v", tt.sentinel, err)
			}
			if !strings.Contains(err.Error(), tt.message) {
				t.Errorf("error %q does not carry upstream message %q", err, tt.message)
			}
			if calls != tt.attempts {
				t.Errorf("expected %d attempts, got %d", tt.attempts, calls)
			}
		})
	}
}

func TestCloudflare_Fetch_RetriesThenSucceeds(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprint(w, "<html>upstream down</html>")
			return
		}
		dashboardHandler(t)(w, r)
	}))
	t.Cleanup(srv.Close)

	result, err := newTestCloudflareFetcher(t, srv.URL).Fetch(context.Background(), domain.RangeLastMonth)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
	if result.Totals.Uniques.All != 77 {
		t.Errorf("uniques = %d, want 77", result.Totals.Uniques.All)
	}
}

func TestCloudflare_Fetch_InvalidRange(t *testing.T) {
	f := NewCloudflareFetcher("token", testZoneID)
	if _, err := f.Fetch(context.Background(), domain.TimeRange(-5)); err == nil {
		t.Fatal("expected error for unsupported range")
	}
}

// --- Registry tests ---

func TestRegistry_Cloudflare(t *testing.T) {
	Reset()
	t.Cleanup(Reset)
	RegisterCloudflare()

	store := auth.NewMockStore()

	if _, err := Get("cloudflare", store, ""); err == nil || !strings.Contains(err.Error(), "zone-id") {
		t.Fatalf("expected zone id error, got %v", err)
	}

	if _, err := Get("cloudflare", store, testZoneID); !errors.Is(err, auth.ErrTokenNotFound) {
		t.Fatalf("expected ErrTokenNotFound, got %v", err)
	}

	store.SetToken("cloudflare", "tok")
	f, err := Get("Cloudflare", store, testZoneID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if f.GetDisplayName() != "Cloudflare" {
		t.Errorf("display name = %q", f.GetDisplayName())
	}

	if _, err := Get("fastly", store, testZoneID); err == nil {
		t.Error("expected error for unknown provider")
	}
	if diff := cmp.Diff([]string{"cloudflare"}, List()); diff != "" {
		t.Errorf("List mismatch (-want +got):\n%s", diff)
	}
}

func TestRegister_Duplicate(t *testing.T) {
	Reset()
	t.Cleanup(Reset)
	RegisterCloudflare()

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	RegisterCloudflare()
}

func TestCloudflare_Fetch_HonorsRetryAfter(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(cfErrorEnvelope(10013, "Rate limited"))
			return
		}
		dashboardHandler(t)(w, r)
	}))
	t.Cleanup(srv.Close)

	f := newTestCloudflareFetcher(t, srv.URL)
	f.retry.MaxDelay = 10 * time.Millisecond

	if _, err := f.Fetch(context.Background(), domain.RangeLastWeek); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestRetryAfter(t *testing.T) {
	tests := map[string]time.Duration{
		"":     0,
		"abc":  0,
		"-3":   0,
		"0":    0,
		" 30 ": 30 * time.Second,
		"120":  2 * time.Minute,
	}
	for in, want := range tests {
		h := http.Header{}
		h.Set("Retry-After", in)
		if got := retryAfter(h); got != want {
			t.Errorf("retryAfter(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestCloudflare_Fetch_NonJSONErrorBody(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		sentinel error
		attempts int
	}{
		{"edge rate limit", http.StatusTooManyRequests, "error code: 1015", domain.ErrRateLimited, 3},
		{"forbidden", http.StatusForbidden, "error code: 1015", domain.ErrUnauthorized, 1},
		{"not found", http.StatusNotFound, "error code: 1015", domain.ErrNotFound, 1},
		{"html gateway page", http.StatusBadGateway, "<html>\n  <body>Bad gateway</body>\n</html>", domain.ErrUnavailable, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.Header().Set("Content-Type", "text/plain")
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			t.Cleanup(srv.Close)

			_, err := newTestCloudflareFetcher(t, srv.URL).Fetch(context.Background(), domain.RangeLastWeek)
			if !errors.Is(err, tt.sentinel) {
				t.Fatalf("expected %v, got %v", tt.sentinel, err)
			}
			if calls != tt.attempts {
				t.Errorf("expected %d attempts, got %d", tt.attempts, calls)
			}
			if strings.Contains(err.Error(), "decode") {
				t.Errorf("error hides the upstream cause: %v", err)
			}
			if !strings.Contains(err.Error(), fmt.Sprintf("HTTP %d", tt.status)) {
				t.Errorf("error %q does not name the status", err)
			}
		})
	}
}

func TestCloudflare_Fetch_NonJSONSuccessBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>maintenance</html>")
	}))
	t.Cleanup(srv.Close)

	_, err := newTestCloudflareFetcher(t, srv.URL).Fetch(context.Background(), domain.RangeLastWeek)
	if err == nil || !strings.Contains(err.Error(), "failed to decode response") {
		t.Errorf("expected decode error, got %v", err)
	}
}

func TestBodySummary(t *testing.T) {
	tests := []struct {
		status int
		body   string
		want   string
	}{
		{429, "error code: 1015\n", "HTTP 429: error code: 1015"},
		{502, "<html>\n\t<b>down</b>\n</html>", "HTTP 502: <html> <b>down</b> </html>"},
		{403, "", "HTTP 403: Forbidden"},
		{500, strings.Repeat("x", 250), "HTTP 500: " + strings.Repeat("x", 200) + "..."},
	}
	for _, tt := range tests {
		if got := bodySummary(tt.status, []byte(tt.body)); got != tt.want {
			t.Errorf("bodySummary(%d, %q) = %q, want %q", tt.status, tt.body, got, tt.want)
		}
	}
}
