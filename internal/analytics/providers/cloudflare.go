package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"nathanbeddoewebdev/cfdash/internal/analytics/domain"
	"nathanbeddoewebdev/cfdash/internal/retry"
	"nathanbeddoewebdev/cfdash/internal/services/auth"
)

const (
	cloudflareBaseURL    = "https://api.cloudflare.com/client/v4"
	cloudflareTimeout    = 30 * time.Second
	cloudflareTokenStore = "cloudflare"

	maxResponseBytes = 8 << 20
	maxSummaryRunes  = 200
)

// Compile-time check that CloudflareFetcher satisfies domain.Fetcher.
var _ domain.Fetcher = (*CloudflareFetcher)(nil)

// CloudflareFetcher implements domain.Fetcher using the zone analytics
// dashboard endpoint of the Cloudflare API v4. It authenticates with a
// scoped API token that needs the Zone Analytics:Read permission.
type CloudflareFetcher struct {
	token   string
	zoneID  string
	baseURL string
	client  *http.Client
	retry   retry.Config
}

// NewCloudflareFetcher creates a CloudflareFetcher for zoneID.
func NewCloudflareFetcher(token, zoneID string) *CloudflareFetcher {
	return &CloudflareFetcher{
		token:   token,
		zoneID:  zoneID,
		baseURL: cloudflareBaseURL,
		client:  &http.Client{Timeout: cloudflareTimeout},
		retry:   retry.DefaultConfig(),
	}
}

// RegisterCloudflare registers the Cloudflare fetcher factory.
func RegisterCloudflare() {
	Register("cloudflare", func(store auth.Store, zoneID string) (domain.Fetcher, error) {
		if strings.TrimSpace(zoneID) == "" {
			return nil, errors.New("cloudflare: zone id not configured (run 'cfdash config set zone-id <id>')")
		}
		token, err := store.GetToken(cloudflareTokenStore)
		if err != nil {
			return nil, fmt.Errorf("cloudflare auth: token not found (run 'cfdash auth login cloudflare'): %w", err)
		}
		return NewCloudflareFetcher(token, zoneID), nil
	})
}

// GetDisplayName returns the human-readable provider name.
func (c *CloudflareFetcher) GetDisplayName() string {
	return "Cloudflare"
}

// --- API response types ---

// cfEnvelope is the standard Cloudflare API response wrapper.
type cfEnvelope[T any] struct {
	Success  bool      `json:"success"`
	Errors   []cfError `json:"errors"`
	Result   T         `json:"result"`
	Messages []cfError `json:"messages,omitempty"`
}

// cfError represents a single Cloudflare API error.
type cfError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// cfDashboard is the result of /zones/:id/analytics/dashboard. Required
// sections are pointers so their absence can be detected.
type cfDashboard struct {
	Totals     *cfTotals     `json:"totals"`
	Timeseries *[]cfInterval `json:"timeseries"`
}

type cfTotals struct {
	Since     time.Time   `json:"since"`
	Until     time.Time   `json:"until"`
	Requests  *cfRequests `json:"requests"`
	Bandwidth *cfCounter  `json:"bandwidth"`
	Pageviews cfCounter   `json:"pageviews"`
	Uniques   cfCounter   `json:"uniques"`
}

type cfInterval struct {
	Since     time.Time  `json:"since"`
	Until     time.Time  `json:"until"`
	Requests  cfRequests `json:"requests"`
	Bandwidth cfCounter  `json:"bandwidth"`
	Pageviews cfCounter  `json:"pageviews"`
	Uniques   cfCounter  `json:"uniques"`
}

type cfRequests struct {
	cfCounter
	SSL struct {
		Encrypted   int64 `json:"encrypted"`
		Unencrypted int64 `json:"unencrypted"`
	} `json:"ssl"`
	ContentType domain.Counts `json:"content_type"`
	Country     domain.Counts `json:"country"`
}

type cfCounter struct {
	All      int64 `json:"all"`
	Cached   int64 `json:"cached"`
	Uncached int64 `json:"uncached"`
}

func (c cfCounter) toDomain() domain.Counter {
	return domain.Counter{All: c.All, Cached: c.Cached, Uncached: c.Uncached}
}

// --- HTTP helpers ---

// envelopeError extracts a single error from a Cloudflare response envelope.
// It maps known HTTP-level and API-level error codes to domain sentinels.
func envelopeError(success bool, errs []cfError, httpStatus int) error {
	if success && httpStatus < 400 {
		return nil
	}

	switch {
	case httpStatus == http.StatusUnauthorized || httpStatus == http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrUnauthorized, cfErrorString(errs))
	case httpStatus == http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, cfErrorString(errs))
	case httpStatus == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, cfErrorString(errs))
	case httpStatus >= 500:
		return fmt.Errorf("%w: %s", domain.ErrUnavailable, cfErrorString(errs))
	}

	// Fall back to inspecting the error codes/messages.
	for _, e := range errs {
		msg := strings.ToLower(e.Message)
		switch {
		case e.Code == 9109 || e.Code == 10000 || strings.Contains(msg, "authentication"):
			return fmt.Errorf("%w: %s", domain.ErrUnauthorized, e.Message)
		case e.Code == 1001 || e.Code == 7003 || strings.Contains(msg, "could not route") || strings.Contains(msg, "not found"):
			return fmt.Errorf("%w: %s", domain.ErrNotFound, e.Message)
		}
	}

	return fmt.Errorf("cloudflare: %s", cfErrorString(errs))
}

// cfErrorString joins multiple Cloudflare errors into a single string.
func cfErrorString(errs []cfError) string {
	if len(errs) == 0 {
		return "unknown error"
	}
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		if e.Code == 0 {
			msgs = append(msgs, e.Message)
			continue
		}
		msgs = append(msgs, fmt.Sprintf("[%d] %s", e.Code, e.Message))
	}
	return strings.Join(msgs, "; ")
}

// getJSON performs a GET and decodes the body into out, returning the HTTP
// status and headers for use in error mapping.
func (c *CloudflareFetcher) getJSON(ctx context.Context, path string, out any) (int, http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("cloudflare: failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("cloudflare: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, resp.Header, fmt.Errorf("cloudflare: failed to read response: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		// Edge errors (rate limiting, auth, 5xx) often arrive as plain text
		// or HTML rather than an API envelope.
		if resp.StatusCode >= 400 {
			errs := []cfError{{Message: bodySummary(resp.StatusCode, body)}}
			return resp.StatusCode, resp.Header, envelopeError(false, errs, resp.StatusCode)
		}
		return resp.StatusCode, resp.Header, fmt.Errorf("cloudflare: failed to decode response: %w", err)
	}

	return resp.StatusCode, resp.Header, nil
}

// bodySummary condenses a non-JSON error body to one short line.
func bodySummary(status int, body []byte) string {
	text := strings.Join(strings.Fields(string(body)), " ")
	if r := []rune(text); len(r) > maxSummaryRunes {
		text = string(r[:maxSummaryRunes]) + "..."
	}
	if text == "" {
		text = http.StatusText(status)
	}
	return fmt.Sprintf("HTTP %d: %s", status, text)
}

// retryAfter parses a Retry-After header given in seconds.
func retryAfter(h http.Header) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(h.Get("Retry-After")))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// --- Fetcher implementation ---

// Fetch returns the zone analytics for the window ending now. Throttling,
// timeouts and 5xx responses are retried with backoff.
func (c *CloudflareFetcher) Fetch(ctx context.Context, r domain.TimeRange) (*domain.Result, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("cloudflare: unsupported time range %d", int(r))
	}

	query := url.Values{}
	query.Set("since", r.String())
	query.Set("continuous", "true")
	path := "/zones/" + url.PathEscape(c.zoneID) + "/analytics/dashboard?" + query.Encode()

	var out cfEnvelope[cfDashboard]
	err := retry.Do(ctx, c.retry, retry.IsRetryable, func() error {
		out = cfEnvelope[cfDashboard]{}
		status, header, err := c.getJSON(ctx, path, &out)
		if err == nil {
			err = envelopeError(out.Success, out.Errors, status)
		}
		if status == http.StatusTooManyRequests {
			err = retry.WithDelay(err, retryAfter(header))
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch analytics: %w", err)
	}

	return toResult(out.Result)
}

// toResult validates the required sections and converts the payload.
func toResult(d cfDashboard) (*domain.Result, error) {
	switch {
	case d.Totals == nil:
		return nil, fmt.Errorf("%w: missing totals", domain.ErrInvalidPayload)
	case d.Totals.Requests == nil:
		return nil, fmt.Errorf("%w: missing totals.requests", domain.ErrInvalidPayload)
	case d.Totals.Bandwidth == nil:
		return nil, fmt.Errorf("%w: missing totals.bandwidth", domain.ErrInvalidPayload)
	case d.Timeseries == nil:
		return nil, fmt.Errorf("%w: missing timeseries", domain.ErrInvalidPayload)
	}

	t := d.Totals
	result := &domain.Result{
		Totals: domain.Totals{
			Since: t.Since,
			Until: t.Until,
			Requests: domain.RequestTotals{
				Counter: t.Requests.toDomain(),
				SSL: domain.SSLCounts{
					Encrypted:   t.Requests.SSL.Encrypted,
					Unencrypted: t.Requests.SSL.Unencrypted,
				},
				ContentType: nonNil(t.Requests.ContentType),
				Country:     nonNil(t.Requests.Country),
			},
			Bandwidth: t.Bandwidth.toDomain(),
			Pageviews: t.Pageviews.toDomain(),
			Uniques:   t.Uniques.toDomain(),
		},
		Timeseries: make([]domain.Interval, 0, len(*d.Timeseries)),
	}

	for _, iv := range *d.Timeseries {
		result.Timeseries = append(result.Timeseries, domain.Interval{
			Since:     iv.Since,
			Until:     iv.Until,
			Requests:  iv.Requests.toDomain(),
			Bandwidth: iv.Bandwidth.toDomain(),
			Pageviews: iv.Pageviews.toDomain(),
			Uniques:   iv.Uniques.toDomain(),
		})
	}

	return result, nil
}

func nonNil(c domain.Counts) domain.Counts {
	if c == nil {
		return domain.Counts{}
	}
	return c
}
