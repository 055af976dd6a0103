package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"

	"nathanbeddoewebdev/cfdash/internal/analytics/domain"
	"nathanbeddoewebdev/cfdash/internal/util"

	"github.com/sirupsen/logrus"
)

// KeySpec describes a single configuration key.
type KeySpec struct {
	// Name is the CLI-facing key name (e.g. "zone-id").
	Name string

	// Description is a short human-readable explanation shown in help text.
	Description string

	// Get returns the current value for this key from a loaded Config.
	Get func(cfg *Config) string

	// Set applies a value for this key to the given Config (in memory only;
	// the caller is responsible for calling Save). The value must already
	// have passed Validate.
	Set func(cfg *Config, value string)

	// Validate rejects values Set cannot apply. Nil accepts anything.
	Validate func(value string) error
}

// Keys is the authoritative list of all supported configuration keys.
// To add a new option: add a field to Config and append a KeySpec here.
var Keys = []KeySpec{
	{
		Name:        "zone-id",
		Description: "Cloudflare zone whose analytics are shown",
		Get:         func(cfg *Config) string { return cfg.ZoneID },
		Set:         func(cfg *Config, v string) { cfg.ZoneID = strings.TrimSpace(v) },
		Validate:    util.ValidateZoneID,
	},
	{
		Name:        "cache-time",
		Description: "Seconds analytics results are cached (0 disables caching, default 900)",
		Get: func(cfg *Config) string {
			if cfg.CacheTime == nil {
				return ""
			}
			return strconv.Itoa(*cfg.CacheTime)
		},
		Set: func(cfg *Config, v string) {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				cfg.CacheTime = nil
				return
			}
			cfg.CacheTime = &n
		},
		Validate: validateCacheTime,
	},
	{
		Name:        "cache-backend",
		Description: "Where analytics results are cached: file or redis",
		Get:         func(cfg *Config) string { return cfg.CacheBackend },
		Set:         func(cfg *Config, v string) { cfg.CacheBackend = util.NormalizeKey(v) },
		Validate:    validateCacheBackend,
	},
	{
		Name:        "cache-prefix",
		Description: "Prefix of analytics cache keys, to share one Redis between sites (default cfdash_results_)",
		Get:         func(cfg *Config) string { return cfg.CachePrefix },
		Set:         func(cfg *Config, v string) { cfg.CachePrefix = strings.TrimSpace(v) },
		Validate:    validateCachePrefix,
	},
	{
		Name:        "redis-url",
		Description: "Redis URL used when cache-backend is redis",
		Get:         func(cfg *Config) string { return cfg.RedisURL },
		Set:         func(cfg *Config, v string) { cfg.RedisURL = strings.TrimSpace(v) },
		Validate:    validateRedisURL,
	},
	{
		Name:        "chart-colors",
		Description: "Comma-separated #RRGGBB colors cycled over the bar charts",
		Get:         func(cfg *Config) string { return strings.Join(cfg.ChartColors, ",") },
		Set:         func(cfg *Config, v string) { cfg.ChartColors = util.SplitList(v) },
		Validate:    validateChartColors,
	},
	{
		Name:        "metric-labels",
		Description: "Chart labels per metric, e.g. requests=Hits,pageviews=Views",
		Get:         getMetricLabels,
		Set: func(cfg *Config, v string) {
			labels, _ := parseMetricLabels(v)
			cfg.MetricLabels = labels
		},
		Validate: func(v string) error {
			_, err := parseMetricLabels(v)
			return err
		},
	},
	{
		Name:        "timezone",
		Description: "IANA time zone for chart labels (default: local)",
		Get:         func(cfg *Config) string { return cfg.Timezone },
		Set:         func(cfg *Config, v string) { cfg.Timezone = strings.TrimSpace(v) },
		Validate:    validateTimezone,
	},
	{
		Name:        "listen-addr",
		Description: "Address the dashboard server listens on (default :8080)",
		Get:         func(cfg *Config) string { return cfg.ListenAddr },
		Set:         func(cfg *Config, v string) { cfg.ListenAddr = strings.TrimSpace(v) },
		Validate:    validateListenAddr,
	},
	{
		Name:        "default-user",
		Description: "User whose view preference is used when none is given (default admin)",
		Get:         func(cfg *Config) string { return cfg.DefaultUser },
		Set:         func(cfg *Config, v string) { cfg.DefaultUser = strings.TrimSpace(v) },
	},
	{
		Name:        "log-level",
		Description: "Log verbosity: debug, info, warn or error (default info)",
		Get:         func(cfg *Config) string { return cfg.LogLevel },
		Set:         func(cfg *Config, v string) { cfg.LogLevel = util.NormalizeKey(v) },
		Validate:    validateLogLevel,
	},
}

// Lookup returns the KeySpec for the given name, or nil if not found.
// The name is matched case-insensitively after trimming whitespace.
func Lookup(name string) *KeySpec {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for i := range Keys {
		if Keys[i].Name == normalized {
			return &Keys[i]
		}
	}
	return nil
}

// Apply validates value and sets it on cfg.
func (k *KeySpec) Apply(cfg *Config, value string) error {
	if k.Validate != nil {
		if err := k.Validate(value); err != nil {
			return fmt.Errorf("invalid value for %s: %w", k.Name, err)
		}
	}
	k.Set(cfg, value)
	return nil
}

// KeyNames returns the names of all registered keys.
func KeyNames() []string {
	names := make([]string, len(Keys))
	for i, k := range Keys {
		names[i] = k.Name
	}
	return names
}

// KeysHelp builds a formatted block listing all available keys and their
// descriptions, suitable for inclusion in Cobra Long help text.
func KeysHelp() string {
	if len(Keys) == 0 {
		return ""
	}

	// Find the longest key name for alignment.
	maxLen := 0
	for _, k := range Keys {
		if len(k.Name) > maxLen {
			maxLen = len(k.Name)
		}
	}

	var b strings.Builder
	b.WriteString("Available keys:\n")
	for _, k := range Keys {
		fmt.Fprintf(&b, "  %-*s   %s\n", maxLen, k.Name, k.Description)
	}
	return b.String()
}

func validateCacheTime(v string) error {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%q is not a whole number of seconds", v)
	}
	if n < 0 {
		return fmt.Errorf("must not be negative, got %d", n)
	}
	return nil
}

func validateCacheBackend(v string) error {
	switch util.NormalizeKey(v) {
	case "file", "redis":
		return nil
	}
	return fmt.Errorf("%q is not one of file, redis", v)
}

func validateRedisURL(v string) error {
	u, err := url.Parse(strings.TrimSpace(v))
	if err != nil {
		return err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return fmt.Errorf("scheme must be redis or rediss, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host in %q", v)
	}
	return nil
}

func validateChartColors(v string) error {
	colors := util.SplitList(v)
	if len(colors) == 0 {
		return fmt.Errorf("at least one color is required")
	}
	for _, c := range colors {
		if err := util.ValidateHexColor(c); err != nil {
			return err
		}
	}
	return nil
}

func validateTimezone(v string) error {
	_, err := time.LoadLocation(strings.TrimSpace(v))
	return err
}

func validateListenAddr(v string) error {
	_, _, err := net.SplitHostPort(strings.TrimSpace(v))
	return err
}

func validateLogLevel(v string) error {
	_, err := logrus.ParseLevel(util.NormalizeKey(v))
	return err
}

func validateCachePrefix(v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return fmt.Errorf("prefix must not be empty")
	}
	if strings.IndexFunc(v, unicode.IsSpace) >= 0 {
		return fmt.Errorf("prefix %q must not contain spaces", v)
	}
	return nil
}

// parseMetricLabels reads "metric=Label" pairs separated by commas.
func parseMetricLabels(v string) (map[string]string, error) {
	items := util.SplitList(v)
	if len(items) == 0 {
		return nil, fmt.Errorf("at least one metric=label pair is required")
	}

	labels := make(map[string]string, len(items))
	for _, item := range items {
		name, label, ok := strings.Cut(item, "=")
		label = strings.TrimSpace(label)
		if !ok || label == "" {
			return nil, fmt.Errorf("%q is not a metric=label pair", item)
		}
		m, err := domain.ParseMetricKind(name)
		if err != nil {
			return nil, err
		}
		labels[string(m)] = label
	}
	return labels, nil
}

func getMetricLabels(cfg *Config) string {
	var pairs []string
	for _, m := range domain.MetricKinds {
		if label, ok := cfg.MetricLabels[string(m)]; ok {
			pairs = append(pairs, string(m)+"="+label)
		}
	}
	return strings.Join(pairs, ",")
}
