// Package dashboard orchestrates a single dashboard render: it resolves the
// user's view, loads analytics from the cache or the fetcher, and turns them
// into chart series.
package dashboard

import (
	"context"
	"time"

	"nathanbeddoewebdev/cfdash/internal/analytics/domain"
	"nathanbeddoewebdev/cfdash/internal/charts"
	"nathanbeddoewebdev/cfdash/internal/observability"
	"nathanbeddoewebdev/cfdash/internal/viewprefs"

	"github.com/sirupsen/logrus"
)

// ResultCache stores analytics results per (range, metric).
type ResultCache interface {
	Get(ctx context.Context, r domain.TimeRange, m domain.MetricKind) (*domain.Result, bool, error)
	Set(ctx context.Context, r domain.TimeRange, m domain.MetricKind, result *domain.Result, ttl time.Duration) error
}

// PreferenceStore loads and saves per-user view selections. Get returns a
// usable preference (the default when none is saved) even when it also
// reports an error.
type PreferenceStore interface {
	Get(userID string) (viewprefs.ViewPreference, error)
	Set(userID string, r domain.TimeRange, m domain.MetricKind) error
}

// Transformer turns a result into chart series.
type Transformer interface {
	Transform(result *domain.Result, metric domain.MetricKind, r domain.TimeRange) *charts.Series
}

// Config wires a Controller's collaborators.
type Config struct {
	Fetcher     domain.Fetcher
	Cache       ResultCache
	Prefs       PreferenceStore
	Transformer Transformer

	// TTL is the cache lifetime; zero disables the cache entirely.
	TTL time.Duration

	// MetricLabels overrides the labels of the metric selector.
	MetricLabels map[domain.MetricKind]string

	Logger  logrus.FieldLogger
	Metrics *observability.Metrics
}

// Request carries the per-render inputs. Overrides that do not parse are
// ignored.
type Request struct {
	CurrentUserID  string
	UserOverride   string
	RangeOverride  string
	MetricOverride string
}

// EffectiveUser returns the user whose preference a render reads and
// writes: the override when set, otherwise the current user.
func (r Request) EffectiveUser() string {
	if r.UserOverride != "" {
		return r.UserOverride
	}
	return r.CurrentUserID
}

// Controller renders dashboard view-models.
type Controller struct {
	fetcher      domain.Fetcher
	cache        ResultCache
	prefs        PreferenceStore
	transformer  Transformer
	ttl          time.Duration
	metricLabels map[domain.MetricKind]string
	log          logrus.FieldLogger
	metrics      *observability.Metrics
}

// NewController creates a Controller. Fetcher and Transformer are required;
// a nil Cache behaves as if caching were disabled and a nil Prefs always
// yields the default view.
func NewController(cfg Config) *Controller {
	log := cfg.Logger
	if log == nil {
		log = observability.Discard()
	}
	return &Controller{
		fetcher:      cfg.Fetcher,
		cache:        cfg.Cache,
		prefs:        cfg.Prefs,
		transformer:  cfg.Transformer,
		ttl:          cfg.TTL,
		metricLabels: cfg.MetricLabels,
		log:          log,
		metrics:      cfg.Metrics,
	}
}

// Render resolves the view for req and returns the view-model. A failed
// fetch is reported through ViewModel.Failure rather than as an error; the
// error return is reserved for a context that is already done.
func (c *Controller) Render(ctx context.Context, req Request) (*ViewModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	userID := req.EffectiveUser()
	log := c.log.WithField("user", userID)

	r, m := c.resolveView(log, userID, req)

	if c.prefs != nil {
		if err := c.prefs.Set(userID, r, m); err != nil {
			log.WithError(err).Warn("failed to save view preference")
		}
	}

	vm := &ViewModel{
		UserID:        userID,
		Provider:      c.fetcher.GetDisplayName(),
		TimeOptions:   timeOptions(),
		MetricOptions: metricOptions(c.metricLabels),
		CurrentRange:  r,
		CurrentMetric: m,
	}
	log = log.WithFields(logrus.Fields{"range": r.String(), "metric": string(m)})

	result, cached := c.lookup(ctx, log, r, m)
	if result == nil {
		start := time.Now()
		fetched, err := c.fetcher.Fetch(ctx, r)
		c.metrics.ObserveFetch(r.String(), time.Since(start), err)
		if err != nil {
			log.WithError(err).Warn("analytics fetch failed")
			vm.Failure = &Failure{Message: err.Error(), SettingsHint: SettingsHint}
			c.metrics.ObserveRender(r.String(), string(m), false)
			return vm, nil
		}
		result = fetched
		c.store(ctx, log, r, m, result)
	}

	vm.Analytics = result
	vm.Cached = cached
	vm.Charts = c.transformer.Transform(result, m, r)
	c.metrics.ObserveRender(r.String(), string(m), true)
	return vm, nil
}

// resolveView loads the saved view and applies any valid overrides.
func (c *Controller) resolveView(log logrus.FieldLogger, userID string, req Request) (domain.TimeRange, domain.MetricKind) {
	pref := viewprefs.Default(userID)
	if c.prefs != nil {
		var err error
		pref, err = c.prefs.Get(userID)
		if err != nil {
			log.WithError(err).Warn("failed to load view preference, using default")
		}
	}

	r, m := pref.Range, pref.Metric
	if !r.Valid() {
		r = domain.DefaultTimeRange
	}
	if !m.Valid() {
		m = domain.DefaultMetric
	}

	if req.RangeOverride != "" {
		if parsed, err := domain.ParseTimeRange(req.RangeOverride); err == nil {
			r = parsed
		} else {
			log.WithField("range", req.RangeOverride).Debug("ignoring invalid range override")
		}
	}
	if req.MetricOverride != "" {
		if parsed, err := domain.ParseMetricKind(req.MetricOverride); err == nil {
			m = parsed
		} else {
			log.WithField("metric", req.MetricOverride).Debug("ignoring invalid metric override")
		}
	}
	return r, m
}

// lookup returns the cached result, or nil when caching is disabled or the
// entry is missing.
func (c *Controller) lookup(ctx context.Context, log logrus.FieldLogger, r domain.TimeRange, m domain.MetricKind) (*domain.Result, bool) {
	if c.cache == nil || c.ttl <= 0 {
		log.Debug("analytics cache bypassed")
		c.metrics.ObserveCacheLookup(observability.CacheBypass)
		return nil, false
	}

	result, ok, err := c.cache.Get(ctx, r, m)
	if err != nil {
		log.WithError(err).Warn("analytics cache read failed")
	}
	if !ok || result == nil {
		log.Debug("analytics cache miss")
		c.metrics.ObserveCacheLookup(observability.CacheMiss)
		return nil, false
	}

	log.Debug("analytics cache hit")
	c.metrics.ObserveCacheLookup(observability.CacheHit)
	return result, true
}

func (c *Controller) store(ctx context.Context, log logrus.FieldLogger, r domain.TimeRange, m domain.MetricKind, result *domain.Result) {
	if c.cache == nil || c.ttl <= 0 {
		return
	}
	if err := c.cache.Set(ctx, r, m, result, c.ttl); err != nil {
		log.WithError(err).Warn("analytics cache write failed")
	}
}
