// Package app assembles the dashboard controller and its collaborators from
// the persisted configuration. Every cfdash command that renders or caches
// analytics goes through Open.
package app

import (
	"context"
	"errors"
	"io"
	"time"

	"nathanbeddoewebdev/cfdash/internal/analytics/domain"
	"nathanbeddoewebdev/cfdash/internal/analytics/providers"
	"nathanbeddoewebdev/cfdash/internal/cache"
	"nathanbeddoewebdev/cfdash/internal/charts"
	"nathanbeddoewebdev/cfdash/internal/config"
	"nathanbeddoewebdev/cfdash/internal/dashboard"
	"nathanbeddoewebdev/cfdash/internal/observability"
	"nathanbeddoewebdev/cfdash/internal/services/auth"
	"nathanbeddoewebdev/cfdash/internal/services/viewprefs"
	prefsrepo "nathanbeddoewebdev/cfdash/internal/viewprefs"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// ProviderName is the analytics provider the dashboard reads from.
const ProviderName = "cloudflare"

// Options tunes Open. Zero values select the production defaults.
type Options struct {
	// Store supplies provider tokens. Nil means auth.DefaultStore().
	Store auth.Store

	// LogOutput receives log lines. Nil means stderr.
	LogOutput io.Writer

	// PrefsPath overrides the SQLite database holding view preferences.
	PrefsPath string

	// Backend overrides the configured cache backend.
	Backend cache.Backend

	// Registerer receives the Prometheus collectors. Nil creates a fresh
	// registry, exposed as App.Registry.
	Registerer prometheus.Registerer
}

// App is a fully wired dashboard.
type App struct {
	Config     *config.Config
	Logger     *logrus.Logger
	Registry   *prometheus.Registry
	Metrics    *observability.Metrics
	Fetcher    domain.Fetcher
	Cache      *cache.AnalyticsCache
	Prefs      *viewprefs.Service
	Controller *dashboard.Controller

	closers []io.Closer
}

// Open builds an App from cfg. Problems with optional collaborators (the
// provider credentials, the preference database, the cache backend, the
// time zone) are logged and degrade the dashboard instead of failing, so a
// misconfigured install still renders a view with a settings hint.
func Open(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	logger := observability.NewLogger(cfg.Level(), opts.LogOutput)

	a := &App{Config: cfg, Logger: logger}

	reg := opts.Registerer
	if reg == nil {
		a.Registry = prometheus.NewRegistry()
		reg = a.Registry
	}
	a.Metrics = observability.NewMetrics(reg)

	store := opts.Store
	if store == nil {
		store = auth.DefaultStore()
	}
	a.Fetcher = openFetcher(logger, store, cfg.ZoneID)

	backend := opts.Backend
	if backend == nil {
		backend = a.openBackend(ctx)
	}
	a.Cache = cache.NewAnalyticsCache(backend)
	if cfg.CachePrefix != "" {
		a.Cache = a.Cache.WithPrefix(cfg.CachePrefix)
	}

	a.Prefs = a.openPrefs(opts.PrefsPath)

	loc, err := cfg.Location()
	if err != nil {
		logger.WithError(err).Warn("invalid timezone, using local time")
		loc = time.Local
	}

	transformer := charts.Transformer{
		Palette:      cfg.Palette(),
		MetricLabels: cfg.Labels(),
		Location:     loc,
	}
	a.Controller = dashboard.NewController(dashboard.Config{
		Fetcher:      a.Fetcher,
		Cache:        a.Cache,
		Prefs:        a.Prefs,
		Transformer:  transformer,
		TTL:          cfg.CacheTTL(),
		MetricLabels: transformer.MetricLabels,
		Logger:       logger,
		Metrics:      a.Metrics,
	})
	return a, nil
}

func openFetcher(log logrus.FieldLogger, store auth.Store, zoneID string) domain.Fetcher {
	f, err := providers.Get(ProviderName, store, zoneID)
	if err != nil {
		log.WithError(err).Warn("analytics provider unavailable")
		return dashboard.UnavailableFetcher("Cloudflare", err)
	}
	return f
}

func (a *App) openBackend(ctx context.Context) cache.Backend {
	if a.Config.Backend() == "redis" {
		rb, err := cache.NewRedisBackend(ctx, a.Config.RedisURL)
		if err == nil {
			a.closers = append(a.closers, rb)
			return rb
		}
		a.Logger.WithError(err).Warn("redis cache unavailable, falling back to file cache")
	}
	return cache.NewDefaultFileBackend()
}

func (a *App) openPrefs(path string) *viewprefs.Service {
	var (
		repo *prefsrepo.SQLiteRepository
		err  error
	)
	if path != "" {
		repo, err = prefsrepo.OpenAt(path)
	} else {
		repo, err = prefsrepo.Open()
	}
	if err != nil {
		a.Logger.WithError(err).Warn("view preferences unavailable, using defaults")
		return viewprefs.NewService(nil)
	}

	svc := viewprefs.NewService(repo)
	a.closers = append(a.closers, svc)
	return svc
}

// Close releases the preference database and cache connections.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
