package dashboard

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nathanbeddoewebdev/cfdash/internal/app"
	"nathanbeddoewebdev/cfdash/internal/web"

	"github.com/spf13/cobra"
)

func ServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard widget over HTTP",
		Long: `Serve the dashboard widget and its JSON API over HTTP.

Routes:
  GET  /               HTML widget
  GET  /api/dashboard  view-model as JSON (?range=-1440&metric=bandwidth)
  POST /api/view       change the current user's view
  GET  /healthz        liveness probe
  GET  /metrics        Prometheus metrics

The current user is taken from the X-Forwarded-User header set by an
authenticating proxy, falling back to the default-user setting.

Example:
  cfdash dashboard serve --listen 127.0.0.1:8080 --refresh 10m`,
		RunE:         runServe,
		SilenceUsage: true,
	}

	cmd.Flags().String("listen", "", "Listen address (default from config, :8080)")
	cmd.Flags().Duration("refresh", 0, "Re-warm the analytics cache at this interval (0 disables)")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	addr, _ := cmd.Flags().GetString("listen")
	if addr == "" {
		addr = cfg.Listen()
	}
	refresh, _ := cmd.Flags().GetDuration("refresh")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if refresh > 0 {
		if cfg.CacheTTL() <= 0 {
			return fmt.Errorf("--refresh needs caching enabled: %w", app.ErrCacheDisabled)
		}
		go refreshLoop(ctx, a, refresh)
	}

	srv := web.NewServer(web.Config{
		Renderer:    a.Controller,
		DefaultUser: cfg.User(),
		Logger:      a.Logger,
		Metrics:     a.Metrics,
		Gatherer:    a.Registry,
	})

	return srv.ListenAndServe(ctx, addr)
}

// refreshLoop warms the cache immediately and then every interval until
// ctx is done.
func refreshLoop(ctx context.Context, a *app.App, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := a.Warm(ctx); err != nil && ctx.Err() == nil {
			a.Logger.WithError(err).Warn("cache refresh failed")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
