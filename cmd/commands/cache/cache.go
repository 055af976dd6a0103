package cache

import (
	"context"
	"fmt"

	"nathanbeddoewebdev/cfdash/internal/analytics/domain"
	"nathanbeddoewebdev/cfdash/internal/app"
	"nathanbeddoewebdev/cfdash/internal/config"

	"github.com/spf13/cobra"
)

// openApp wires the dashboard from configuration; tests replace it.
var openApp = func(ctx context.Context, cmd *cobra.Command, cfg *config.Config) (*app.App, error) {
	return app.Open(ctx, cfg, app.Options{LogOutput: cmd.ErrOrStderr()})
}

// NewCommand returns the "cache" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the analytics cache",
		Long: `Manage the analytics cache.

Results are cached per time range and metric for cache-time seconds, in
files under ~/.cache/cfdash or in Redis when cache-backend is redis.`,
	}

	cmd.AddCommand(WarmCommand())
	cmd.AddCommand(ClearCommand())

	return cmd
}

func WarmCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "warm",
		Short: "Fetch every time range and fill the cache",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := load(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.Warm(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cached %d views\n", n)
			return nil
		},
		SilenceUsage: true,
	}
}

func ClearCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove cached analytics results",
		Long: `Remove cached analytics results.

Without flags every cached view is removed. --range and --metric narrow the
removal to matching views.

Examples:
  cfdash cache clear
  cfdash cache clear --range day
  cfdash cache clear --range week --metric bandwidth`,
		RunE:         runClear,
		SilenceUsage: true,
	}

	cmd.Flags().String("range", "", "Only remove this time range (-1440, -10080, -43200, day, week, month)")
	cmd.Flags().String("metric", "", "Only remove this metric (requests, pageviews, uniques, bandwidth)")

	return cmd
}

func runClear(cmd *cobra.Command, _ []string) error {
	narrow := false
	ranges := domain.TimeRanges
	if v, _ := cmd.Flags().GetString("range"); v != "" {
		r, err := domain.ParseTimeRange(v)
		if err != nil {
			return err
		}
		ranges = []domain.TimeRange{r}
		narrow = true
	}
	metrics := domain.MetricKinds
	if v, _ := cmd.Flags().GetString("metric"); v != "" {
		m, err := domain.ParseMetricKind(v)
		if err != nil {
			return err
		}
		metrics = []domain.MetricKind{m}
		narrow = true
	}

	a, err := load(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	if !narrow {
		if err := a.Cache.Clear(ctx); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Analytics cache cleared")
		return nil
	}

	n := 0
	for _, r := range ranges {
		for _, m := range metrics {
			if err := a.Cache.Invalidate(ctx, r, m); err != nil {
				return fmt.Errorf("failed to remove %s/%s: %w", r.Label(), m.Label(), err)
			}
			n++
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached views\n", n)
	return nil
}

func load(cmd *cobra.Command) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return openApp(cmd.Context(), cmd, cfg)
}
