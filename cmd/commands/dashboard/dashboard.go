package dashboard

import (
	"context"

	"nathanbeddoewebdev/cfdash/internal/app"
	"nathanbeddoewebdev/cfdash/internal/config"

	"github.com/spf13/cobra"
)

// openApp wires the dashboard from configuration; tests replace it.
var openApp = func(ctx context.Context, cmd *cobra.Command, cfg *config.Config) (*app.App, error) {
	return app.Open(ctx, cfg, app.Options{LogOutput: cmd.ErrOrStderr()})
}

// NewCommand returns the "dashboard" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"dash"},
		Short:   "Show Cloudflare zone analytics",
		Long: `Show analytics for the configured Cloudflare zone.

The selected time range and metric are remembered per user and used as the
default for the next view.`,
	}

	cmd.AddCommand(ShowCommand())
	cmd.AddCommand(ServeCommand())

	return cmd
}

func loadApp(cmd *cobra.Command) (*config.Config, *app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	a, err := openApp(cmd.Context(), cmd, cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, a, nil
}
