package auth

import (
	"fmt"

	"nathanbeddoewebdev/cfdash/internal/analytics/providers"
	"nathanbeddoewebdev/cfdash/internal/tui"

	"github.com/spf13/cobra"
)

func StatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show authentication status for providers",
		Long: `Show which providers have an API token available, either stored in
the keychain or supplied through the environment.

Example:
  cfdash auth status`,
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses := tui.CheckAuth(storeFactory(), providers.List())

			if plain, _ := cmd.Flags().GetBool("plain"); !plain {
				fmt.Fprintln(cmd.OutOrStdout(), tui.RenderAuthStatus(statuses))
				return nil
			}

			if len(statuses) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No providers registered.")
				return nil
			}
			for _, s := range statuses {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", s.Name, s.Status)
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.Flags().Bool("plain", false, "Print one unstyled line per provider")

	return cmd
}
