package auth

import (
	"github.com/spf13/cobra"
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage API tokens for analytics providers",
		Long: `Manage API tokens for analytics providers.

Tokens are stored in the OS keychain. A <PROVIDER>_API_TOKEN environment
variable (e.g. CLOUDFLARE_API_TOKEN) takes precedence over the stored token.`,
	}

	cmd.AddCommand(LoginCommand())
	cmd.AddCommand(StatusCommand())
	cmd.AddCommand(LogoutCommand())

	return cmd
}
