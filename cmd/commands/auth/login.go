package auth

import (
	"fmt"
	"io"
	"os"
	"strings"

	"nathanbeddoewebdev/cfdash/internal/services/auth"
	"nathanbeddoewebdev/cfdash/internal/tui"
	"nathanbeddoewebdev/cfdash/internal/util"

	"golang.org/x/term"

	"github.com/spf13/cobra"
)

// storeFactory returns the token store; tests replace it.
var storeFactory = auth.DefaultStore

func LoginCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login <provider>",
		Short: "Store an API token for a provider",
		Long: `Store an API token for a provider using the local keychain.

The token needs the Zone Analytics:Read permission for the configured zone.

Example:
  cfdash auth login cloudflare
  cfdash auth login cloudflare --token "$TOKEN"`,
		Args:         cobra.ExactArgs(1),
		RunE:         runLogin,
		SilenceUsage: true,
	}

	cmd.Flags().String("token", "", "API token (optional, overrides prompt)")

	return cmd
}

func runLogin(cmd *cobra.Command, args []string) error {
	provider := auth.NormalizeProvider(args[0])
	if provider == "" {
		return fmt.Errorf("provider is required")
	}

	token, _ := cmd.Flags().GetString("token")
	token = strings.TrimSpace(token)
	store := storeFactory()

	if token == "" {
		fd := int(os.Stdin.Fd())
		if !term.IsTerminal(fd) {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return err
			}
			token = strings.TrimSpace(string(data))
		} else if term.IsTerminal(int(os.Stdout.Fd())) {
			saved, err := tui.RunAuthLogin(provider, store)
			if err != nil {
				return err
			}
			if saved {
				fmt.Fprintf(cmd.OutOrStdout(), "Saved token for provider %s\n", provider)
			}
			return nil
		} else {
			fmt.Fprint(cmd.OutOrStdout(), "Enter API token: ")
			data, err := term.ReadPassword(fd)
			fmt.Fprintln(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			token = strings.TrimSpace(string(data))
		}
	}

	if err := util.ValidateAPIToken(token); err != nil {
		return err
	}
	if err := store.SetToken(provider, token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Saved token for provider %s\n", provider)
	return nil
}
