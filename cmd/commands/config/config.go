package config

import (
	"nathanbeddoewebdev/cfdash/internal/config"

	"github.com/spf13/cobra"
)

// NewCommand returns the "config" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage cfdash configuration",
		Long: "View and modify persistent cfdash settings.\n\n" +
			"Configuration is stored at ~/.config/cfdash/config.json.\n\n" +
			config.KeysHelp(),
	}

	cmd.AddCommand(SetCommand())
	cmd.AddCommand(GetCommand())

	return cmd
}
