// Package cli implements the agentlink command surface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/clide-ide/agentlink/internal/config"
	"github.com/clide-ide/agentlink/internal/logging"
)

var (
	settingsFile string
	logLevel     string

	// loaded at init time
	paths config.Paths
	log   *logging.Logger
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agentlink",
		Short: "agentlink — AI agent bridge for the editor",
		Long:  "agentlink connects an editor workspace to AI coding agents over subprocess, HTTP or structured-RPC transports.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			paths, err = config.ResolvePaths()
			if err != nil {
				return err
			}
			if settingsFile != "" {
				paths.Settings = settingsFile
			}
			level := logLevel
			if level == "" {
				level = "info"
			}
			log = logging.New(nil, level)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&settingsFile, "settings", "", "settings file (default ~/.agentlink/settings.yaml)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error, fatal, silent)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newProfilesCmd())
	cmd.AddCommand(newSendCmd())
	cmd.AddCommand(newSetKeyCmd())
	cmd.AddCommand(newHistoryCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}
