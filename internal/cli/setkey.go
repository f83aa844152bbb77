package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clide-ide/agentlink/internal/config"
)

func newSetKeyCmd() *cobra.Command {
	var makeDefault bool

	cmd := &cobra.Command{
		Use:   "set-key <provider> <api-key>",
		Short: "Save an API key as an agent profile",
		Long: "Creates (or replaces) a profile for the given provider with the " +
			"supplied API key and persists it to the settings file.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider := config.Provider(args[0])
			if !provider.Valid() {
				return fmt.Errorf("unknown provider %q (choose one of %v)", args[0], config.Providers)
			}

			settings, err := config.Load(paths.Settings)
			if err != nil {
				return err
			}

			profile := config.APIKeyProfile(provider, args[1])
			replaced := false
			for i, p := range settings.Profiles {
				if p.ID == profile.ID {
					settings.Profiles[i] = profile
					replaced = true
					break
				}
			}
			if !replaced {
				settings.Profiles = append(settings.Profiles, profile)
			}
			if makeDefault || settings.DefaultProfile == "" {
				settings.DefaultProfile = profile.ID
			}

			if err := config.Save(paths.Settings, settings); err != nil {
				return err
			}

			fmt.Printf("Saved profile %q (%s) to %s\n", profile.ID, provider.DisplayName(), paths.Settings)
			return nil
		},
	}

	cmd.Flags().BoolVar(&makeDefault, "default", false, "make this profile the default")
	return cmd
}
