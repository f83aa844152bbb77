package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clide-ide/agentlink/internal/config"
)

func newProfilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List configured agent profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load(paths.Settings)
			if err != nil {
				return err
			}
			if len(settings.Profiles) == 0 {
				fmt.Println("No agent profiles configured.")
				fmt.Printf("Settings file: %s\n", paths.Settings)
				return nil
			}

			for _, p := range settings.Profiles {
				marker := " "
				if p.ID == settings.DefaultProfile {
					marker = "*"
				}
				fmt.Printf("%s %-20s %-14s %s\n", marker, p.ID, p.Transport.Kind, p.Label)
				if p.Description != "" {
					fmt.Printf("  %s\n", p.Description)
				}
			}

			issues := config.Validate(&settings)
			if len(issues) > 0 {
				fmt.Printf("\nValidation issues (%d):\n", len(issues))
				for _, issue := range issues {
					fmt.Printf("  - %s\n", issue)
				}
			}
			return nil
		},
	}
}
