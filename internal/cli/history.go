package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clide-ide/agentlink/internal/config"
	"github.com/clide-ide/agentlink/internal/domain"
	"github.com/clide-ide/agentlink/internal/store"
)

func newHistoryCmd() *cobra.Command {
	var (
		profileID string
		limit     int
		clear     bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded conversation history for a profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load(paths.Settings)
			if err != nil {
				return err
			}

			id := profileID
			if id == "" {
				profile, ok := settings.DefaultProfileEntry()
				if !ok {
					return fmt.Errorf("no agent profiles configured")
				}
				id = profile.ID
			}

			db, err := store.Open(paths.History, log)
			if err != nil {
				return err
			}
			defer db.Close()

			if clear {
				n, err := db.ClearHistory(id)
				if err != nil {
					return err
				}
				fmt.Printf("Cleared %d entries for %q\n", n, id)
				return nil
			}

			entries, err := db.RecentEntries(id, limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Printf("No history for %q\n", id)
				return nil
			}

			for _, e := range entries {
				fmt.Printf("%s  %-11s %s\n", e.CreatedAt, e.Entry.Kind, e.Entry.DisplayTitle())
				if e.Entry.Kind == domain.EntryResponse && e.Entry.Response.Detail != "" {
					fmt.Printf("%*s%s\n", 33, "", e.Entry.Response.Detail)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&profileID, "profile", "", "profile id (default: the configured default)")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum entries to show")
	cmd.Flags().BoolVar(&clear, "clear", false, "delete the profile's history instead of showing it")
	return cmd
}
