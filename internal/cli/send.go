package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/clide-ide/agentlink/internal/agent"
	"github.com/clide-ide/agentlink/internal/config"
	"github.com/clide-ide/agentlink/internal/domain"
	"github.com/clide-ide/agentlink/internal/store"
)

func newSendCmd() *cobra.Command {
	var (
		profileID string
		filePath  string
		line      int
		col       int
		selection string
		language  string
		timeout   time.Duration
		noHistory bool
	)

	cmd := &cobra.Command{
		Use:   "send [content]",
		Short: "Send source content to the agent and print its events",
		Long: "Sends one request to the configured agent and prints events as they " +
			"arrive. Content comes from the arguments, or from --file, or from stdin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load(paths.Settings)
			if err != nil {
				return err
			}

			content, err := resolveContent(args, filePath)
			if err != nil {
				return err
			}

			workspace, err := os.Getwd()
			if err != nil {
				return err
			}

			mgr := agent.NewManager(settings, paths.Settings, workspace, log)
			defer mgr.Close()

			if profileID != "" {
				if err := mgr.ActivateProfile(profileID); err != nil {
					return err
				}
			} else if err := mgr.EnsureActive(); err != nil {
				return err
			}

			var db *store.DB
			if !noHistory {
				db, err = store.Open(paths.History, log)
				if err != nil {
					return err
				}
				defer db.Close()
			}

			active, _ := mgr.ActiveProfile()
			req := domain.NewRequest(optional(filePath), content, line, col)
			req.Selection = optional(selection)
			req.Language = optional(language)
			meta, _ := json.Marshal(map[string]string{"request_id": uuid.NewString()})
			req.Metadata = meta

			recordEntry(db, active.ID, domain.UserPromptEntry(summarize(content)))

			if err := mgr.Send(req); err != nil {
				return err
			}

			// Local process backends stream until the process exits; the
			// request/response transports finish after their first answer.
			oneShot := active.Transport.Kind != config.TransportLocalProcess

			ticker := time.NewTicker(250 * time.Millisecond)
			defer ticker.Stop()
			deadline := time.After(timeout)

			for {
				ev, ok := mgr.PollEvent()
				if !ok {
					select {
					case <-ticker.C:
						continue
					case <-deadline:
						return fmt.Errorf("no response within %s", timeout)
					}
				}

				printEvent(cmd, ev)
				if entry, ok := domain.EntryFromEvent(ev); ok {
					recordEntry(db, active.ID, entry)
				}

				switch ev.Kind {
				case domain.EventTerminated:
					return nil
				case domain.EventResponse, domain.EventError:
					if oneShot {
						return nil
					}
				}
			}
		},
	}

	cmd.Flags().StringVar(&profileID, "profile", "", "agent profile id (default: the configured default)")
	cmd.Flags().StringVar(&filePath, "file", "", "source file to send (also sets the request file path)")
	cmd.Flags().IntVar(&line, "line", 0, "zero-based cursor line")
	cmd.Flags().IntVar(&col, "col", 0, "zero-based cursor column")
	cmd.Flags().StringVar(&selection, "selection", "", "selected text, if any")
	cmd.Flags().StringVar(&language, "language", "", "source language hint")
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "how long to wait for events")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "do not record this exchange")

	return cmd
}

func resolveContent(args []string, filePath string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", filePath, err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func summarize(content string) string {
	const max = 120
	line, _, _ := strings.Cut(content, "\n")
	runes := []rune(line)
	if len(runes) > max {
		return string(runes[:max]) + "…"
	}
	return line
}

func printEvent(cmd *cobra.Command, ev domain.Event) {
	out := cmd.OutOrStdout()
	switch ev.Kind {
	case domain.EventConnected:
		fmt.Fprintf(out, "connected: %s\n", ev.Name)
	case domain.EventResponse:
		fmt.Fprintf(out, "\n%s\n", ev.Response.Title)
		if ev.Response.Detail != "" {
			fmt.Fprintln(out, ev.Response.Detail)
		}
		if ev.Response.Patch != nil {
			fmt.Fprintf(out, "\n--- suggested patch ---\n%s\n", *ev.Response.Patch)
		}
	case domain.EventToolOutput:
		fmt.Fprintf(out, "[%s] %s\n", ev.Tool, ev.Detail)
	case domain.EventError:
		fmt.Fprintf(cmd.ErrOrStderr(), "error: %s\n", ev.Message)
	case domain.EventTerminated:
		fmt.Fprintln(out, "agent stream ended")
	}
}

func recordEntry(db *store.DB, profileID string, entry domain.PanelEntry) {
	if db == nil {
		return
	}
	if _, err := db.AppendEntry(profileID, entry); err != nil {
		log.Warn().Err(err).Msg("recording history entry")
	}
}
