package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Session commands",
	}

	cmd.AddCommand(newSessionStartCmd())
	cmd.AddCommand(newSessionGetCmd())
	cmd.AddCommand(newSessionSubmitCmd())

	return cmd
}

func newSessionStartCmd() *cobra.Command {
	var settingsJSON string

	cmd := &cobra.Command{
		Use:   "start <game-id>",
		Short: "Start a new session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{"game_id": args[0]}
			if settingsJSON != "" {
				var settings map[string]any
				if err := json.Unmarshal([]byte(settingsJSON), &settings); err != nil {
					return fmt.Errorf("invalid settings JSON: %w", err)
				}
				req["settings"] = settings
			}

			var result Session

			if err := client.Post("/api/v1/sessions", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&settingsJSON, "settings", "", "Session settings as a JSON object")

	return cmd
}

func newSessionGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <session-id>",
		Short: "Show one of your sessions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Session

			if err := client.Get(fmt.Sprintf("/api/v1/sessions/%s", args[0]), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newSessionSubmitCmd() *cobra.Command {
	var proofRef string

	cmd := &cobra.Command{
		Use:   "submit <session-id> <score>",
		Short: "Submit the final score for a session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			score, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid score: %w", err)
			}

			req := map[string]any{"score": score}
			if proofRef != "" {
				req["proof_ref"] = proofRef
			}

			var result SubmissionResult

			if err := client.Post(fmt.Sprintf("/api/v1/sessions/%s/score", args[0]), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&proofRef, "proof", "", "Verification proof reference")

	return cmd
}
