package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Game session commands",
	}

	cmd.AddCommand(newSessionCreateCmd())
	cmd.AddCommand(newSessionListCmd())
	cmd.AddCommand(newSessionGetCmd())
	cmd.AddCommand(newSessionJoinCmd())
	cmd.AddCommand(newSessionMoveCmd())
	cmd.AddCommand(newSessionPreviewCmd())
	cmd.AddCommand(newSessionSkipCmd())
	cmd.AddCommand(newSessionHintsCmd())
	cmd.AddCommand(newSessionAddBotCmd())

	return cmd
}

// placementArg is one placement in request form
type placementArg struct {
	Letter string `json:"letter"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
}

// parsePlacements reads placements written as LETTER@ROW,COL
func parsePlacements(args []string) ([]placementArg, error) {
	out := make([]placementArg, 0, len(args))
	for _, arg := range args {
		letter, pos, ok := strings.Cut(arg, "@")
		if !ok || letter == "" {
			return nil, fmt.Errorf("invalid placement %q: want LETTER@ROW,COL", arg)
		}
		rowStr, colStr, ok := strings.Cut(pos, ",")
		if !ok {
			return nil, fmt.Errorf("invalid placement %q: want LETTER@ROW,COL", arg)
		}
		row, err := strconv.Atoi(strings.TrimSpace(rowStr))
		if err != nil {
			return nil, fmt.Errorf("invalid row in %q: %w", arg, err)
		}
		col, err := strconv.Atoi(strings.TrimSpace(colStr))
		if err != nil {
			return nil, fmt.Errorf("invalid column in %q: %w", arg, err)
		}
		out = append(out, placementArg{Letter: letter, Row: row, Col: col})
	}
	return out, nil
}

func newSessionCreateCmd() *cobra.Command {
	var join bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new session",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Snapshot
			if err := client.Post(apiPath("sessions"), nil, &result); err != nil {
				return err
			}

			if join {
				if err := client.Post(apiPath("sessions", result.Session.ID, "join"), nil, &result); err != nil {
					return err
				}
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&join, "join", false, "Join the session after creating it")

	return cmd
}

func newSessionListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List sessions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []SessionSummary
			if err := client.Get(apiPath("sessions"), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newSessionGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <session-id>",
		Short: "Show a session snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Snapshot
			if err := client.Get(apiPath("sessions", args[0]), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newSessionJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join <session-id>",
		Short: "Join a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Snapshot
			if err := client.Post(apiPath("sessions", args[0], "join"), nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newSessionMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <session-id> LETTER@ROW,COL...",
		Short: "Submit a move",
		Long: `Submit a move. Each placement is written LETTER@ROW,COL with 0-indexed
coordinates, in the order the word is read:

  bscrabble session move <id> ঘ@7,7 র@7,8`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			placements, err := parsePlacements(args[1:])
			if err != nil {
				return err
			}

			var result MoveResult
			req := map[string]any{"placements": placements}
			if err := client.Post(apiPath("sessions", args[0], "moves"), req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newSessionPreviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preview <session-id> LETTER@ROW,COL...",
		Short: "Score a move without playing it",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			placements, err := parsePlacements(args[1:])
			if err != nil {
				return err
			}

			var result Evaluation
			req := map[string]any{"placements": placements}
			if err := client.Post(apiPath("sessions", args[0], "preview"), req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newSessionSkipCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "skip <session-id>",
		Short: "Pass the turn",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Snapshot
			if err := client.Post(apiPath("sessions", args[0], "skip"), nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newSessionHintsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hints <session-id>",
		Short: "Suggest words formable from your rack",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Hints
			if err := client.Get(apiPath("sessions", args[0], "hints"), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newSessionAddBotCmd() *cobra.Command {
	var strategy string

	cmd := &cobra.Command{
		Use:   "add-bot <session-id>",
		Short: "Seat a bot player in a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Player
			req := map[string]string{"strategy": strategy}
			if err := client.Post(apiPath("sessions", args[0], "bots"), req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&strategy, "strategy", "word", "Bot strategy: word, pass")

	return cmd
}
