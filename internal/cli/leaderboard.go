package cli

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

func newLeaderboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Leaderboard commands",
	}

	cmd.AddCommand(newLeaderboardGlobalCmd())
	cmd.AddCommand(newLeaderboardGameCmd())

	return cmd
}

func newLeaderboardGlobalCmd() *cobra.Command {
	var period string
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "global",
		Short: "Show the cross-game leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Leaderboard

			path := "/api/v1/leaderboards/global" + rankingQuery(period, limit, offset)
			if err := client.Get(path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	addRankingFlags(cmd, &period, &limit, &offset)

	return cmd
}

func newLeaderboardGameCmd() *cobra.Command {
	var period string
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "game <game-id>",
		Short: "Show one game's leaderboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Leaderboard

			path := fmt.Sprintf("/api/v1/leaderboards/games/%s", args[0]) + rankingQuery(period, limit, offset)
			if err := client.Get(path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	addRankingFlags(cmd, &period, &limit, &offset)

	return cmd
}

func newRankCmd() *cobra.Command {
	var gameID string

	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Show your own all-time rank",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/rankings/me"
			if gameID != "" {
				path += "?game_id=" + url.QueryEscape(gameID)
			}

			var result UserRank

			if err := client.Get(path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&gameID, "game", "", "Rank within one game instead of globally")

	return cmd
}

func addRankingFlags(cmd *cobra.Command, period *string, limit, offset *int) {
	cmd.Flags().StringVar(period, "period", "all-time", "Ranking period: daily, weekly, monthly, all-time")
	cmd.Flags().IntVar(limit, "limit", 0, "Page size (0 for server default)")
	cmd.Flags().IntVar(offset, "offset", 0, "Page offset")
}

func rankingQuery(period string, limit, offset int) string {
	q := url.Values{}
	if period != "" {
		q.Set("period", period)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}
