package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"cabal/internal/config"
	"cabal/internal/db"
	"cabal/internal/game"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:          "cabalctl",
		Short:        "Cabal league admin tool",
		SilenceUsage: true,
	}

	root.AddCommand(
		newMigrateCmd(),
		newRecomputeCmd(),
		newStreaksCmd(),
		newLeaderboardCmd(),
	)

	if err := root.Execute(); err != nil {
		printError(err.Error())
		os.Exit(1)
	}
}

// openService wires a service straight to the database; the admin tool skips
// the HTTP surface so it keeps working while the API is down.
func openService(ctx context.Context) (*game.Service, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	policy, err := game.ParseRatingPolicy(cfg.RatingPolicy)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	svc := game.NewService(pool, logger, game.Settings{
		InitialRating: cfg.InitialRating,
		MaxBlue:       cfg.MaxBlue,
		Policy:        policy,
	})
	return svc, pool.Close, nil
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			pool, err := db.Connect(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()
			if err := db.Migrate(ctx, pool); err != nil {
				return err
			}
			printSuccess("Schema up to date.")
			return nil
		},
	}
}

func newRecomputeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recompute",
		Short: "Rebuild all derived player state by replaying match history",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
			defer cancel()
			svc, closeFn, err := openService(ctx)
			if err != nil {
				return err
			}
			defer closeFn()
			out, err := svc.RecomputeAll(ctx)
			if err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Recomputed %d matches across %d players (%d spend ledgers netted).",
				out.MatchesProcessed, out.PlayersAffected, out.PurchasesNetted))
			return nil
		},
	}
}

func newStreaksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "streaks <player-id>",
		Short: "Show a player's current and best win/lose streaks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			playerID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid player id %q", args[0])
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			svc, closeFn, err := openService(ctx)
			if err != nil {
				return err
			}
			defer closeFn()
			out, err := svc.PlayerStreaks(ctx, playerID)
			if err != nil {
				return err
			}
			fmt.Printf("current win: %d  current lose: %d\n", out.CurrentWin, out.CurrentLose)
			fmt.Printf("best win:    %d  worst lose:   %d\n", out.MaxWin, out.MaxLose)
			return nil
		},
	}
}

func newLeaderboardCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "leaderboard [rating|coins]",
		Short: "Print a leaderboard",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			board := "rating"
			if len(args) == 1 {
				board = args[0]
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			svc, closeFn, err := openService(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			var rows []game.LeaderboardRow
			switch board {
			case "rating":
				rows, err = svc.LeaderboardByRating(ctx, limit)
			case "coins":
				rows, err = svc.LeaderboardByCoins(ctx, limit)
			default:
				return fmt.Errorf("unknown leaderboard %q (want rating or coins)", board)
			}
			if err != nil {
				return err
			}
			printLeaderboard(board, rows)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 25, "maximum rows to print")
	return cmd
}
