package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/trogers1052/gold-quote-crawler/internal/database"
	"go.uber.org/zap"
)

var retainDays int

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete PostgreSQL quotes older than the retention period.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if retainDays <= 0 {
			return errors.New("--days must be positive")
		}
		ctx := cmd.Context()

		db, err := database.New(cfg.Database.ConnectionString())
		if err != nil {
			return err
		}
		defer db.Close()

		cutoff := time.Now().AddDate(0, 0, -retainDays)
		deleted, err := db.DeleteQuotesOlderThan(ctx, cutoff)
		if err != nil {
			return err
		}
		remaining, err := db.CountQuotes(ctx)
		if err != nil {
			return err
		}

		logger.Info("pruned quotes", zap.Int64("deleted", deleted), zap.Int64("remaining", remaining))
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %d quotes, %d remain\n", deleted, remaining)
		return nil
	},
}

func init() {
	pruneCmd.Flags().IntVar(&retainDays, "days", 365, "keep quotes from the last N days")
	rootCmd.AddCommand(pruneCmd)
}
