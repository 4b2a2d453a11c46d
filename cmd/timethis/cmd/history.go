package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/psantana5/timethis/internal/store"
)

var (
	historyLabel string
	historyLimit int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored measurements",
	Long: `History lists measurements saved to the SQLite database given by
--history-db (or history_db in the config file), newest first.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVar(&historyLabel, "label", "", "only show measurements with this label")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum number of measurements to show (0 for all)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	if cfg.HistoryDB == "" {
		return errors.New("no history database configured: set --history-db or history_db")
	}

	history, err := store.Open(cfg.HistoryDB)
	if err != nil {
		return err
	}
	defer history.Close()

	results, err := history.List(cmd.Context(), historyLabel, historyLimit)
	if err != nil {
		return err
	}

	if err := printResults(cmd.OutOrStdout(), cfg.Output, results); err != nil {
		return fmt.Errorf("failed to print history: %w", err)
	}
	return nil
}
