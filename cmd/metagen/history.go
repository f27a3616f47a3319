package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JaYani55/aitinkerer-demo-101225/internal/history"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent extraction attempts",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "max attempts to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	h, err := history.NewSQLiteHistory(cfg.HistoryDB)
	if err != nil {
		logger.Error("failed to open run history", "error", err)
		os.Exit(1)
	}
	defer h.Close()

	counts, err := h.CountByStatus()
	if err != nil {
		logger.Error("failed to read history", "error", err)
		os.Exit(1)
	}
	fmt.Printf("attempts: %d ok, %d provider errors, %d malformed responses\n",
		counts[history.StatusOK], counts[history.StatusProvider], counts[history.StatusMalformed])

	attempts, err := h.Recent(historyLimit)
	if err != nil {
		logger.Error("failed to read history", "error", err)
		os.Exit(1)
	}
	for _, a := range attempts {
		line := fmt.Sprintf("%s  job %-5d %-20s %-18s %6dms",
			a.At.Format("2006-01-02 15:04:05"), a.JobID, a.Model, a.Status, a.Duration.Milliseconds())
		if a.Error != "" {
			line += "  " + a.Error
		}
		fmt.Println(line)
	}
	return nil
}
