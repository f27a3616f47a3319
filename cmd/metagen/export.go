package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export jobs that have metadata",
	Long:  "Writes {\"jobs\": [...]} containing only the jobs with generated metadata.",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "jobs_with_metadata.json", "output file path")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	store, ds, err := openDataset(cfg, logger)
	if err != nil {
		logger.Error("failed to load dataset", "error", err)
		os.Exit(1)
	}

	count, err := store.Export(ds, exportOutput)
	if err != nil {
		logger.Error("export failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("exported %d jobs with metadata to %s\n", count, exportOutput)
	return nil
}
