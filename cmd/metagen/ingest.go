package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JaYani55/aitinkerer-demo-101225/internal/ingest"
)

var (
	concatDataDir       string
	concatOutput        string
	concatEmbeddings    bool
	concatNoDescription bool

	freshInput  string
	freshOutput string
)

var concatCmd = &cobra.Command{
	Use:   "concat",
	Short: "Merge CSV table exports into a unified JSON dataset",
	Long:  "Reads jobs_rows.csv, jobs_archiviert_rows.csv, employers_rows.csv and jobsource_rows.csv, resolves the relations, and writes one unified dataset file.",
	RunE:  runConcat,
}

var freshdatasetCmd = &cobra.Command{
	Use:   "freshdataset",
	Short: "Strip generated metadata from a unified dataset",
	Long:  "Reads a unified dataset and writes a copy with CategorizedData cleared from every job, ready for a new generation round.",
	RunE:  runFreshdataset,
}

func init() {
	concatCmd.Flags().StringVar(&concatDataDir, "data-dir", "data", "directory holding the CSV exports")
	concatCmd.Flags().StringVarP(&concatOutput, "output", "o", "data/unified_jobs.json", "output file path")
	concatCmd.Flags().BoolVar(&concatEmbeddings, "include-embeddings", false, "include the job_embedding column (increases file size significantly)")
	concatCmd.Flags().BoolVar(&concatNoDescription, "exclude-descriptions", false, "exclude job descriptions to reduce file size")
	rootCmd.AddCommand(concatCmd)

	freshdatasetCmd.Flags().StringVarP(&freshInput, "input", "i", "data/unified_jobs.json", "input unified dataset")
	freshdatasetCmd.Flags().StringVarP(&freshOutput, "output", "o", "data/jobs_dataset.json", "output file path")
	rootCmd.AddCommand(freshdatasetCmd)
}

func runConcat(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	summary, err := ingest.Concat(ingest.ConcatOptions{
		DataDir:             concatDataDir,
		OutputPath:          concatOutput,
		IncludeEmbeddings:   concatEmbeddings,
		IncludeDescriptions: !concatNoDescription,
	}, logger)
	if err != nil {
		logger.Error("concat failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("wrote %s: %d jobs (%d active, %d archived), %d employers, %d job sources\n",
		concatOutput, summary.TotalJobs, summary.ActiveJobs, summary.ArchivedJobs,
		summary.Employers, summary.JobSources)
	return nil
}

func runFreshdataset(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	jobs, err := ingest.FreshDataset(freshInput, freshOutput, logger)
	if err != nil {
		logger.Error("freshdataset failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("wrote %s: %d jobs without metadata\n", freshOutput, jobs)
	return nil
}
