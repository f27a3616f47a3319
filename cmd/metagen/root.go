package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/JaYani55/aitinkerer-demo-101225/internal/ai"
	"github.com/JaYani55/aitinkerer-demo-101225/internal/batch"
	"github.com/JaYani55/aitinkerer-demo-101225/internal/config"
	"github.com/JaYani55/aitinkerer-demo-101225/internal/dataset"
	"github.com/JaYani55/aitinkerer-demo-101225/internal/ratelimit"
	"github.com/JaYani55/aitinkerer-demo-101225/internal/retry"
	"github.com/JaYani55/aitinkerer-demo-101225/internal/schema"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "metagen",
	Short: "Job metadata generator — categorize job listings with an LLM",
	Long:  "Metagen loads a jobs dataset, asks an OpenRouter-hosted model to fill the schema-defined metadata fields, and writes the results back.",
	// Default to `browse` so that `metagen` with no args opens the TUI.
	RunE: runBrowse,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: METAGEN_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > METAGEN_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("METAGEN_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

// openDataset loads the dataset file named in the config.
func openDataset(cfg *config.Config, logger *slog.Logger) (*dataset.Store, *dataset.Dataset, error) {
	store := dataset.NewStore(cfg.DatasetPath, logger)
	ds, err := store.Load()
	if err != nil {
		return nil, nil, err
	}
	return store, ds, nil
}

// buildExtractor wires the full provider stack: OpenRouter client, retry
// decorator, rate limiter, and the schema-validating extractor. Fails before
// any network call when no API key is configured. modelOverride, when
// non-empty, replaces the configured model for this invocation.
func buildExtractor(cfg *config.Config, modelOverride string, logger *slog.Logger) (batch.Extractor, string, error) {
	if err := cfg.Provider.RequireAPIKey(); err != nil {
		return nil, "", err
	}

	s, err := schema.Load(cfg.SchemaPath)
	if err != nil {
		return nil, "", err
	}

	modelID := cfg.Provider.Model
	if modelOverride != "" {
		modelID = modelOverride
	}

	httpClient := &http.Client{Timeout: cfg.Provider.Timeout}
	var provider ai.LLMProvider = ai.NewOpenRouterProvider(
		cfg.Provider.BaseURL,
		cfg.Provider.APIKey,
		modelID,
		cfg.Provider.Referer,
		cfg.Provider.AppTitle,
		httpClient,
	)
	provider = retry.NewRetryProvider(provider, cfg.Retry.MaxRetries, cfg.Retry.BaseDelay, logger)

	limiter := ratelimit.NewModelRateLimiter(cfg.RateLimit.MinDelay)
	provider = ratelimit.NewRateLimitedProvider(provider, limiter, modelID)

	extractor := ai.NewMetadataExtractor(provider, s, ai.MetadataPromptTemplate, logger)
	return extractor, modelID, nil
}
