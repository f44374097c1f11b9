// Package main provides matchctl, an operator CLI for running matches and
// managing the reference documents the server reads.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/garyellow/programme-matcher/internal/app"
	"github.com/garyellow/programme-matcher/internal/config"
	"github.com/garyellow/programme-matcher/internal/logger"
	"github.com/garyellow/programme-matcher/internal/refdata"
)

var rootCmd = &cobra.Command{
	Use:           "matchctl",
	Short:         "Programme matcher operator tool",
	Long:          "matchctl computes trait codes, matches majors, recommends modules and manages reference data outside the API server.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	sourceFlag   string
	dirFlag      string
	logLevelFlag string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&sourceFlag, "source", "", "Reference source: file or r2 (default from PM_REFERENCE_SOURCE)")
	rootCmd.PersistentFlags().StringVar(&dirFlag, "dir", "", "Reference directory when --source=file (default from PM_REFERENCE_DIR)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "warn", "Log level for diagnostics written to stderr")
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads settings from the environment and applies the
// command-line reference overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if sourceFlag != "" {
		cfg.Reference.Source = sourceFlag
	}
	if dirFlag != "" {
		cfg.Reference.Dir = dirFlag
	}
	if err := cfg.Reference.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func referenceConfig() (config.ReferenceConfig, error) {
	cfg, err := loadConfig()
	if err != nil {
		return config.ReferenceConfig{}, err
	}
	return cfg.Reference, nil
}

func openStore(ctx context.Context) (*refdata.Store, error) {
	ref, err := referenceConfig()
	if err != nil {
		return nil, fmt.Errorf("reference config: %w", err)
	}
	src, err := app.NewSource(ctx, ref)
	if err != nil {
		return nil, err
	}
	return refdata.NewStore(src, refdata.WithLoadTimeout(ref.LoadTimeout)), nil
}

func newLogger() *logger.Logger {
	return logger.NewWithWriter(logLevelFlag, os.Stderr)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
