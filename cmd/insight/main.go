package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/humanintuition/insight/internal/analysis"
	"github.com/humanintuition/insight/internal/config"
	"github.com/humanintuition/insight/internal/grok"
)

var version = "dev"

var noColor bool

var rootCmd = &cobra.Command{
	Use:   "insight",
	Short: "Analyze conversation transcripts for relational dynamics, emotional patterns, and behavioral profiles",
	Long: `insight turns raw conversation transcripts — text files or audio
recordings — into structured analysis: behavioral profiles, emotional
trajectory maps, and layered relational breakdowns.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(emotionsCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(transcribeCmd)
	rootCmd.AddCommand(agentCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)

	if err := rootCmd.Execute(); err != nil {
		printError("%v", err)
		os.Exit(1)
	}
}

// loadConfig loads configuration and points slog at stderr with the
// configured level. Every RunE goes through here.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}

	logLevel := slog.LevelInfo
	if strings.EqualFold(cfg.Log.Level, "debug") {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	return cfg, nil
}

// newAnalyzer builds the Grok-backed analyzer, failing early when no API key
// is configured.
func newAnalyzer(cfg config.Config) (*analysis.Analyzer, error) {
	if err := cfg.RequireGrokKey(); err != nil {
		return nil, err
	}
	client := grok.NewClientWithBaseURL(cfg.Grok.APIKey, cfg.Grok.BaseURL)
	return analysis.New(client, cfg.Grok.Model), nil
}
