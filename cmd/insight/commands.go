package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/humanintuition/insight/internal/config"
	"github.com/humanintuition/insight/internal/profile"
	"github.com/humanintuition/insight/internal/storage"
	"github.com/humanintuition/insight/internal/transcript"
	"github.com/humanintuition/insight/internal/whisper"
)

// recordRun appends a completed run to the history database. History is a
// convenience, not a requirement, so failures only log.
func recordRun(cfg config.Config, kind, title string, sourceFiles []string, contextNote, transcriptText, result string) {
	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		slog.Warn("skipping history record", "error", err)
		return
	}
	defer store.Close()

	files, err := json.Marshal(sourceFiles)
	if err != nil {
		files = []byte("[]")
	}
	a := storage.Analysis{
		ID:          uuid.New().String(),
		CreatedAt:   time.Now().UTC(),
		Kind:        kind,
		Title:       title,
		SourceFiles: string(files),
		ContextNote: contextNote,
		Transcript:  transcriptText,
		Result:      result,
	}
	if err := store.SaveAnalysis(a); err != nil {
		slog.Warn("failed to record run in history", "error", err)
	}
}

// --- profile ---

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Build or inspect the behavioral profile",
}

var profileBuildCmd = &cobra.Command{
	Use:   "build <transcript>...",
	Short: "Build a behavioral profile JSON from transcripts",
	Long: `Build a behavioral profile from one or more conversation transcripts.

Accepts .txt, .md, and .pdf files. All transcripts are combined into a
single model call.

Examples:
  insight profile build sessions/*.txt
  insight profile build call1.txt call2.pdf --context "weekly 1:1s with my manager"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		contextNote, _ := cmd.Flags().GetString("context")
		output, _ := cmd.Flags().GetString("output")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		analyzer, err := newAnalyzer(cfg)
		if err != nil {
			return err
		}

		printStep("Reading %d transcript file(s)...", len(args))
		combined, err := transcript.CombineFiles(args)
		if err != nil {
			return err
		}

		printStep("Building profile with %s...", analyzer.Model())
		doc, err := analyzer.BuildProfile(cmd.Context(), combined, contextNote)
		if err != nil {
			return err
		}

		if missing, err := profile.MissingKeys(doc); err == nil && len(missing) > 0 {
			printWarning("Profile is missing expected sections: %s", strings.Join(missing, ", "))
		}

		if err := profile.Save(output, doc); err != nil {
			return err
		}

		recordRun(cfg, storage.KindProfile, "profile build", args, contextNote, combined, string(doc))
		printSuccess("Saved profile to %s", output)
		return nil
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the saved profile as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("profile")

		doc, err := profile.Load(path)
		if err != nil {
			return err
		}
		formatted, err := profile.Indented(doc)
		if err != nil {
			return err
		}
		fmt.Println(formatted)
		return nil
	},
}

func init() {
	profileBuildCmd.Flags().String("context", "", "context about the person or conversations")
	profileBuildCmd.Flags().String("output", profile.DefaultPath, "output JSON profile file")
	profileShowCmd.Flags().String("profile", profile.DefaultPath, "profile file to show")
	profileCmd.AddCommand(profileBuildCmd)
	profileCmd.AddCommand(profileShowCmd)
}

// --- emotions ---

var emotionsCmd = &cobra.Command{
	Use:   "emotions <transcript>",
	Short: "Map the emotional trajectory of a conversation",
	Long: `Map the emotional trajectory of a single conversation transcript.

Produces a JSON document with a per-chunk timeline and a global summary
per speaker.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		analyzer, err := newAnalyzer(cfg)
		if err != nil {
			return err
		}

		text, err := transcript.Load(args[0])
		if err != nil {
			return err
		}

		printStep("Mapping emotions with %s...", analyzer.Model())
		doc, err := analyzer.MapEmotions(cmd.Context(), text)
		if err != nil {
			return err
		}

		var buf strings.Builder
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("formatting emotional map: %w", err)
		}
		if err := os.WriteFile(output, []byte(buf.String()), 0o644); err != nil {
			return fmt.Errorf("writing emotional map: %w", err)
		}

		recordRun(cfg, storage.KindEmotions, "emotional map", args, "", text, string(doc))
		printSuccess("Saved emotional map to %s", output)
		return nil
	},
}

func init() {
	emotionsCmd.Flags().String("output", "emotional_map.json", "output JSON file")
}

// --- analyze ---

var analyzeCmd = &cobra.Command{
	Use:   "analyze <transcript>...",
	Short: "Run a layered relational analysis of a conversation",
	Long: `Analyze a conversation transcript through four layers: surface content,
emotional dynamics, psychological drivers, and systemic patterns.

The markdown analysis is written to stdout.

Examples:
  insight analyze dinner.txt
  insight analyze call.txt --context "conversation with my brother about our mother's care"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		contextNote, _ := cmd.Flags().GetString("context")
		output, _ := cmd.Flags().GetString("output")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		analyzer, err := newAnalyzer(cfg)
		if err != nil {
			return err
		}

		combined, err := loadForAnalysis(args)
		if err != nil {
			return err
		}

		printStep("Analyzing with %s...", analyzer.Model())
		markdown, err := analyzer.Analyze(cmd.Context(), combined, contextNote)
		if err != nil {
			return err
		}

		if output != "" {
			if err := os.WriteFile(output, []byte(markdown), 0o644); err != nil {
				return fmt.Errorf("writing analysis: %w", err)
			}
			printSuccess("Saved analysis to %s", output)
		} else {
			fmt.Println(markdown)
		}

		recordRun(cfg, storage.KindAnalysis, "analysis", args, contextNote, combined, markdown)
		return nil
	},
}

// loadForAnalysis returns a single transcript raw, or the headered
// combination when several files are given. The analysis prompt expects
// bare transcript text for a single conversation.
func loadForAnalysis(paths []string) (string, error) {
	if len(paths) == 1 {
		return transcript.Load(paths[0])
	}
	return transcript.CombineFiles(paths)
}

func init() {
	analyzeCmd.Flags().String("context", "", "context about the conversation")
	analyzeCmd.Flags().String("output", "", "write the markdown analysis to a file instead of stdout")
}

// --- transcribe ---

var transcribeCmd = &cobra.Command{
	Use:   "transcribe <audio>...",
	Short: "Transcribe audio recordings to text",
	Long: fmt.Sprintf(`Transcribe audio recordings using the Whisper API.

Supported formats: %s.`, strings.Join(whisper.SupportedExtensions(), ", ")),
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.RequireWhisperKey(); err != nil {
			return err
		}
		client := whisper.New(cfg.Whisper.APIKey, cfg.Whisper.BaseURL, cfg.Whisper.Model)

		var parts []string
		for _, path := range args {
			printStep("Transcribing %s...", path)
			text, err := client.TranscribeFile(cmd.Context(), path)
			if err != nil {
				return fmt.Errorf("transcribing %s: %w", path, err)
			}
			parts = append(parts, text)
		}
		full := strings.Join(parts, "\n\n")

		if output != "" {
			if err := os.WriteFile(output, []byte(full), 0o644); err != nil {
				return fmt.Errorf("writing transcript: %w", err)
			}
			printSuccess("Transcript saved to %s", output)
		} else {
			fmt.Println(full)
		}

		recordRun(cfg, storage.KindTranscription, "transcription", args, "", "", full)
		return nil
	},
}

func init() {
	transcribeCmd.Flags().String("output", "", "write the transcript to a file instead of stdout")
}

// --- history ---

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse stored analysis runs",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		kind, _ := cmd.Flags().GetString("kind")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := storage.Open(cfg.Storage.DataDir)
		if err != nil {
			return err
		}
		defer store.Close()

		analyses, err := store.ListAnalyses(kind, limit)
		if err != nil {
			return err
		}
		if len(analyses) == 0 {
			fmt.Println("No runs found.")
			return nil
		}

		for _, a := range analyses {
			title := a.Title
			if len(title) > 60 {
				title = title[:60] + "..."
			}
			fmt.Printf("%s  %s  %-13s  %s\n",
				colorize(colorCyan, a.ID[:8]),
				a.CreatedAt.Format("2006-01-02 15:04"),
				a.Kind,
				title,
			)
		}
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a single run as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := storage.Open(cfg.Storage.DataDir)
		if err != nil {
			return err
		}
		defer store.Close()

		a, err := store.GetAnalysis(args[0])
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(a)
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := storage.Open(cfg.Storage.DataDir)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.DeleteAnalysis(args[0]); err != nil {
			return err
		}
		printSuccess("Deleted %s", args[0])
		return nil
	},
}

func init() {
	historyListCmd.Flags().Int("limit", 20, "maximum number of runs to list")
	historyListCmd.Flags().String("kind", "", fmt.Sprintf("filter by kind (%s, %s, %s, %s)",
		storage.KindProfile, storage.KindEmotions, storage.KindAnalysis, storage.KindTranscription))
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDeleteCmd)
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		keys := config.ShowAll(cfg)
		for _, k := range keys {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 2 {
			return fmt.Errorf("usage: insight config set <key> <value> (valid keys: %s)",
				strings.Join(config.ValidKeys(), ", "))
		}
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
