package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"council/internal/config"
	"council/internal/council"
	"council/internal/logging"
	"council/internal/report"
	"council/internal/transport"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

var (
	// Global flags
	verbose    bool
	configPath string

	// Run flags
	fastMode  bool
	outDir    string
	noSave    bool
	renderTTY bool

	cfg *config.Config
)

// rootCmd runs a full deliberation when given a question.
var rootCmd = &cobra.Command{
	Use:   "council [question]",
	Short: "LLM Council - multi-model strategic deliberation",
	Long: `council puts a question before a roster of LLM advisors and distills
their answers into one strategic plan.

Three stages: every councilor answers independently and concurrently; each
then reviews the anonymized answers of its peers; finally a chairman model
synthesizes everything into a structured verdict. Partial failures degrade
the run, only losing quorum aborts it.

Requires OPENROUTER_API_KEY (or transport.api_key in the config file).`,
	Args: cobra.ArbitraryArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		debug := cfg.Logging.Debug || verbose
		if err := logging.Initialize(cfg.Logging.Dir, debug, cfg.Logging.Level); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
	},
	RunE: runDeliberation,
}

// renderCmd re-renders a saved run artifact.
var renderCmd = &cobra.Command{
	Use:   "render [artifact.json]",
	Short: "Render a saved deliberation artifact as a styled report",
	Args:  cobra.ExactArgs(1),
	RunE:  renderArtifact,
}

// rosterCmd prints the configured council.
var rosterCmd = &cobra.Command{
	Use:   "roster",
	Short: "Show the configured councilors and chairman",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("Council roster (%s, quorum %d):\n", cfg.Name, cfg.Council.MinQuorum)
		for _, c := range cfg.Council.Councilors {
			role := c.Role
			if role == "" {
				role = "-"
			}
			fmt.Printf("  %-16s %-44s %s\n", c.Label, c.Model, role)
		}
		fmt.Printf("Chairman:\n  %-16s %s\n", cfg.Council.Chairman.Label, cfg.Council.Chairman.Model)
		return nil
	},
}

// initCmd writes the default config for editing.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("%s already exists, refusing to overwrite", configPath)
		}
		if err := config.DefaultConfig().Save(configPath); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", configPath)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("council %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", filepath.Join(".council", "config.yaml"), "Config file path")

	rootCmd.Flags().BoolVar(&fastMode, "fast", false, "Skip the peer-review stage")
	rootCmd.Flags().StringVar(&outDir, "out", filepath.Join(".council", "runs"), "Directory for run artifacts")
	rootCmd.Flags().BoolVar(&noSave, "no-save", false, "Print the artifact without writing it to disk")
	rootCmd.Flags().BoolVar(&renderTTY, "render", false, "Render the styled report instead of raw JSON")

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(rosterCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runDeliberation(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("no question given; try: council \"Should we build X?\"")
	}
	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return fmt.Errorf("question is empty")
	}

	if cfg.Transport.APIKey == "" {
		return fmt.Errorf("no API key: set OPENROUTER_API_KEY or transport.api_key in %s", configPath)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "interrupted, cancelling in-flight calls...")
		cancel()
	}()

	caller := transport.NewCallerWithConfig(transport.CallerConfig{
		APIKey:      cfg.Transport.APIKey,
		BaseURL:     cfg.Transport.BaseURL,
		Referer:     cfg.Transport.Referer,
		Title:       cfg.Transport.Title,
		Timeout:     cfg.RequestTimeout(),
		MaxRetries:  cfg.Transport.MaxRetries,
		MaxTokens:   cfg.Transport.MaxTokens,
		Temperature: cfg.Transport.Temperature,
	})

	roster := make([]council.Councilor, len(cfg.Council.Councilors))
	for i, c := range cfg.Council.Councilors {
		roster[i] = council.Councilor{ID: c.ID, Model: c.Model, Label: c.Label, Role: c.Role}
	}
	chairman := council.Councilor{
		ID:    cfg.Council.Chairman.ID,
		Model: cfg.Council.Chairman.Model,
		Label: cfg.Council.Chairman.Label,
	}

	fmt.Fprintf(os.Stderr, "Convening council of %d on: %s\n", len(roster), question)
	runner := council.NewRunner(caller, roster, chairman, cfg.Council.MinQuorum)
	result, err := runner.Run(ctx, question, fastMode)
	if err != nil {
		return err
	}

	artifact, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode run artifact: %w", err)
	}

	if !noSave {
		path, err := saveArtifact(artifact, result.Question)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved %s\n", path)
	}

	if renderTTY {
		doc, err := report.Parse(artifact)
		if err != nil {
			return err
		}
		styled, err := report.RenderTerminal(report.RenderMarkdown(doc), 0)
		if err != nil {
			return err
		}
		fmt.Print(styled)
		return nil
	}

	fmt.Println(string(artifact))
	return nil
}

// saveArtifact writes the run JSON under outDir with a timestamped,
// slugged file name and returns the path.
func saveArtifact(artifact []byte, question string) (string, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", outDir, err)
	}
	name := fmt.Sprintf("%s_%s.json",
		time.Now().Format("20060102_150405"),
		report.Slugify(question, 40))
	path := filepath.Join(outDir, name)
	if err := os.WriteFile(path, artifact, 0644); err != nil {
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}
	logging.Report("artifact written to %s", path)
	return path, nil
}

func renderArtifact(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read artifact: %w", err)
	}
	doc, err := report.Parse(data)
	if err != nil {
		return err
	}
	styled, err := report.RenderTerminal(report.RenderMarkdown(doc), 0)
	if err != nil {
		return err
	}
	fmt.Print(styled)
	return nil
}
