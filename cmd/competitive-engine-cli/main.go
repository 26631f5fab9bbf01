// Package main provides the Competitive Engine CLI entrypoint.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/geolens-ai/geolens/libs/competitive-engine/internal/apiclient"
	"github.com/geolens-ai/geolens/libs/competitive-engine/internal/cache"
	"github.com/geolens-ai/geolens/libs/competitive-engine/internal/config"
	"github.com/geolens-ai/geolens/libs/competitive-engine/internal/engine"
	"github.com/geolens-ai/geolens/libs/competitive-engine/internal/observability"
	"github.com/geolens-ai/geolens/libs/competitive-engine/internal/report"
)

var (
	// Global flags
	cfgFile    string
	outputJSON bool
	noColor    bool

	// Configuration and logger
	cfg    *config.Config
	logger *observability.Logger
	ui     *UI
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "competitive-engine-cli",
	Short: "Competitive Engine CLI for AI visibility analyses",
	Long: `Competitive Engine CLI analyzes how well a site and its competitors
are optimized for AI-driven search (LLMO/GEO).

Use this tool to:
- Run a competitive analysis for a URL
- List and inspect past analyses
- Manage the local analysis cache

All commands support --json for automation.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logFormat := "console"
		if outputJSON {
			logFormat = "json"
		}

		logger = observability.NewLogger(observability.LogConfig{
			Level:       cfg.Observability.LogLevel,
			Format:      logFormat,
			ServiceName: "competitive-engine-cli",
		})

		ui = NewUI(outputJSON, noColor)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default: uses env vars)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newGetCmd())
	rootCmd.AddCommand(newDeleteCmd())
	rootCmd.AddCommand(newClearCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildEngine wires the backend client, cache store and engine from config.
// The returned closer releases the store.
func buildEngine() (*engine.Engine, func(), error) {
	backend, err := apiclient.NewClient(apiclient.Config{
		BaseURL:       cfg.Backend.BaseURL,
		SessionCookie: cfg.Backend.SessionCookie,
		Timeout:       cfg.Backend.Timeout,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create backend client: %w", err)
	}

	store, err := cache.New(cfg.Cache, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("create cache store: %w", err)
	}

	eng := engine.New(backend, store, cfg.Engine, logger)
	return eng, func() { _ = store.Close() }, nil
}

// newAnalyzeCmd creates the analyze subcommand.
func newAnalyzeCmd() *cobra.Command {
	var targetURL string

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run a competitive analysis for a URL",
		Long: `Analyze submits the URL to the analysis backend, waits for the AI
visibility enrichment, and prints the scored report with competitor
rankings. If enrichment does not arrive in time a provisional result is
shown; re-run list later to see the completed analysis.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()

			eng, closeEngine, err := buildEngine()
			if err != nil {
				return err
			}
			defer closeEngine()

			stop := ui.Spinner("Analyzing " + targetURL)
			result, err := eng.Analyze(ctx, targetURL)
			stop()
			if err != nil {
				ui.Error("Analysis failed: %v", err)
				return err
			}

			if outputJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}

			printResult(result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetURL, "url", "u", "", "site URL to analyze (required)")
	_ = cmd.MarkFlagRequired("url")

	return cmd
}

// newListCmd creates the list subcommand.
func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List known analyses",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			eng, closeEngine, err := buildEngine()
			if err != nil {
				return err
			}
			defer closeEngine()

			results, err := eng.List(ctx)
			if err != nil {
				return fmt.Errorf("list analyses: %w", err)
			}

			if outputJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}

			if len(results) == 0 {
				ui.Info("No analyses found")
				return nil
			}

			for _, r := range results {
				fmt.Printf("%s  %-30s  score %3d  rank %d/%d  %s\n",
					r.Timestamp.Format("2006-01-02 15:04"),
					r.UserSite.Domain,
					r.UserSite.Report.TotalScore,
					r.Summary.UserRank,
					r.Summary.TotalAnalyzed,
					r.ID)
			}
			return nil
		},
	}
}

// newGetCmd creates the get subcommand.
func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <analysis-id>",
		Short: "Show a single analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			eng, closeEngine, err := buildEngine()
			if err != nil {
				return err
			}
			defer closeEngine()

			result, err := eng.GetByID(ctx, args[0])
			if err != nil {
				return fmt.Errorf("get analysis: %w", err)
			}
			if result == nil {
				ui.Warning("Analysis %s not found", args[0])
				return nil
			}

			if outputJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}

			printResult(result)
			return nil
		},
	}
}

// newDeleteCmd creates the delete subcommand.
func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <analysis-id>",
		Short: "Remove an analysis from the local cache",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			eng, closeEngine, err := buildEngine()
			if err != nil {
				return err
			}
			defer closeEngine()

			if err := eng.Delete(ctx, args[0]); err != nil {
				return fmt.Errorf("delete analysis: %w", err)
			}

			ui.Success("Removed %s from local cache", args[0])
			return nil
		},
	}
}

// newClearCmd creates the clear subcommand.
func newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the local analysis cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			eng, closeEngine, err := buildEngine()
			if err != nil {
				return err
			}
			defer closeEngine()

			if err := eng.Clear(ctx); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			ui.Success("Local cache cleared")
			return nil
		},
	}
}

// newVersionCmd creates the version subcommand.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			if outputJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.Encode(map[string]string{"version": "0.1.0"})
				return
			}
			fmt.Println("competitive-engine-cli v0.1.0")
		},
	}
}

// printResult renders a full analysis to the terminal.
func printResult(result *report.CompetitiveAnalysisResult) {
	ui.Section("Analysis " + result.ID)
	ui.KeyValue("Analyzed at", result.Timestamp.Format(time.RFC3339))

	user := result.UserSite
	ui.KeyValue("Site", user.Domain)
	ui.KeyValue("Total score", fmt.Sprintf("%d/100 (%s)", user.Report.TotalScore, user.Report.Grade))
	ui.KeyValue("Rank", fmt.Sprintf("%d of %d", result.Summary.UserRank, result.Summary.TotalAnalyzed))

	ui.Section("Axis Scores")
	printAxis("Credibility & Authority", user.Report.CredibilityAuthority)
	printAxis("Structure & Readability", user.Report.StructureReadability)
	printAxis("Contextual Relevance", user.Report.ContextualRelevance)
	printAxis("Technical Compatibility", user.Report.TechnicalCompatibility)

	if len(result.Competitors) > 0 {
		ui.Section("Competitors")
		for _, c := range result.Competitors {
			fmt.Printf("  %-30s  %3d/100  %s\n", c.Domain, c.Report.TotalScore, c.Report.Grade)
		}
	}

	ui.Section("Strengths")
	ui.List(result.Summary.StrengthsVsCompetitors)
	ui.Section("Weaknesses")
	ui.List(result.Summary.WeaknessesVsCompetitors)
	ui.Section("Opportunities")
	ui.List(result.Summary.OpportunitiesIdentified)

	if len(user.Report.PrimaryRecommendations) > 0 {
		ui.Section("Recommendations")
		ui.List(user.Report.PrimaryRecommendations)
	}
}

func printAxis(name string, axis report.AxisScore) {
	fmt.Printf("  %-26s %2d/20\n", name, axis.Score)
}
