package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/networkiq/internal/analyzer"
	"github.com/jonathan/networkiq/internal/gateway"
	"github.com/jonathan/networkiq/internal/types"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <profile.json> [profile.json...]",
	Short: "Score one or more profiles with LLM analysis and cache",
	Long:  "Score profile JSON files against the criteria set. Uses the analysis cache, falls back to deterministic local scoring when the LLM is unavailable, and prints one result per profile.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAnalyze,
}

var (
	analyzeConfigPath   string
	analyzeCriteriaPath string
	analyzeAPIKey       string
	analyzeModel        string
	analyzeNoCache      bool
	analyzeLocalOnly    bool
	analyzeConcurrency  int
)

func init() {
	analyzeCmd.Flags().StringVar(&analyzeConfigPath, "config", "", "Path to JSON config file")
	analyzeCmd.Flags().StringVar(&analyzeCriteriaPath, "criteria", "", "Path to criteria JSON (defaults to built-in criteria)")
	analyzeCmd.Flags().StringVar(&analyzeAPIKey, "api-key", "", "Gemini API key (overrides GEMINI_API_KEY env var)")
	analyzeCmd.Flags().StringVar(&analyzeModel, "model", "", "Gemini model name")
	analyzeCmd.Flags().BoolVar(&analyzeNoCache, "no-cache", false, "Bypass the analysis cache")
	analyzeCmd.Flags().BoolVar(&analyzeLocalOnly, "local-only", false, "Skip the LLM and use only the local scorer")
	analyzeCmd.Flags().IntVar(&analyzeConcurrency, "concurrency", 0, "Worker count for multi-profile runs (default from config)")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(_ *cobra.Command, args []string) error {
	cfg, err := resolveConfig(analyzeConfigPath)
	if err != nil {
		return err
	}
	if analyzeAPIKey != "" {
		cfg.APIKey = analyzeAPIKey
	}
	if analyzeModel != "" {
		cfg.Model = analyzeModel
	}
	if analyzeCriteriaPath != "" {
		cfg.CriteriaPath = analyzeCriteriaPath
	}
	if analyzeConcurrency > 0 {
		cfg.Concurrency = analyzeConcurrency
	}

	log, err := buildLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer log.Sync()

	elements, err := loadCriteria(cfg.CriteriaPath)
	if err != nil {
		return err
	}

	profiles := make([]*types.Profile, 0, len(args))
	for _, path := range args {
		profile, err := loadProfile(path)
		if err != nil {
			return err
		}
		profiles = append(profiles, profile)
	}

	ctx := context.Background()

	var resultCache gateway.ResultCache
	if !analyzeNoCache {
		c, closeCache, err := openCache(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer closeCache()
		resultCache = c
	}

	var remote gateway.RemoteAnalyzer
	if !analyzeLocalOnly && cfg.APIKey != "" {
		client, err := analyzer.NewGeminiClient(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return fmt.Errorf("failed to create LLM client: %w", err)
		}
		defer client.Close()
		remote = analyzer.NewAnalyzer(client, log).WithTimeout(timeoutFrom(cfg))
	} else if !analyzeLocalOnly {
		fmt.Fprintln(os.Stderr, "Warning: no API key configured, using local scoring only")
	}

	g := gateway.New(resultCache, remote, log)

	if len(profiles) == 1 {
		return printResult(g.AnalyzeProfile(ctx, profiles[0], elements))
	}

	results := g.AnalyzeProfiles(ctx, profiles, elements, cfg.Concurrency)
	combined := make([]profileResult, len(results))
	for i, result := range results {
		combined[i] = profileResult{URL: profiles[i].URL, Result: result}
	}
	return printResult(combined)
}

// profileResult pairs a result with the profile it belongs to in bulk output.
type profileResult struct {
	URL    string             `json:"url"`
	Result *types.ScoreResult `json:"result"`
}
