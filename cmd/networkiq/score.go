package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/networkiq/internal/scoring"
)

var scoreCmd = &cobra.Command{
	Use:   "score <profile.json>",
	Short: "Score a profile with the deterministic local scorer",
	Long:  "Score a profile JSON file against the criteria set using only the local keyword matcher. No LLM calls, no cache; identical inputs always produce identical output.",
	Args:  cobra.ExactArgs(1),
	RunE:  runScore,
}

var (
	scoreConfigPath   string
	scoreCriteriaPath string
)

func init() {
	scoreCmd.Flags().StringVar(&scoreConfigPath, "config", "", "Path to JSON config file")
	scoreCmd.Flags().StringVar(&scoreCriteriaPath, "criteria", "", "Path to criteria JSON (defaults to built-in criteria)")

	rootCmd.AddCommand(scoreCmd)
}

func runScore(_ *cobra.Command, args []string) error {
	cfg, err := resolveConfig(scoreConfigPath)
	if err != nil {
		return err
	}
	if scoreCriteriaPath != "" {
		cfg.CriteriaPath = scoreCriteriaPath
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

	profile, err := loadProfile(args[0])
	if err != nil {
		return err
	}

	result := scoring.NewScorer(log).CalculateScore(profile.Corpus(), elements)
	return printResult(result)
}
