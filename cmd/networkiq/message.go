package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/networkiq/internal/analyzer"
	"github.com/jonathan/networkiq/internal/gateway"
)

var messageCmd = &cobra.Command{
	Use:   "message <profile.json>",
	Short: "Generate a personalized connection request message",
	Long:  "Score the profile, then generate a personalized LinkedIn connection request message referencing the strongest connection points. Falls back to a template when the LLM is unavailable.",
	Args:  cobra.ExactArgs(1),
	RunE:  runMessage,
}

var (
	messageConfigPath   string
	messageCriteriaPath string
	messageAPIKey       string
	messageModel        string
)

func init() {
	messageCmd.Flags().StringVar(&messageConfigPath, "config", "", "Path to JSON config file")
	messageCmd.Flags().StringVar(&messageCriteriaPath, "criteria", "", "Path to criteria JSON (defaults to built-in criteria)")
	messageCmd.Flags().StringVar(&messageAPIKey, "api-key", "", "Gemini API key (overrides GEMINI_API_KEY env var)")
	messageCmd.Flags().StringVar(&messageModel, "model", "", "Gemini model name")

	rootCmd.AddCommand(messageCmd)
}

func runMessage(_ *cobra.Command, args []string) error {
	cfg, err := resolveConfig(messageConfigPath)
	if err != nil {
		return err
	}
	if messageAPIKey != "" {
		cfg.APIKey = messageAPIKey
	}
	if messageModel != "" {
		cfg.Model = messageModel
	}
	if messageCriteriaPath != "" {
		cfg.CriteriaPath = messageCriteriaPath
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("API key is required (set GEMINI_API_KEY environment variable or use --api-key flag)")
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

	ctx := context.Background()

	client, err := analyzer.NewGeminiClient(ctx, cfg.APIKey, cfg.Model)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer client.Close()

	remote := analyzer.NewAnalyzer(client, log).WithTimeout(timeoutFrom(cfg))

	c, closeCache, err := openCache(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeCache()

	result := gateway.New(c, remote, log).AnalyzeProfile(ctx, profile, elements)

	message, err := remote.GenerateMessage(ctx, profile, result, elements)
	if err != nil {
		return err
	}

	fmt.Println(message)
	return nil
}
