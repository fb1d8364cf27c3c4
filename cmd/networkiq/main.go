// Package main provides the entry point for the NetworkIQ profile scoring CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "networkiq",
	Short: "NetworkIQ profile scoring CLI",
	Long:  "NetworkIQ scores LinkedIn profiles against résumé-derived weighted criteria, with LLM-backed analysis, deterministic local fallback, and a TTL analysis cache.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
