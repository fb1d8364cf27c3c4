package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage the analysis cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache entry counts",
	RunE:  runCacheStats,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached analyses",
	RunE:  runCacheClear,
}

var cacheClearExpiredCmd = &cobra.Command{
	Use:   "clear-expired",
	Short: "Remove cached analyses past the TTL",
	RunE:  runCacheClearExpired,
}

var cacheClearFingerprintCmd = &cobra.Command{
	Use:   "clear-fingerprint <fingerprint>",
	Short: "Remove cached analyses scored under a criteria fingerprint",
	Long:  "Remove every cached analysis scored under the given criteria fingerprint. Run after a new résumé upload to invalidate analyses made with the old criteria.",
	Args:  cobra.ExactArgs(1),
	RunE:  runCacheClearFingerprint,
}

var cacheConfigPath string

func init() {
	cacheCmd.PersistentFlags().StringVar(&cacheConfigPath, "config", "", "Path to JSON config file")

	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheClearExpiredCmd)
	cacheCmd.AddCommand(cacheClearFingerprintCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheStats(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	c, closeCache, err := cacheFromConfig(ctx)
	if err != nil {
		return err
	}
	defer closeCache()

	total, expired := c.Stats(ctx)
	fmt.Printf("Entries:  %d\n", total)
	fmt.Printf("Expired:  %d\n", expired)
	fmt.Printf("Active:   %d\n", total-expired)
	return nil
}

func runCacheClear(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	c, closeCache, err := cacheFromConfig(ctx)
	if err != nil {
		return err
	}
	defer closeCache()

	if !c.ClearAll(ctx) {
		return fmt.Errorf("failed to clear cache")
	}
	fmt.Println("Cache cleared")
	return nil
}

func runCacheClearExpired(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	c, closeCache, err := cacheFromConfig(ctx)
	if err != nil {
		return err
	}
	defer closeCache()

	removed := c.ClearExpired(ctx)
	fmt.Printf("Removed %d expired entries\n", removed)
	return nil
}

func runCacheClearFingerprint(_ *cobra.Command, args []string) error {
	ctx := context.Background()
	c, closeCache, err := cacheFromConfig(ctx)
	if err != nil {
		return err
	}
	defer closeCache()

	removed := c.ClearForFingerprint(ctx, args[0])
	fmt.Printf("Removed %d entries for fingerprint %s\n", removed, args[0])
	return nil
}
