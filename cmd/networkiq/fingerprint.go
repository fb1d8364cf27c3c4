package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/networkiq/internal/fingerprint"
)

var fingerprintCmd = &cobra.Command{
	Use:   "fingerprint",
	Short: "Print the fingerprint of a criteria set",
	Long:  "Print the order-independent fingerprint of a criteria file. Cache entries are keyed per fingerprint, so this is the value to pass to 'cache clear-fingerprint' after a résumé change.",
	RunE:  runFingerprint,
}

var fingerprintCriteriaPath string

func init() {
	fingerprintCmd.Flags().StringVar(&fingerprintCriteriaPath, "criteria", "", "Path to criteria JSON (defaults to built-in criteria)")

	rootCmd.AddCommand(fingerprintCmd)
}

func runFingerprint(_ *cobra.Command, _ []string) error {
	elements, err := loadCriteria(fingerprintCriteriaPath)
	if err != nil {
		return err
	}

	fmt.Println(fingerprint.Fingerprint(elements))
	return nil
}
