// Package main provides the entry point for the Talent Screening Agent.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "talent-screening-agent",
	Short: "Keyword-based candidate screening and ranking",
	Long: "Talent Screening Agent scores resumes against a weighted skill table, flags risks, " +
		"matches them against a job description and ranks the candidates of a session.",
	SilenceUsage: true,
}

var configPath string

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.json (default: user config directory)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
