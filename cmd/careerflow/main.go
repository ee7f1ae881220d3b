// Package main provides the entry point for the CareerFlow HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "careerflow",
	Short: "CareerFlow HTTP API Server",
	Long:  "CareerFlow manages a career experience vault, a job application tracker and an AI counselor, syncing collections between local files and an optional PostgreSQL store.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
