// Package cli implements the docqa command line interface.
package cli

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/retolabs/docqa/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "docqa",
	Short: "Per-user document question answering over HTTP",
	Long: `docqa serves a small HTTP API for question answering over
uploaded PDF documents. Each user uploads a document, which is
chunked, embedded and indexed; questions are then answered from the
most relevant passages using a language model.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	// A .env file is optional; the environment wins when both are set.
	_ = godotenv.Load()

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
