// Package cli provides the command-line interface for lexrag.
// Commands are thin adapters over the driving ports; all retrieval
// logic lives in the core services.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/atticus-labs/lexrag/internal/core/ports/driving"
	"github.com/atticus-labs/lexrag/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services injected by the composition root before Execute.
var (
	searchService    driving.SearchService
	retrievalService driving.RetrievalService
	importService    driving.ImportService
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "lexrag",
	Short: "Semantic search and question answering over legal documents",
	Long: `lexrag ingests legal case documents, embeds their summaries and
answers questions grounded in the most relevant passages of a chosen
document.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging to stderr")
}

// SetServices injects the driving services. Must be called by the
// composition root before Execute.
func SetServices(search driving.SearchService, retrieval driving.RetrievalService, imp driving.ImportService) {
	searchService = search
	retrievalService = retrieval
	importService = imp
}

// SetVersion sets the version string reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
