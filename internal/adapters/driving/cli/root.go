// Package cli provides the docweave command line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docweave/internal/core/ports/driven"
	"github.com/custodia-labs/docweave/internal/core/ports/driving"
	"github.com/custodia-labs/docweave/internal/logger"
)

// version is set from the build via Execute.
var version = "dev"

// Services injected by the composition root before Execute.
var (
	retrievalService driving.RetrievalService
	documentService  driving.DocumentService
	configStore      driven.ConfigStore
	corpusSource     driven.CorpusSource
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "docweave",
	Short: "Semantic retrieval over markdown corpora",
	Long: `docweave indexes a markdown corpus into an addressable document
tree, embeds its chunks and serves semantic search, structural
inspection and copy-on-write edits over the result.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// SetRetrievalService injects the retrieval service.
func SetRetrievalService(s driving.RetrievalService) {
	retrievalService = s
}

// SetDocumentService injects the document service.
func SetDocumentService(s driving.DocumentService) {
	documentService = s
}

// SetConfigStore injects the configuration store.
func SetConfigStore(s driven.ConfigStore) {
	configStore = s
}

// SetCorpusSource injects the corpus source, used for change watching.
func SetCorpusSource(s driven.CorpusSource) {
	corpusSource = s
}

// Execute runs the root command with the given build version.
func Execute(v string) error {
	if v != "" {
		version = v
	}
	return rootCmd.Execute()
}
