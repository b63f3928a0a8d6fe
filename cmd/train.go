package cmd

import (
	"github.com/codiehq/codesight/core"
	"github.com/codiehq/codesight/internal/contract"
	"github.com/spf13/cobra"
)

// trainCmd fits a candidate model generation from a labeled corpus.
var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train a candidate model generation from a labeled corpus.",
	Long: `Fit all four models on a labeled corpus and promote the winners.

Every candidate is validated on a held-out slice of the corpus before
promotion. A candidate that scores worse than the active model of the
same kind is rejected, and the active model keeps serving; a rejected
candidate never touches the registry. At least 10 examples are required.

Corpus format (JSON array or Parquet with the same columns):
  path        display path of the example
  content     raw source text
  language    optional; detected from the path when absent
  vulnerable  optional bool label for the vulnerability model
  quality     optional 0-100 label for the quality model

Examples:
  # Train from a JSON corpus
  codesight train --corpus corpus.json

  # Train from a Parquet corpus with a custom outlier share
  codesight train --corpus corpus.parquet --contamination 0.05

  # Train against a shared MySQL store
  codesight train --corpus corpus.json --store-backend mysql \
    --store-db-connect "user:pass@tcp(db:3306)/codesight"`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteTrain(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot run training", err)
		}
	},
}
