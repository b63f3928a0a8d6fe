package cmd

import (
	"github.com/codiehq/codesight/core"
	"github.com/codiehq/codesight/internal/contract"
	"github.com/spf13/cobra"
)

// featuresCmd shows the feature schema or one extracted vector.
var featuresCmd = &cobra.Command{
	Use:   "features [file]",
	Short: "Show the feature schema, or the extracted vector for one file.",
	Long: `Inspect the feature layer that feeds every model.

Without arguments this lists the feature schema: every vector slot with
its name, group and meaning. With a single file argument it extracts and
prints the raw feature vector for that file instead. No model runs and
no training state is needed either way.

Examples:
  # List the feature schema
  codesight features

  # Dump the vector for one file
  codesight features src/auth.py

  # Vector as JSON for debugging a model input
  codesight features src/auth.py --output json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteFeatures(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot run feature extraction", err)
		}
	},
}
