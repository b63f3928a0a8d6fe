package cmd

import (
	"github.com/codiehq/codesight/core"
	"github.com/codiehq/codesight/internal/contract"
	"github.com/spf13/cobra"
)

// analyzeCmd performs per-file analysis.
var analyzeCmd = &cobra.Command{
	Use:   "analyze [path...]",
	Short: "Run the model suite over files and show one row per file.",
	Long: `Run every loaded model over the given files or directories.

Each file gets a vulnerability risk score, a quality score, detected
anti-patterns and an anomaly flag. Directories are walked recursively with
vendor and build directories skipped; unreadable files are reported as
failed rows instead of aborting the run.

Before the first training run no generation is loaded and every model slot
reports unavailable. Train a generation first to get real predictions.

Examples:
  # Analyze the current directory
  codesight analyze

  # Analyze specific paths with more workers
  codesight analyze src/ lib/ --workers 8

  # Force a language instead of per-file detection
  codesight analyze legacy/ --language python

  # Include slot states and content sizes per file
  codesight analyze --detail

  # Export rows for downstream tooling
  codesight analyze --output json --output-file insights.json
  codesight analyze --output parquet --output-file insights.parquet`,
	Args:    cobra.ArbitraryArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteAnalyze(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot run analysis", err)
		}
	},
}
