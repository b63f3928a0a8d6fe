package cmd

import (
	"github.com/codiehq/codesight/core"
	"github.com/codiehq/codesight/internal/contract"
	"github.com/spf13/cobra"
)

// projectCmd performs project-level analysis.
var projectCmd = &cobra.Command{
	Use:   "project [path...]",
	Short: "Aggregate per-file results into a project risk report.",
	Long: `Analyze a whole project and aggregate the per-file results into one report.

The report ranks refactoring hotspots by a blend of vulnerability risk,
quality deficit and pattern severity, names the top refactoring candidate
with its reasons, and lists every vulnerability prediction above the risk
cutoff. When a coverage provider is configured via --project-id, the
project coverage percentage is included.

Examples:
  # Report on the current directory
  codesight project

  # Rank only the top 10 hotspots
  codesight project src/ --limit 10

  # Lower the risk cutoff for the vulnerability list
  codesight project --report-risk 0.3

  # Attach coverage from the configured provider
  codesight project --project-id billing-service

  # Machine-readable report
  codesight project --output json --output-file report.json`,
	Args:    cobra.ArbitraryArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteProject(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot run project analysis", err)
		}
	},
}
