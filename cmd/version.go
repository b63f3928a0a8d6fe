package cmd

import (
	"runtime"

	"github.com/spf13/cobra"
)

// versionCmd shows the verbose version for diagnostic purposes.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of codesight.",
	Long: `Print the release version with its build details.

Besides the release version this lists the git commit, the build
timestamp and the Go runtime the binary was compiled with. Include this
output when reporting a bug, and use it to confirm which build is
actually on PATH after an upgrade.`,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("codesight CLI\n")
		cmd.Printf("  Version: %s\n", version)
		cmd.Printf("  Commit:  %s\n", commit)
		cmd.Printf("  Built:   %s\n", date)
		cmd.Printf("  Runtime: %s\n", runtime.Version())
	},
}
