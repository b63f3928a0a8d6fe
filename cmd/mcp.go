package cmd

import (
	"github.com/codiehq/codesight/core"
	"github.com/codiehq/codesight/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the CodeSight MCP server",
	Long:  `Launch an MCP server that allows AI agents to run code analysis, training and status checks via standard tools.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Same setup as the CLI commands; tool handlers talk to the
		// service directly, so stdio stays clean for the protocol.
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		svc, err := core.NewServiceFromManager(cfg, storeManager)
		if err != nil {
			return err
		}
		return mcp.StartMCPServer(rootCtx, cfg, svc)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
