package cmd

import (
	"github.com/epiforge/epitrend/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Epitrend MCP server",
	Long:  `Launch an MCP server that allows AI agents to aggregate incidence, fit growth models and locate changepoints via standard tools.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// MCP runs without a positional linelist; tools supply paths per call.
		// Keep stdout clean for the protocol.
		input.LinelistPathStr = "-"
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
