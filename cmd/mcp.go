package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mrpulse/mrpulse/internal/glclient"
	"github.com/mrpulse/mrpulse/internal/mcp"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the mrpulse MCP server",
	Long:  `Launch an MCP server that allows AI agents to run timeline and batch analyses via standard tools.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// The protocol owns stdio, so setup must stay quiet on stdout.
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		client := glclient.New(cfg.BaseURL, cfg.Token)
		return mcp.StartMCPServer(rootCtx, cfg, client)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
