package cmd

import (
	"github.com/huangsam/voicepersona/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the VoicePersona MCP server",
	Long: `Launch an MCP server on stdio that lets AI agents analyze creators, generate scripts
and score or validate content through standard tools.

Progress logs go to stderr; use --log-format discard to silence them.`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager)
	},
}
