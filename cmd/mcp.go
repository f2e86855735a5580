package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/ziadkadry99/umlgen/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing diagram generation, encoding and template tools to AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		p, err := newPipeline(cfg)
		if err != nil {
			return err
		}

		// Set version from the cmd package variable.
		mcpserver.Version = Version

		fmt.Fprintf(os.Stderr, "umlgen MCP server started on stdio (provider=%s, model=%s)\n", cfg.Provider, cfg.Model)
		return mcpserver.NewServer(p).Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
