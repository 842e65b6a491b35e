package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ChaNg1o1/pythonrun-mcp/internal/config"
	"github.com/ChaNg1o1/pythonrun-mcp/internal/server"
)

var workspaceFlag string

var rootCmd = &cobra.Command{
	Use:   "pythonrun",
	Short: "pythonrun - MCP server for sandboxed Python execution",
	Long: `pythonrun is an MCP stdio server that executes Python code snippets
inside a managed virtualenv, capturing text output and any matplotlib
or PIL images the code produces, under timeout, memory, and output
limits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if workspaceFlag != "" {
			cfg.WorkspaceRoot = workspaceFlag
		}
		return server.New(cfg).ServeStdio()
	},
}

func init() {
	rootCmd.Flags().StringVar(&workspaceFlag, "workspace", "", "Workspace root for scratch files and the virtualenv (overrides config)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
