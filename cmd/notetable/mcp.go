package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/unowned-ai/notetable/pkg/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the notetable MCP server (stdio)",
	Long: `Start a Model Context Protocol (MCP) server that exposes the notes tables as
MCP tools via STDIO.

If --db is not given, a system-specific default location is used:
- Windows: %APPDATA%\notetable\notetable.db
- macOS: ~/Library/Application Support/notetable/notetable.db
- Linux: ~/.local/share/notetable/notetable.db

Example:

  notetable mcp --db notes.db 2> server.log`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}

		srv := mcp.NewNotesMCPServer(s.ctrl, s.db, s.path, logger)
		defer srv.Close()
		srv.RegisterAllTools()

		// stdout carries the JSON-RPC stream.
		logger.Info("notetable MCP server started", zap.String("db", srv.DbPath))
		fmt.Fprintln(os.Stderr, "Available tools: ping, list_categories, list_notes, create_note, edit_note, archive_note, delete_note, get_statistics")
		fmt.Fprintln(os.Stderr, "Listening for MCP JSON-RPC on STDIN/STDOUT ... (Ctrl+C to quit)")

		return srv.Start()
	},
}
