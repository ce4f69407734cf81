package mcp

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	notetable "github.com/unowned-ai/notetable/pkg"
	"github.com/unowned-ai/notetable/pkg/tables"
)

// NotesMCPServer exposes a tables.Controller over MCP. Tool calls may arrive
// concurrently; mu serializes every access to the controller and its store.
type NotesMCPServer struct {
	mcpServer *server.MCPServer
	db        *sql.DB
	ctrl      *tables.Controller
	logger    *zap.Logger
	mu        sync.Mutex
	DbPath    string
}

// NewNotesMCPServer builds a server around an initialized controller. db is
// kept only so Close can checkpoint and close it; it may be nil.
func NewNotesMCPServer(ctrl *tables.Controller, db *sql.DB, dbPath string, logger *zap.Logger) *NotesMCPServer {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := server.NewMCPServer(
		"Notetable MCP Server",
		notetable.Version,
		server.WithResourceCapabilities(true, true),
		server.WithLogging(),
	)

	return &NotesMCPServer{
		mcpServer: s,
		db:        db,
		ctrl:      ctrl,
		logger:    logger,
		DbPath:    dbPath,
	}
}

// RegisterAllTools registers every notetable tool.
func (s *NotesMCPServer) RegisterAllTools() {
	RegisterPingTool(s.mcpServer)
	s.RegisterListCategoriesTool()
	s.RegisterListNotesTool()
	s.RegisterCreateNoteTool()
	s.RegisterEditNoteTool()
	s.RegisterArchiveNoteTool()
	s.RegisterDeleteNoteTool()
	s.RegisterStatisticsTool()
}

// Start runs the stdio event loop. Make sure to register tools beforehand.
func (s *NotesMCPServer) Start() error {
	return server.ServeStdio(s.mcpServer)
}

// MCPRawServer exposes the raw mcp-go server (useful for additional configuration).
func (s *NotesMCPServer) MCPRawServer() *server.MCPServer {
	return s.mcpServer
}

// Close cleans up allocated resources.
func (s *NotesMCPServer) Close() error {
	if s.db == nil {
		return nil
	}
	// TRUNCATE mode waits for transactions and writes the WAL back to the main DB.
	if _, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE);"); err != nil {
		s.logger.Warn("WAL checkpoint failed during close", zap.Error(err))
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
