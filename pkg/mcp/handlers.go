package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/unowned-ai/notetable/pkg/notes"
	"github.com/unowned-ai/notetable/pkg/tables"
)

// noteView is a note together with the collection it lives in.
type noteView struct {
	*notes.Note
	Collection string `json:"collection"`
}

// RegisterPingTool registers the simple ping tool.
func RegisterPingTool(s *server.MCPServer) {
	pingTool := mcp.NewTool("ping",
		mcp.WithDescription("Responds with 'pong' to check if the Notetable MCP server is alive."),
	)
	s.AddTool(pingTool, pingHandler)
}

func pingHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText("pong_notetable"), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to serialize result to JSON: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func stringArg(request mcp.CallToolRequest, name string) (string, bool) {
	v, ok := request.Params.Arguments[name].(string)
	return v, ok
}

// RegisterListCategoriesTool registers the list_categories tool.
func (s *NotesMCPServer) RegisterListCategoriesTool() {
	tool := mcp.NewTool("list_categories",
		mcp.WithDescription("Lists the fixed note categories in display order."),
	)
	s.mcpServer.AddTool(tool, s.handleListCategories)
}

func (s *NotesMCPServer) handleListCategories(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(notes.Categories())
}

// RegisterListNotesTool registers the list_notes tool.
func (s *NotesMCPServer) RegisterListNotesTool() {
	tool := mcp.NewTool("list_notes",
		mcp.WithDescription("Lists notes of one collection in display order."),
		mcp.WithString("collection",
			mcp.DefaultString("active"),
			mcp.Enum("active", "archived"),
			mcp.Description("Which table to list: 'active' or 'archived'. Defaults to 'active'.")),
	)
	s.mcpServer.AddTool(tool, s.handleListNotes)
}

func (s *NotesMCPServer) handleListNotes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, _ := stringArg(request, "collection")
	col, err := notes.ParseCollection(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	views := []noteView{}
	for _, row := range s.ctrl.Table(col).Rows() {
		if res, ok := s.ctrl.Resolve(row.Key); ok {
			views = append(views, noteView{Note: res.Note, Collection: res.Collection.String()})
		}
	}
	return jsonResult(views)
}

// RegisterCreateNoteTool registers the create_note tool.
func (s *NotesMCPServer) RegisterCreateNoteTool() {
	tool := mcp.NewTool("create_note",
		mcp.WithDescription("Creates a new active note."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Note name, at least 4 characters.")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Note content, at least 4 characters. Dates like 5/1/2024 are extracted.")),
		mcp.WithString("category", mcp.Required(), mcp.Enum(notes.Categories()...), mcp.Description("One of the fixed categories.")),
	)
	s.mcpServer.AddTool(tool, s.handleCreateNote)
}

func (s *NotesMCPServer) handleCreateNote(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, _ := stringArg(request, "name")
	content, _ := stringArg(request, "content")
	category, _ := stringArg(request, "category")

	s.mu.Lock()
	defer s.mu.Unlock()

	form := s.ctrl.NewNoteForm()
	if err := form.Submit(ctx, name, content, category); err != nil {
		if form.Note() == nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to create note: %v", err)), nil
		}
		s.logger.Error("note created but not persisted", zap.String("id", form.Note().ID), zap.Error(err))
		return mcp.NewToolResultError(fmt.Sprintf("Note created but not persisted: %v", err)), nil
	}
	return jsonResult(noteView{Note: form.Note(), Collection: notes.Active.String()})
}

// RegisterEditNoteTool registers the edit_note tool.
func (s *NotesMCPServer) RegisterEditNoteTool() {
	tool := mcp.NewTool("edit_note",
		mcp.WithDescription("Edits a note in place. Omitted fields keep their current value; id and collection never change."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Id of the note to edit.")),
		mcp.WithString("name", mcp.Description("New name.")),
		mcp.WithString("content", mcp.Description("New content.")),
		mcp.WithString("category", mcp.Enum(notes.Categories()...), mcp.Description("New category.")),
	)
	s.mcpServer.AddTool(tool, s.handleEditNote)
}

func (s *NotesMCPServer) handleEditNote(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, _ := stringArg(request, "id")

	s.mu.Lock()
	defer s.mu.Unlock()

	form, ok := s.ctrl.EditNote(id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("Note '%s' not found.", id)), nil
	}

	name, content, category := form.Defaults()
	if v, ok := stringArg(request, "name"); ok && v != "" {
		name = v
	}
	if v, ok := stringArg(request, "content"); ok && v != "" {
		content = v
	}
	if v, ok := stringArg(request, "category"); ok && v != "" {
		category = v
	}

	if err := form.Submit(ctx, name, content, category); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to edit note '%s': %v", id, err)), nil
	}

	res, _ := s.ctrl.Resolve(id)
	return jsonResult(noteView{Note: res.Note, Collection: res.Collection.String()})
}

// RegisterArchiveNoteTool registers the archive_note tool.
func (s *NotesMCPServer) RegisterArchiveNoteTool() {
	tool := mcp.NewTool("archive_note",
		mcp.WithDescription("Toggles a note between the active and archived collections."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Id of the note to archive or restore.")),
	)
	s.mcpServer.AddTool(tool, s.handleArchiveNote)
}

func (s *NotesMCPServer) handleArchiveNote(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, _ := stringArg(request, "id")

	s.mu.Lock()
	defer s.mu.Unlock()

	applied, err := s.ctrl.ArchiveNote(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to persist archive of note '%s': %v", id, err)), nil
	}
	if !applied {
		return mcp.NewToolResultError(fmt.Sprintf("Note '%s' not found.", id)), nil
	}

	res, _ := s.ctrl.Resolve(id)
	return jsonResult(noteView{Note: res.Note, Collection: res.Collection.String()})
}

// RegisterDeleteNoteTool registers the delete_note tool. The caller must pass
// confirm=true; anything else is treated as a declined confirmation.
func (s *NotesMCPServer) RegisterDeleteNoteTool() {
	tool := mcp.NewTool("delete_note",
		mcp.WithDescription("Deletes a note from whichever collection holds it."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Id of the note to delete.")),
		mcp.WithBoolean("confirm", mcp.Required(), mcp.Description("Must be true to delete.")),
	)
	s.mcpServer.AddTool(tool, s.handleDeleteNote)
}

func (s *NotesMCPServer) handleDeleteNote(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, _ := stringArg(request, "id")
	confirmed, _ := request.Params.Arguments["confirm"].(bool)

	s.mu.Lock()
	defer s.mu.Unlock()

	confirm := tables.ConfirmFunc(func(string) bool { return confirmed })
	applied, err := s.ctrl.DeleteNote(ctx, id, confirm)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to persist deletion of note '%s': %v", id, err)), nil
	}
	if !applied {
		if !confirmed {
			return mcp.NewToolResultText(fmt.Sprintf("Deletion of note '%s' not confirmed, nothing deleted.", id)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Note '%s' not found (or already deleted), nothing to delete.", id)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Note '%s' deleted successfully.", id)), nil
}

// RegisterStatisticsTool registers the get_statistics tool.
func (s *NotesMCPServer) RegisterStatisticsTool() {
	tool := mcp.NewTool("get_statistics",
		mcp.WithDescription("Returns per-category counts of active and archived notes."),
	)
	s.mcpServer.AddTool(tool, s.handleStatistics)
}

func (s *NotesMCPServer) handleStatistics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := []notes.CategoryStats{}
	for _, row := range s.ctrl.Statistics() {
		stats = append(stats, notes.CategoryStats{Category: row.Category, Active: row.Active, Archived: row.Archived})
	}
	return jsonResult(stats)
}
