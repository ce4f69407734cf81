package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unowned-ai/notetable/pkg/db"
	"github.com/unowned-ai/notetable/pkg/notes"
	"github.com/unowned-ai/notetable/pkg/storage"
	"github.com/unowned-ai/notetable/pkg/tables"
)

func setupServer(t *testing.T) *NotesMCPServer {
	t.Helper()

	conn, err := db.Open(":memory:", false, "", nil)
	require.NoError(t, err)

	store := notes.NewStore(storage.NewLocalStorage(conn))
	require.NoError(t, store.Load(context.Background()))
	ctrl := tables.New(store)
	ctrl.Initialize()

	s := NewNotesMCPServer(ctrl, conn, ":memory:", nil)
	s.RegisterAllTools()
	t.Cleanup(func() { s.Close() })
	return s
}

func call(t *testing.T, h func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	res, err := h(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return text.Text
}

func decode[T any](t *testing.T, res *mcp.CallToolResult) T {
	t.Helper()
	require.False(t, res.IsError, resultText(t, res))
	var v T
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &v))
	return v
}

type noteJSON struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Content    string `json:"content"`
	Category   string `json:"category"`
	Dates      string `json:"dates"`
	Collection string `json:"collection"`
}

func createNote(t *testing.T, s *NotesMCPServer, name string) noteJSON {
	t.Helper()
	return decode[noteJSON](t, call(t, s.handleCreateNote, map[string]any{
		"name":     name,
		"content":  "Meet on 5/1/2024",
		"category": "Task",
	}))
}

func TestPing(t *testing.T) {
	res, err := pingHandler(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	assert.Equal(t, "pong_notetable", resultText(t, res))
}

func TestListCategories(t *testing.T) {
	s := setupServer(t)
	got := decode[[]string](t, call(t, s.handleListCategories, nil))
	assert.Equal(t, notes.Categories(), got)
}

func TestCreateAndListNotes(t *testing.T) {
	s := setupServer(t)

	created := createNote(t, s, "Groceries")
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "5/1/2024", created.Dates)
	assert.Equal(t, "active", created.Collection)

	listed := decode[[]noteJSON](t, call(t, s.handleListNotes, map[string]any{}))
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)

	archived := decode[[]noteJSON](t, call(t, s.handleListNotes, map[string]any{"collection": "archived"}))
	assert.Empty(t, archived)
}

func TestCreateNoteValidation(t *testing.T) {
	s := setupServer(t)

	res := call(t, s.handleCreateNote, map[string]any{"name": "abc", "content": "long enough", "category": "Task"})
	assert.True(t, res.IsError)
	assert.Equal(t, 0, s.ctrl.Store().Len(notes.Active))
}

func TestListNotesUnknownCollection(t *testing.T) {
	s := setupServer(t)
	res := call(t, s.handleListNotes, map[string]any{"collection": "trash"})
	assert.True(t, res.IsError)
}

func TestEditNoteKeepsOmittedFields(t *testing.T) {
	s := setupServer(t)
	created := createNote(t, s, "Groceries")

	edited := decode[noteJSON](t, call(t, s.handleEditNote, map[string]any{
		"id":       created.ID,
		"category": "Idea",
	}))
	assert.Equal(t, created.ID, edited.ID)
	assert.Equal(t, "Groceries", edited.Name)
	assert.Equal(t, "Meet on 5/1/2024", edited.Content)
	assert.Equal(t, "Idea", edited.Category)

	res := call(t, s.handleEditNote, map[string]any{"id": "missing"})
	assert.True(t, res.IsError)
}

func TestArchiveNoteToggles(t *testing.T) {
	s := setupServer(t)
	created := createNote(t, s, "Groceries")

	moved := decode[noteJSON](t, call(t, s.handleArchiveNote, map[string]any{"id": created.ID}))
	assert.Equal(t, "archived", moved.Collection)

	back := decode[noteJSON](t, call(t, s.handleArchiveNote, map[string]any{"id": created.ID}))
	assert.Equal(t, "active", back.Collection)

	res := call(t, s.handleArchiveNote, map[string]any{"id": "missing"})
	assert.True(t, res.IsError)
}

func TestDeleteNoteNeedsConfirm(t *testing.T) {
	s := setupServer(t)
	created := createNote(t, s, "Groceries")

	res := call(t, s.handleDeleteNote, map[string]any{"id": created.ID, "confirm": false})
	assert.False(t, res.IsError)
	assert.True(t, s.ctrl.Store().Contains(created.ID))

	res = call(t, s.handleDeleteNote, map[string]any{"id": created.ID, "confirm": true})
	assert.False(t, res.IsError)
	assert.Contains(t, resultText(t, res), "deleted successfully")
	assert.False(t, s.ctrl.Store().Contains(created.ID))
}

func TestStatistics(t *testing.T) {
	s := setupServer(t)
	created := createNote(t, s, "Groceries")
	createNote(t, s, "Laundry")
	call(t, s.handleArchiveNote, map[string]any{"id": created.ID})

	stats := decode[[]notes.CategoryStats](t, call(t, s.handleStatistics, nil))
	require.Len(t, stats, len(notes.Categories()))
	for _, st := range stats {
		if st.Category == "Task" {
			assert.Equal(t, 1, st.Active)
			assert.Equal(t, 1, st.Archived)
		} else {
			assert.Zero(t, st.Active+st.Archived)
		}
	}
}
