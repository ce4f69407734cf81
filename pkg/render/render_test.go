package render

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/unowned-ai/notetable/pkg/notes"
)

func TestNoteRow(t *testing.T) {
	n := &notes.Note{
		ID:       "abc",
		Name:     "Groceries",
		Content:  "Buy milk 5/1/2024",
		Category: "Personal",
		Created:  "May 1, 2024",
		Dates:    "5/1/2024",
	}

	row := NoteRow(n, notes.Archived)

	assert.Equal(t, "abc", row.Key)
	assert.Equal(t, "archived", row.Class)
	assert.Equal(t, []string{"Groceries", "May 1, 2024", "Personal", "Buy milk 5/1/2024", "5/1/2024"}, row.Cells)
	assert.Equal(t, []Action{ActionDelete, ActionEdit, ActionArchive}, row.Actions)
	assert.Len(t, row.Cells, len(NoteColumns))
}

func TestNoteRowWithoutDates(t *testing.T) {
	row := NoteRow(&notes.Note{ID: "x"}, notes.Active)
	assert.Equal(t, NoDates, row.Cells[4])
	assert.Equal(t, "active", row.Class)
}

func TestNoteRowActionsAreNotShared(t *testing.T) {
	a := NoteRow(&notes.Note{ID: "a"}, notes.Active)
	b := NoteRow(&notes.Note{ID: "b"}, notes.Active)
	a.Actions[0] = "mutated"
	assert.Equal(t, ActionDelete, b.Actions[0])
	assert.Equal(t, ActionDelete, Actions[0])
}

func TestStatsRow(t *testing.T) {
	r := NewStatsRow(notes.CategoryStats{Category: "Idea", Active: 3, Archived: 1})
	assert.Equal(t, []string{"Idea", "3", "1"}, r.Cells())
}
