// Package render converts notes and category statistics into table rows.
// Everything here is pure: rows are rebuilt from store state on every render.
package render

import (
	"strconv"

	"github.com/unowned-ai/notetable/pkg/notes"
)

// Action identifies a per-row action.
type Action string

const (
	ActionDelete  Action = "delete"
	ActionEdit    Action = "edit"
	ActionArchive Action = "archive"
)

// Actions are the row actions in display order.
var Actions = []Action{ActionDelete, ActionEdit, ActionArchive}

// NoDates is shown in the dates column of a note without date mentions.
const NoDates = "No"

// NoteColumns are the headers of a notes table.
var NoteColumns = []string{"Name", "Created", "Category", "Content", "Dates"}

// StatsColumns are the headers of the statistics table.
var StatsColumns = []string{"Note Category", "Active", "Archived"}

// Row is one rendered note. Key is the note id; Class is derived from the
// collection the note belongs to.
type Row struct {
	Key     string
	Class   string
	Cells   []string
	Actions []Action
}

func NoteRow(n *notes.Note, c notes.Collection) *Row {
	dates := n.Dates
	if dates == "" {
		dates = NoDates
	}
	actions := make([]Action, len(Actions))
	copy(actions, Actions)

	return &Row{
		Key:     n.ID,
		Class:   c.String(),
		Cells:   []string{n.Name, n.Created, n.Category, n.Content, dates},
		Actions: actions,
	}
}

// StatsRow is one rendered category count pair.
type StatsRow struct {
	Category string
	Active   int
	Archived int
}

func NewStatsRow(s notes.CategoryStats) StatsRow {
	return StatsRow{Category: s.Category, Active: s.Active, Archived: s.Archived}
}

func (r StatsRow) Cells() []string {
	return []string{r.Category, strconv.Itoa(r.Active), strconv.Itoa(r.Archived)}
}
