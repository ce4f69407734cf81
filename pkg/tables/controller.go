// Package tables keeps the active notes table, the archived notes table and
// the statistics table consistent with a notes.Store.
//
// The controller owns an explicit index from note id to the rendered row and
// the collection it was rendered for. Store membership is authoritative: a
// row's class is derived from the collection the store holds the note in and
// never the other way around.
package tables

import (
	"context"

	"go.uber.org/zap"

	"github.com/unowned-ai/notetable/pkg/notes"
	"github.com/unowned-ai/notetable/pkg/render"
)

// Tab is which of the two note tables is visible.
type Tab int

const (
	ShowingActive Tab = iota
	ShowingArchived
)

func (t Tab) Collection() notes.Collection {
	if t == ShowingArchived {
		return notes.Archived
	}
	return notes.Active
}

func (t Tab) String() string {
	if t == ShowingArchived {
		return "Archived"
	}
	return "Main"
}

// TabFor returns the tab that shows c.
func TabFor(c notes.Collection) Tab {
	if c == notes.Archived {
		return ShowingArchived
	}
	return ShowingActive
}

// NavItem is one navigator entry.
type NavItem struct {
	Tab      Tab
	Label    string
	Selected bool
}

// Confirmer asks the user to confirm a destructive action.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// AlwaysConfirm accepts every prompt. Use it when confirmation already happened.
var AlwaysConfirm Confirmer = ConfirmFunc(func(string) bool { return true })

// DeletePrompt is the question asked before a note is deleted.
const DeletePrompt = "Do you really want to delete this element ?"

// Outcome reports what a row action did. Applied is false when the action was
// aborted (unresolvable row or declined confirmation). Form is set by edit.
type Outcome struct {
	Applied bool
	Form    *Form
}

// RowHandler runs one action for the row it was bound to.
type RowHandler func(ctx context.Context, confirm Confirmer) (Outcome, error)

// BoundRow is a rendered row with exactly one handler per action.
type BoundRow struct {
	*render.Row
	handlers map[render.Action]RowHandler
}

// Trigger runs the handler bound to action. Unknown actions are a no-op.
func (r *BoundRow) Trigger(ctx context.Context, action render.Action, confirm Confirmer) (Outcome, error) {
	h, ok := r.handlers[action]
	if !ok {
		return Outcome{}, nil
	}
	return h(ctx, confirm)
}

// HandlerCount returns how many handlers are bound to the row.
func (r *BoundRow) HandlerCount() int { return len(r.handlers) }

// Table is one notes table view.
type Table struct {
	Collection notes.Collection
	Hidden     bool
	rows       []*BoundRow
}

func (t *Table) Rows() []*BoundRow {
	out := make([]*BoundRow, len(t.rows))
	copy(out, t.rows)
	return out
}

func (t *Table) Len() int { return len(t.rows) }

func (t *Table) removeRow(row *BoundRow) {
	for i, r := range t.rows {
		if r == row {
			t.rows = append(t.rows[:i:i], t.rows[i+1:]...)
			return
		}
	}
}

type rowRef struct {
	collection notes.Collection
	row        *BoundRow
}

// Resolution is a row key resolved against the store.
type Resolution struct {
	Key        string
	Note       *notes.Note
	Collection notes.Collection
	Index      int
	Row        *BoundRow
}

// Controller synchronizes the three table views with the store.
type Controller struct {
	store  *notes.Store
	logger *zap.Logger

	active     *Table
	archived   *Table
	statistics []render.StatsRow
	tab        Tab

	index map[string]rowRef
}

type Option func(*Controller)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func New(store *notes.Store, opts ...Option) *Controller {
	c := &Controller{
		store:    store,
		logger:   zap.NewNop(),
		active:   &Table{Collection: notes.Active},
		archived: &Table{Collection: notes.Archived},
		index:    map[string]rowRef{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) Store() *notes.Store { return c.store }

// Initialize renders both note tables and the statistics table and shows the
// active table.
func (c *Controller) Initialize() {
	c.RenderActiveTable()
	c.RenderArchivedTable()
	c.RenderStatisticsTable()
	c.ShowAnotherTable(ShowingActive)
}

// ShowAnotherTable makes the table of tab the only visible one.
func (c *Controller) ShowAnotherTable(tab Tab) {
	if tab != ShowingArchived {
		tab = ShowingActive
	}
	c.tab = tab
	c.active.Hidden = tab != ShowingActive
	c.archived.Hidden = tab != ShowingArchived
}

func (c *Controller) Tab() Tab { return c.tab }

// Navigator returns the two navigator entries with the current tab selected.
func (c *Controller) Navigator() []NavItem {
	return []NavItem{
		{Tab: ShowingActive, Label: ShowingActive.String(), Selected: c.tab == ShowingActive},
		{Tab: ShowingArchived, Label: ShowingArchived.String(), Selected: c.tab == ShowingArchived},
	}
}

func (c *Controller) Table(col notes.Collection) *Table {
	if col == notes.Archived {
		return c.archived
	}
	return c.active
}

func (c *Controller) Active() *Table   { return c.active }
func (c *Controller) Archived() *Table { return c.archived }

// Visible returns the table that is currently shown.
func (c *Controller) Visible() *Table {
	return c.Table(c.tab.Collection())
}

func (c *Controller) Statistics() []render.StatsRow {
	out := make([]render.StatsRow, len(c.statistics))
	copy(out, c.statistics)
	return out
}

func (c *Controller) RenderActiveTable()   { c.RenderTable(notes.Active) }
func (c *Controller) RenderArchivedTable() { c.RenderTable(notes.Archived) }

// RenderTable clears the table of col and rebuilds one fresh row per note.
func (c *Controller) RenderTable(col notes.Collection) {
	table := c.Table(col)

	for key, ref := range c.index {
		if ref.collection == col {
			delete(c.index, key)
		}
	}

	table.rows = table.rows[:0:0]
	for _, n := range c.store.Notes(col) {
		row := &BoundRow{Row: render.NoteRow(n, col)}
		table.rows = append(table.rows, row)
		c.index[n.ID] = rowRef{collection: col, row: row}
	}

	c.setTablesListeners(table)
}

// RenderStatisticsTable rebuilds one statistics row per fixed category.
func (c *Controller) RenderStatisticsTable() {
	stats := c.store.Statistics()
	rows := make([]render.StatsRow, 0, len(stats))
	for _, s := range stats {
		rows = append(rows, render.NewStatsRow(s))
	}
	c.statistics = rows
}

// setTablesListeners binds a fresh handler set to every row of table,
// replacing whatever was bound before.
func (c *Controller) setTablesListeners(table *Table) {
	for _, row := range table.rows {
		c.bindRow(row)
	}
}

func (c *Controller) bindRow(row *BoundRow) {
	key := row.Key
	row.handlers = map[render.Action]RowHandler{
		render.ActionDelete: func(ctx context.Context, confirm Confirmer) (Outcome, error) {
			ok, err := c.DeleteNote(ctx, key, confirm)
			return Outcome{Applied: ok}, err
		},
		render.ActionEdit: func(_ context.Context, _ Confirmer) (Outcome, error) {
			form, ok := c.EditNote(key)
			return Outcome{Applied: ok, Form: form}, nil
		},
		render.ActionArchive: func(ctx context.Context, _ Confirmer) (Outcome, error) {
			ok, err := c.ArchiveNote(ctx, key)
			return Outcome{Applied: ok}, err
		},
	}
}

// Resolve maps a row key to the note, its collection and index in the store,
// and its rendered row if any.
func (c *Controller) Resolve(key string) (Resolution, bool) {
	if key == "" {
		return Resolution{}, false
	}
	n, col, idx, ok := c.store.Find(key)
	if !ok {
		return Resolution{}, false
	}

	res := Resolution{Key: key, Note: n, Collection: col, Index: idx}
	if ref, ok := c.index[key]; ok {
		res.Row = ref.row
	}
	return res, true
}

// Dispatch triggers action on the row rendered for key, as a click on the
// row's action would.
func (c *Controller) Dispatch(ctx context.Context, action render.Action, key string, confirm Confirmer) (Outcome, error) {
	ref, ok := c.index[key]
	if !ok {
		c.logger.Debug("no rendered row for key", zap.String("key", key), zap.String("action", string(action)))
		return Outcome{}, nil
	}
	return ref.row.Trigger(ctx, action, confirm)
}

// DeleteNote removes the note behind key after confirmation. It reports false
// without changing anything when the key does not resolve or the user declines.
func (c *Controller) DeleteNote(ctx context.Context, key string, confirm Confirmer) (bool, error) {
	res, ok := c.Resolve(key)
	if !ok {
		c.logger.Debug("delete: unresolved key", zap.String("key", key))
		return false, nil
	}
	if confirm == nil || !confirm.Confirm(DeletePrompt) {
		c.logger.Debug("delete: declined", zap.String("key", key))
		return false, nil
	}

	if _, ok := c.store.RemoveAt(res.Collection, res.Index); !ok {
		return false, nil
	}
	if res.Row != nil {
		c.Table(c.index[key].collection).removeRow(res.Row)
	}
	delete(c.index, key)
	c.RenderStatisticsTable()

	c.logger.Info("note deleted", zap.String("id", key), zap.Stringer("collection", res.Collection))
	return true, c.store.Persist(ctx)
}

// EditNote returns an edit form for the note behind key. Submitting it
// re-renders the table that holds the note and the statistics table.
func (c *Controller) EditNote(key string) (*Form, bool) {
	res, ok := c.Resolve(key)
	if !ok {
		c.logger.Debug("edit: unresolved key", zap.String("key", key))
		return nil, false
	}

	col := res.Collection
	return NewForm(c.store, FormConfig{
		CreateMode:            false,
		RenderStatisticsTable: c.RenderStatisticsTable,
		RenderTable:           func() { c.RenderTable(col) },
		Note:                  res.Note,
		Collection:            col,
	}), true
}

// NewNoteForm returns a create form that adds to the active collection.
func (c *Controller) NewNoteForm() *Form {
	return NewForm(c.store, FormConfig{
		CreateMode:            true,
		RenderStatisticsTable: c.RenderStatisticsTable,
		RenderTable:           c.RenderActiveTable,
		Collection:            notes.Active,
	})
}

// ArchiveNote moves the note behind key to the opposite collection. The
// existing row is relocated into the destination table instead of rebuilding it.
func (c *Controller) ArchiveNote(ctx context.Context, key string) (bool, error) {
	res, ok := c.Resolve(key)
	if !ok {
		c.logger.Debug("archive: unresolved key", zap.String("key", key))
		return false, nil
	}

	from := res.Collection
	to := from.Opposite()
	if _, ok := c.store.MoveByIndex(from, to, res.Index); !ok {
		return false, nil
	}

	row := res.Row
	if row == nil {
		row = &BoundRow{Row: render.NoteRow(res.Note, to)}
		c.bindRow(row)
	} else {
		c.Table(c.index[key].collection).removeRow(row)
		row.Class = to.String()
	}
	dst := c.Table(to)
	dst.rows = append(dst.rows, row)
	c.index[key] = rowRef{collection: to, row: row}

	c.RenderStatisticsTable()

	c.logger.Info("note moved", zap.String("id", key), zap.Stringer("from", from), zap.Stringer("to", to))
	return true, c.store.Persist(ctx)
}
