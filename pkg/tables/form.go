package tables

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/unowned-ai/notetable/pkg/notes"
)

// MinFieldLength is the minimum length of a note's name and content.
const MinFieldLength = 4

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnknownCategory = errors.New("unknown category")
	ErrFormClosed      = errors.New("form is closed")
)

// FormConfig configures a create or edit form. RenderTable and
// RenderStatisticsTable run after a successful submit.
type FormConfig struct {
	CreateMode            bool
	RenderStatisticsTable func()
	RenderTable           func()
	// Note is the note being edited. Ignored in create mode.
	Note *notes.Note
	// Collection receives new notes in create mode.
	Collection notes.Collection
}

// Form collects a note's name, content and category and applies them to the store.
type Form struct {
	store *notes.Store
	cfg   FormConfig
	open  bool
	note  *notes.Note
}

func NewForm(store *notes.Store, cfg FormConfig) *Form {
	if cfg.RenderTable == nil {
		cfg.RenderTable = func() {}
	}
	if cfg.RenderStatisticsTable == nil {
		cfg.RenderStatisticsTable = func() {}
	}
	if !cfg.Collection.Valid() {
		cfg.Collection = notes.Active
	}
	if !cfg.CreateMode && cfg.Note == nil {
		cfg.CreateMode = true
	}
	return &Form{store: store, cfg: cfg, open: true, note: cfg.Note}
}

func (f *Form) CreateMode() bool { return f.cfg.CreateMode }

func (f *Form) Open() bool { return f.open }

// Note returns the note the form created or edits. Nil for a create form
// before a successful submit.
func (f *Form) Note() *notes.Note { return f.note }

func (f *Form) Title() string {
	if f.cfg.CreateMode {
		return "Create Note"
	}
	return "Edit Note"
}

// Defaults returns the initial field values: empty fields and the first
// category when creating, the edited note's values otherwise.
func (f *Form) Defaults() (name, content, category string) {
	if f.cfg.CreateMode {
		return "", "", notes.DefaultCategory()
	}
	return f.cfg.Note.Name, f.cfg.Note.Content, f.cfg.Note.Category
}

// Validate reports ErrInvalidInput or ErrUnknownCategory without touching the store.
func Validate(name, content, category string) error {
	if utf8.RuneCountInString(name) < MinFieldLength || utf8.RuneCountInString(content) < MinFieldLength {
		return ErrInvalidInput
	}
	if !notes.IsCategory(category) {
		return ErrUnknownCategory
	}
	return nil
}

// Submit validates the fields and creates or edits the note. On a validation
// error nothing changes and the form stays open. Otherwise the store is
// persisted, both render callbacks run and the form closes; a persist error is
// returned after the views have been refreshed.
func (f *Form) Submit(ctx context.Context, name, content, category string) error {
	if !f.open {
		return ErrFormClosed
	}
	if err := Validate(name, content, category); err != nil {
		return err
	}

	if f.cfg.CreateMode {
		n := f.store.NewNote(name, content, category)
		f.store.Insert(f.cfg.Collection, n)
		f.note = n
	} else {
		n := f.cfg.Note
		n.Content = content
		n.Dates = notes.HighlightDates(content)
		n.Name = name
		n.Category = category
	}

	err := f.store.Persist(ctx)
	f.cfg.RenderTable()
	f.cfg.RenderStatisticsTable()
	f.open = false
	return err
}

// Cancel closes the form without changes.
func (f *Form) Cancel() {
	f.open = false
}
