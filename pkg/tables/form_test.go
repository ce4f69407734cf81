package tables

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unowned-ai/notetable/pkg/notes"
)

func TestFormValidation(t *testing.T) {
	store := notes.NewStore(nil)
	renders := 0
	form := NewForm(store, FormConfig{
		CreateMode:            true,
		RenderTable:           func() { renders++ },
		RenderStatisticsTable: func() { renders++ },
	})

	err := form.Submit(context.Background(), "abc", "long enough", "Task")
	assert.ErrorIs(t, err, ErrInvalidInput)
	err = form.Submit(context.Background(), "long enough", "abc", "Task")
	assert.ErrorIs(t, err, ErrInvalidInput)
	err = form.Submit(context.Background(), "long enough", "long enough", "Chores")
	assert.ErrorIs(t, err, ErrUnknownCategory)

	assert.True(t, form.Open())
	assert.Zero(t, renders)
	assert.Zero(t, store.Len(notes.Active))
}

func TestFormMinimumLengthCountsRunes(t *testing.T) {
	assert.NoError(t, Validate("ñaña", "día!", "Idea"))
	assert.ErrorIs(t, Validate("ñañ", "día!", "Idea"), ErrInvalidInput)
}

func TestFormCreateRunsCallbacksAndCloses(t *testing.T) {
	store := notes.NewStore(nil)
	var calls []string
	form := NewForm(store, FormConfig{
		CreateMode:            true,
		RenderTable:           func() { calls = append(calls, "table") },
		RenderStatisticsTable: func() { calls = append(calls, "stats") },
		Collection:            notes.Archived,
	})
	assert.Equal(t, "Create Note", form.Title())
	_, _, category := form.Defaults()
	assert.Equal(t, notes.DefaultCategory(), category)

	require.NoError(t, form.Submit(context.Background(), "Groceries", "Buy milk 5/1/2024", "Personal"))

	assert.Equal(t, []string{"table", "stats"}, calls)
	assert.False(t, form.Open())
	assert.Equal(t, 1, store.Len(notes.Archived))
	assert.Equal(t, "5/1/2024", form.Note().Dates)

	err := form.Submit(context.Background(), "Groceries", "Buy milk", "Personal")
	assert.ErrorIs(t, err, ErrFormClosed)
	assert.Equal(t, 1, store.Len(notes.Archived))
}

func TestFormCancel(t *testing.T) {
	store := notes.NewStore(nil)
	form := NewForm(store, FormConfig{CreateMode: true})
	form.Cancel()
	assert.False(t, form.Open())
	assert.ErrorIs(t, form.Submit(context.Background(), "name", "content", "Task"), ErrFormClosed)
}

func TestFormEditWithoutNoteFallsBackToCreate(t *testing.T) {
	form := NewForm(notes.NewStore(nil), FormConfig{CreateMode: false})
	assert.True(t, form.CreateMode())
}
