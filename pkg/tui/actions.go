package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/unowned-ai/notetable/pkg/tables"
)

// notesLoadedMsg reports that the store was hydrated from storage.
type notesLoadedMsg struct{}

type clearStatusMsg struct {
	seq int
}

// Load notes from storage once and return tea data
func loadNotes(c *tables.Controller) tea.Cmd {
	return func() tea.Msg {
		if err := c.Store().Load(context.Background()); err != nil {
			return err
		}
		return notesLoadedMsg{}
	}
}

// Clear the status line after a delay unless a newer status replaced it
func clearStatusAfter(seq int) tea.Cmd {
	return tea.Tick(statusTimeout, func(time.Time) tea.Msg {
		return clearStatusMsg{seq: seq}
	})
}
