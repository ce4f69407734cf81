package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/unowned-ai/notetable/pkg/notes"
	"github.com/unowned-ai/notetable/pkg/render"
	"github.com/unowned-ai/notetable/pkg/tables"
)

var (
	jsonOutput   bool
	archivedFlag bool
	nameFlag     string
	contentFlag  string
	categoryFlag string
	yesFlag      bool
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Manage notes",
	Long:  `List, create, edit, archive and delete notes.`,
}

var notesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active notes (or archived ones with --archived)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		col := notes.Active
		if archivedFlag {
			col = notes.Archived
		}
		t := s.ctrl.Table(col)
		if t.Len() == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No %s notes found.\n", col)
			return nil
		}

		if jsonOutput {
			list := make([]*notes.Note, 0, t.Len())
			for _, row := range t.Rows() {
				if res, ok := s.ctrl.Resolve(row.Key); ok {
					list = append(list, res.Note)
				}
			}
			return printJSON(cmd.OutOrStdout(), list)
		}

		rows := make([][]string, 0, t.Len())
		for _, row := range t.Rows() {
			rows = append(rows, append([]string{row.Key}, row.Cells...))
		}
		printTable(cmd.OutOrStdout(), append([]string{"ID"}, render.NoteColumns...), rows)
		return nil
	},
}

var notesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new active note",
	Long: fmt.Sprintf(`Creates a note. Name and content need at least %d characters; the category
must be one of: %s. Dates like 5/1/2024 in the content are extracted.`,
		tables.MinFieldLength, strings.Join(notes.Categories(), ", ")),
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		form := s.ctrl.NewNoteForm()
		if err := form.Submit(cmd.Context(), nameFlag, contentFlag, categoryFlag); err != nil {
			return fmt.Errorf("failed to create note: %w", err)
		}
		return printNote(cmd.OutOrStdout(), "Note created successfully:", form.Note())
	},
}

var notesEditCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Edit a note in place",
	Long:  `Updates name, content or category of a note. Flags that are not given keep the current value.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		form, ok := s.ctrl.EditNote(args[0])
		if !ok {
			return fmt.Errorf("note not found: %s", args[0])
		}

		name, content, category := form.Defaults()
		if cmd.Flags().Changed("name") {
			name = nameFlag
		}
		if cmd.Flags().Changed("content") {
			content = contentFlag
		}
		if cmd.Flags().Changed("category") {
			category = categoryFlag
		}
		if err := form.Submit(cmd.Context(), name, content, category); err != nil {
			return fmt.Errorf("failed to edit note: %w", err)
		}
		return printNote(cmd.OutOrStdout(), "Note updated successfully:", form.Note())
	},
}

var notesArchiveCmd = &cobra.Command{
	Use:   "archive [id]",
	Short: "Move a note between the active and archived tables",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		applied, err := s.ctrl.ArchiveNote(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to archive note: %w", err)
		}
		if !applied {
			return fmt.Errorf("note not found: %s", args[0])
		}

		res, _ := s.ctrl.Resolve(args[0])
		fmt.Fprintf(cmd.OutOrStdout(), "Note %s moved to %s.\n", args[0], res.Collection)
		return nil
	},
}

var notesDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a note",
	Long:  `Deletes a note from whichever table holds it. Asks for confirmation unless --yes is given.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		if _, ok := s.ctrl.Resolve(args[0]); !ok {
			return fmt.Errorf("note not found: %s", args[0])
		}

		var confirm tables.Confirmer = tables.AlwaysConfirm
		if !yesFlag {
			confirm = promptConfirmer(cmd.InOrStdin(), cmd.OutOrStdout())
		}

		applied, err := s.ctrl.DeleteNote(cmd.Context(), args[0], confirm)
		if err != nil {
			return fmt.Errorf("failed to delete note: %w", err)
		}
		if !applied {
			fmt.Fprintln(cmd.OutOrStdout(), "Deletion cancelled.")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Note %s deleted successfully.\n", args[0])
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show per-category counts of active and archived notes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		stats := s.ctrl.Statistics()
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), s.ctrl.Store().Statistics())
		}

		rows := make([][]string, 0, len(stats))
		for _, r := range stats {
			rows = append(rows, r.Cells())
		}
		printTable(cmd.OutOrStdout(), render.StatsColumns, rows)
		return nil
	},
}

// promptConfirmer asks on out and reads a y/n answer from in.
func promptConfirmer(in io.Reader, out io.Writer) tables.Confirmer {
	return tables.ConfirmFunc(func(prompt string) bool {
		fmt.Fprintf(out, "%s [y/N]: ", prompt)
		answer, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return true
		}
		return false
	})
}

func printNote(w io.Writer, title string, n *notes.Note) error {
	fmt.Fprintln(w, title)
	return printJSON(w, n)
}

func printJSON(w io.Writer, v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	fmt.Fprintln(w, string(output))
	return nil
}

func printTable(w io.Writer, headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	fmt.Fprintln(w, t.Render())
}

func initNotesCmd() {
	notesListCmd.Flags().BoolVar(&archivedFlag, "archived", false, "List archived notes instead of active ones")
	notesListCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print notes as JSON")
	statsCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print statistics as JSON")

	notesCreateCmd.Flags().StringVarP(&nameFlag, "name", "n", "", "Name of the note (required)")
	notesCreateCmd.MarkFlagRequired("name")
	notesCreateCmd.Flags().StringVarP(&contentFlag, "content", "c", "", "Content of the note (required)")
	notesCreateCmd.MarkFlagRequired("content")
	notesCreateCmd.Flags().StringVar(&categoryFlag, "category", notes.DefaultCategory(), "Category of the note")

	notesEditCmd.Flags().StringVarP(&nameFlag, "name", "n", "", "New name of the note")
	notesEditCmd.Flags().StringVarP(&contentFlag, "content", "c", "", "New content of the note")
	notesEditCmd.Flags().StringVar(&categoryFlag, "category", "", "New category of the note")

	notesDeleteCmd.Flags().BoolVarP(&yesFlag, "yes", "y", false, "Delete without asking for confirmation")

	notesCmd.AddCommand(notesListCmd, notesCreateCmd, notesEditCmd, notesArchiveCmd, notesDeleteCmd)
}
