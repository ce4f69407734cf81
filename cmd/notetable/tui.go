package main

import (
	"github.com/spf13/cobra"

	"github.com/unowned-ai/notetable/pkg/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Show terminal UI",
	Long: `Display the interactive notes tables: the active and archived notes, the
category statistics and a form for creating and editing notes. Logs go to the
configured log file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		return tui.ShowTUI(s.ctrl, s.path, logger)
	},
}
