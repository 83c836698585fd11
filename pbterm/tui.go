package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"rhystmorgan/pbterm/internal/views"
)

func runTUI(cmd *cobra.Command, args []string) error {
	repo, auditor, release, err := openPhonebook()
	if err != nil {
		return err
	}
	defer release()

	app := views.NewAppModel(repo, auditor, views.StatusInfo{
		Backend: cfg.Store,
		DataDir: cfg.DataDir,
		Audit:   auditor != nil,
	}, logger)

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running application: %w", err)
	}
	return nil
}
