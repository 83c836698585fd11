package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rhystmorgan/pbterm/internal/models"
)

func runList(cmd *cobra.Command, args []string) error {
	repo, _, release, err := openPhonebook()
	if err != nil {
		return err
	}
	defer release()

	list, err := repo.LoadContacts(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to load contacts: %w", err)
	}

	contacts := list.Snapshot()
	models.SortByName(contacts)

	out := cmd.OutOrStdout()
	for _, c := range contacts {
		fmt.Fprintf(out, "%s\t%s\t%s\n", c.ID, c.Name, c.Number)
	}
	return nil
}
