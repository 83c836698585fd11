package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rhystmorgan/pbterm/internal/models"
	"rhystmorgan/pbterm/internal/transfer"
)

var (
	exportFormat string
	exportOut    string
	importFormat string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every contact as JSON, CSV or YAML",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Add contacts from a JSON, CSV or YAML file",
	Long: `Every row is checked like an edit: invalid names or numbers and
rows that clash with an existing contact are skipped and reported.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", string(transfer.FormatJSON), "json, csv or yaml")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default stdout)")
	importCmd.Flags().StringVarP(&importFormat, "format", "f", "", "json, csv or yaml (default from extension)")

	rootCmd.AddCommand(exportCmd, importCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	format, err := transfer.ParseFormat(exportFormat)
	if err != nil {
		return err
	}

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

	if exportOut == "" {
		if err := transfer.Export(cmd.OutOrStdout(), format, contacts); err != nil {
			return err
		}
	} else if err := exportToFile(exportOut, format, contacts); err != nil {
		return err
	}
	logger.Info("contacts exported", zap.Int("count", len(contacts)), zap.String("format", string(format)))
	return nil
}

// exportToFile writes the export and reports a failed close, since that is
// where a short final write shows up.
func exportToFile(path string, format transfer.Format, contacts []models.Contact) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}

	if err := transfer.Export(f, format, contacts); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	path := args[0]

	var (
		format transfer.Format
		err    error
	)
	if importFormat != "" {
		format, err = transfer.ParseFormat(importFormat)
	} else {
		format, err = transfer.FormatFromPath(path)
	}
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open import file: %w", err)
	}
	defer f.Close()

	repo, auditor, release, err := openPhonebook()
	if err != nil {
		return err
	}
	defer release()

	ctx := commandContext(cmd)
	list, err := repo.LoadContacts(ctx)
	if err != nil {
		return fmt.Errorf("failed to load contacts: %w", err)
	}

	result, err := transfer.Import(f, format, list.Snapshot())
	if err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	for _, skipped := range result.Skipped {
		fmt.Fprintf(stderr, "skipped %s\n", skipped.Error())
	}

	for _, contact := range result.Imported {
		if err := repo.AddContact(ctx, contact); err != nil {
			return fmt.Errorf("failed to save contact: %w", err)
		}
		if err := list.Add(contact, auditor); err != nil {
			logger.Warn("failed to audit imported contact", zap.Error(err))
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "imported %d of %d contacts\n", len(result.Imported), result.Total)
	logger.Info("contacts imported",
		zap.Int("imported", len(result.Imported)),
		zap.Int("skipped", len(result.Skipped)))
	return nil
}
