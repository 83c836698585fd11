package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rhystmorgan/pbterm/internal/editor"
	"rhystmorgan/pbterm/internal/storage"
	"rhystmorgan/pbterm/internal/validation"
)

var ErrEditDiscarded = errors.New("edit discarded")

func runEdit(cmd *cobra.Command, args []string) error {
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

	target := list.FindByID(args[0])
	if target == nil {
		return fmt.Errorf("%w: %s", storage.ErrContactNotFound, args[0])
	}
	before := *target

	in := bufio.NewReader(cmd.InOrStdin())
	stderr := cmd.ErrOrStderr()

	var issued *editor.UpdateCommand
	session, err := editor.Open(before, editor.Deps{
		Reader:  editor.ReaderFunc(list.Snapshot),
		Updater: editor.UpdaterFunc(func(u editor.UpdateCommand) { issued = &u }),
		Notifier: editor.NotifierFunc(func(message string) {
			fmt.Fprintln(stderr, message)
		}),
		Confirmer: editor.ConfirmerFunc(func(message string) bool {
			return confirm(in, stderr, message)
		}),
		Host:   editor.HostFunc(func() {}),
		Logger: logger,
	})
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("name") {
		name, _ := flags.GetString("name")
		session.SetName(name)
	}
	if flags.Changed("number") {
		number, _ := flags.GetString("number")
		session.SetNumber(number)
	}

	for {
		outcome := session.Submit()
		if outcome == editor.OutcomeSubmitted {
			break
		}

		if outcome == editor.OutcomeInvalid {
			for _, field := range []validation.Field{validation.FieldName, validation.FieldNumber} {
				if msg := session.FieldError(field); msg != "" {
					fmt.Fprintf(stderr, "%s: %s\n", field, msg)
				}
			}
		}

		if session.Cancel() == editor.OutcomeCancelled {
			return ErrEditDiscarded
		}

		draft := session.Draft()
		session.SetName(prompt(in, stderr, "Name", draft.Name))
		session.SetNumber(prompt(in, stderr, "Number", draft.Number))
	}

	updated, err := repo.UpdateContact(ctx, issued.ID, issued.Data.Name, issued.Data.Number)
	if err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}

	if auditor != nil {
		if err := before.Update(updated.Name, updated.Number, auditor); err != nil {
			logger.Warn("failed to audit contact update", zap.Error(err))
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", updated.ID, updated.Name, updated.Number)
	return nil
}

// confirm treats end of input as yes so a closed stdin cannot loop forever.
func confirm(in *bufio.Reader, w io.Writer, message string) bool {
	fmt.Fprintf(w, "%s [y/N]: ", message)
	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		return true
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// prompt reads a replacement value; an empty line keeps current.
func prompt(in *bufio.Reader, w io.Writer, label, current string) string {
	fmt.Fprintf(w, "%s [%s]: ", label, current)
	line, _ := in.ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return current
	}
	return line
}
