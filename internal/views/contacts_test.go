package views

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rhystmorgan/pbterm/internal/audit"
	"rhystmorgan/pbterm/internal/models"
	"rhystmorgan/pbterm/internal/storage"
	"rhystmorgan/pbterm/internal/validation"
)

type fixture struct {
	repo    *storage.FileStore
	auditor *audit.ContactAuditor
	model   *ContactsModel
	alice   *models.Contact
	bob     *models.Contact
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dir := t.TempDir()
	repo := storage.NewFileStore(filepath.Join(dir, "contacts.json"), "")
	alice := models.NewContact("Alice", "111-1111")
	bob := models.NewContact("Bob", "222-2222")
	require.NoError(t, repo.AddContact(context.Background(), bob))
	require.NoError(t, repo.AddContact(context.Background(), alice))

	auditor, err := audit.NewContactAuditor(filepath.Join(dir, "audit"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = auditor.Close() })

	m := NewContactsModel(repo, auditor, nil)
	msgs := collect(m.Init())
	require.Len(t, msgs, 1)
	m.Update(msgs[0])

	return &fixture{repo: repo, auditor: auditor, model: m, alice: alice, bob: bob}
}

// send feeds msg to the model and returns the command it produced.
func (f *fixture) send(msg tea.Msg) tea.Cmd {
	_, cmd := f.model.Update(msg)
	return cmd
}

// settle runs cmd and feeds every resulting message back, one level deep per
// round, until nothing is left.
func (f *fixture) settle(cmd tea.Cmd) {
	for _, msg := range collect(cmd) {
		f.settle(f.send(msg))
	}
}

func TestContactsModelLoadsSorted(t *testing.T) {
	f := newFixture(t)

	filtered := f.model.Filtered()
	require.Len(t, filtered, 2)
	assert.Equal(t, "Alice", filtered[0].Name)
	assert.Equal(t, "Bob", filtered[1].Name)
	assert.Contains(t, f.model.View(), "Phonebook (2 contacts)")
}

func TestContactsModelEditPersists(t *testing.T) {
	f := newFixture(t)

	f.send(keyRunes("e"))
	require.Equal(t, ContactViewEdit, f.model.CurrentView())
	require.NotNil(t, f.model.EditModal())
	assert.Equal(t, f.alice.ID, f.model.EditModal().Session().Target().ID)

	f.send(key(tea.KeyCtrlU))
	f.send(keyRunes("Alicia"))
	f.settle(f.send(key(tea.KeyEnter)))

	assert.Equal(t, ContactViewList, f.model.CurrentView())
	assert.Nil(t, f.model.EditModal())

	list, err := f.repo.LoadContacts(context.Background())
	require.NoError(t, err)
	stored := list.FindByID(f.alice.ID)
	require.NotNil(t, stored)
	assert.Equal(t, "Alicia", stored.Name)
	assert.Equal(t, "111-1111", stored.Number)

	assert.Equal(t, "Alicia", f.model.Filtered()[0].Name)
	assert.Contains(t, f.model.View(), "Contact 'Alicia' has been updated.")

	require.NoError(t, f.auditor.Flush())
	history, err := f.auditor.GetContactHistory(f.alice.ID)
	require.NoError(t, err)
	require.NotEmpty(t, history)
	assert.Equal(t, audit.AuditActionUpdate, history[len(history)-1].Action)
}

func TestContactsModelEditCollisionDoesNotPersist(t *testing.T) {
	f := newFixture(t)

	f.send(keyRunes("e"))
	f.send(key(tea.KeyCtrlU))
	f.send(keyRunes("BOB"))
	cmd := f.send(key(tea.KeyEnter))
	assert.NotNil(t, cmd)

	assert.Equal(t, ContactViewEdit, f.model.CurrentView())
	list, err := f.repo.LoadContacts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Alice", list.FindByID(f.alice.ID).Name)
}

func TestContactsModelEditDiscard(t *testing.T) {
	f := newFixture(t)

	f.send(keyRunes("e"))
	f.send(key(tea.KeyCtrlU))
	f.send(keyRunes("Zed"))
	f.send(key(tea.KeyEsc))
	f.send(keyRunes("y"))

	assert.Equal(t, ContactViewList, f.model.CurrentView())
	assert.Equal(t, "Alice", f.model.Filtered()[0].Name)
}

func TestContactsModelStoreFailureIsReported(t *testing.T) {
	f := newFixture(t)

	f.send(keyRunes("e"))
	cmd := f.send(key(tea.KeyEnter))

	// The contact vanishes between the check and the write.
	require.NoError(t, f.repo.DeleteContact(context.Background(), f.alice.ID))
	f.settle(cmd)

	assert.ErrorIs(t, f.model.error, storage.ErrContactNotFound)
	assert.Contains(t, f.model.View(), "That contact no longer exists.")
}

// renameSelected edits the selected contact's name and returns the pending
// store write without running it.
func (f *fixture) renameSelected(t *testing.T, name string) tea.Cmd {
	t.Helper()

	f.send(keyRunes("e"))
	f.send(key(tea.KeyCtrlU))
	f.send(keyRunes(name))
	msgs := collect(f.send(key(tea.KeyEnter)))
	require.Len(t, msgs, 1)
	require.IsType(t, ContactUpdateRequestedMsg{}, msgs[0])

	save := f.send(msgs[0])
	require.NotNil(t, save)
	return save
}

func TestContactsModelEditAppliesBeforeSave(t *testing.T) {
	f := newFixture(t)

	save := f.renameSelected(t, "Alicia")
	assert.Equal(t, "Alicia", f.model.Filtered()[0].Name)

	// A second edit opened before the store answers sees the new name.
	f.send(keyRunes("j"))
	f.send(keyRunes("e"))
	require.Equal(t, f.bob.ID, f.model.EditModal().Session().Target().ID)
	f.send(key(tea.KeyCtrlU))
	f.send(keyRunes("alicia"))
	f.send(key(tea.KeyEnter))
	assert.Equal(t, validation.NameTakenMessage, f.model.EditModal().Session().LastFailure())
	f.send(key(tea.KeyEsc))
	f.send(keyRunes("y"))

	f.settle(save)
	assert.Nil(t, f.model.error)
	assert.Equal(t, "Alicia", f.model.Filtered()[0].Name)

	require.NoError(t, f.auditor.Flush())
	history, err := f.auditor.GetContactHistory(f.alice.ID)
	require.NoError(t, err)
	require.NotEmpty(t, history)
	last := history[len(history)-1]
	assert.Equal(t, audit.AuditActionUpdate, last.Action)
	assert.Equal(t, audit.Change{OldValue: "Alice", NewValue: "Alicia"}, last.Changes["name"])
}

func TestContactsModelFailedUpdateRollsBack(t *testing.T) {
	f := newFixture(t)

	save := f.renameSelected(t, "Alicia")
	require.Equal(t, "Alicia", f.model.Filtered()[0].Name)

	require.NoError(t, f.repo.DeleteContact(context.Background(), f.alice.ID))
	f.settle(save)

	assert.ErrorIs(t, f.model.error, storage.ErrContactNotFound)
	assert.Equal(t, "Alice", f.model.Filtered()[0].Name)
	assert.Equal(t, "111-1111", f.model.Filtered()[0].Number)
}

func TestContactsModelAdd(t *testing.T) {
	f := newFixture(t)

	f.send(keyRunes("a"))
	require.Equal(t, ContactViewCreate, f.model.CurrentView())

	f.send(keyRunes("Carol"))
	f.send(key(tea.KeyTab))
	f.send(keyRunes("333-3333"))
	f.settle(f.send(key(tea.KeyEnter)))

	assert.Equal(t, ContactViewList, f.model.CurrentView())
	assert.Len(t, f.model.Contacts(), 3)

	list, err := f.repo.LoadContacts(context.Background())
	require.NoError(t, err)
	assert.Len(t, list.Contacts, 3)
}

func TestContactsModelDelete(t *testing.T) {
	f := newFixture(t)

	f.send(keyRunes("j"))
	f.send(keyRunes("d"))
	require.Equal(t, ContactViewDeleteConfirm, f.model.CurrentView())
	assert.Contains(t, f.model.View(), "Bob")

	f.settle(f.send(keyRunes("y")))

	assert.Equal(t, ContactViewList, f.model.CurrentView())
	require.Len(t, f.model.Filtered(), 1)
	assert.Equal(t, "Alice", f.model.Filtered()[0].Name)

	list, err := f.repo.LoadContacts(context.Background())
	require.NoError(t, err)
	assert.Nil(t, list.FindByID(f.bob.ID))
}

func TestContactsModelDeleteDeclined(t *testing.T) {
	f := newFixture(t)

	f.send(keyRunes("d"))
	f.send(keyRunes("n"))

	assert.Equal(t, ContactViewList, f.model.CurrentView())
	assert.Len(t, f.model.Filtered(), 2)
}

func TestContactsModelSearch(t *testing.T) {
	f := newFixture(t)

	f.send(keyRunes("/"))
	f.send(keyRunes("22"))
	require.Len(t, f.model.Filtered(), 1)
	assert.Equal(t, "Bob", f.model.Filtered()[0].Name)

	// Blur the search, then clear it.
	f.send(key(tea.KeyEsc))
	f.send(key(tea.KeyEsc))
	assert.Len(t, f.model.Filtered(), 2)
}

func TestContactsModelQuit(t *testing.T) {
	f := newFixture(t)

	cmd := f.send(keyRunes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestFormatErrorMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("failed to update contact: %w", storage.ErrContactNotFound), "That contact no longer exists. Reload and try again."},
		{fmt.Errorf("failed to load contacts: %w", storage.ErrWrongPassphrase), "Could not unlock your phonebook. Check PBTERM_PASSPHRASE."},
		{fmt.Errorf("failed to load contacts: %w", errors.New("disk")), "Could not load your contacts. Please try again."},
		{fmt.Errorf("failed to delete contact: %w", errors.New("disk")), "Could not delete the contact. Please try again."},
		{errors.New("something else"), "something else"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatErrorMessage(tt.err))
	}
}

func TestAppModelQuitsOnCtrlC(t *testing.T) {
	repo := storage.NewFileStore(filepath.Join(t.TempDir(), "contacts.json"), "")
	app := NewAppModel(repo, nil, StatusInfo{Backend: "json", DataDir: "/tmp/pb"}, nil)

	assert.Equal(t, "Loading...", app.View())

	app.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	assert.Contains(t, app.View(), "store: json")
	assert.Contains(t, app.View(), "audit: off")

	_, cmd := app.Update(key(tea.KeyCtrlC))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
