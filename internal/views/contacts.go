package views

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"rhystmorgan/pbterm/internal/audit"
	"rhystmorgan/pbterm/internal/editor"
	"rhystmorgan/pbterm/internal/models"
	"rhystmorgan/pbterm/internal/storage"
	"rhystmorgan/pbterm/internal/utils"
)

type ContactView int

const (
	ContactViewList ContactView = iota
	ContactViewEdit
	ContactViewCreate
	ContactViewDeleteConfirm
)

type ContactsModel struct {
	repo    storage.Repository
	auditor *audit.ContactAuditor
	log     *zap.Logger

	contacts         *models.ContactList
	filteredContacts []models.Contact
	selectedContact  int

	currentView ContactView
	searchInput textinput.Model
	searchQuery string

	editModal   *EditContactModel
	createModal *ContactCreateModel

	// values each contact held before an update that is still being saved
	pendingUpdates map[string]models.Contact

	loading        bool
	error          error
	successMessage string

	width  int
	height int
}

type ContactsLoadedMsg struct {
	Contacts *models.ContactList
}

type ContactUpdatedMsg struct {
	Contact *models.Contact
}

// ContactUpdateFailedMsg reports a rejected write so the list can drop the
// values it applied ahead of the store.
type ContactUpdateFailedMsg struct {
	ContactID string
	Err       error
}

type ContactCreatedMsg struct {
	Contact *models.Contact
}

type ContactDeletedMsg struct {
	ContactID string
}

// NewContactsModel builds the list view. auditor may be nil.
func NewContactsModel(repo storage.Repository, auditor *audit.ContactAuditor, logger *zap.Logger) *ContactsModel {
	if logger == nil {
		logger = zap.NewNop()
	}

	searchInput := textinput.New()
	searchInput.Placeholder = "name or number"
	searchInput.CharLimit = 64
	searchInput.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(Colours.Blue))

	m := &ContactsModel{
		repo:        repo,
		auditor:     auditor,
		log:         logger,
		contacts:       &models.ContactList{},
		searchInput:    searchInput,
		loading:        true,
		pendingUpdates: make(map[string]models.Contact),
	}
	m.createModal = NewContactCreateModel(editor.ReaderFunc(m.snapshot))
	return m
}

func (m *ContactsModel) Init() tea.Cmd {
	return m.loadContacts()
}

func (m *ContactsModel) CurrentView() ContactView {
	return m.currentView
}

func (m *ContactsModel) Contacts() []models.Contact {
	return m.snapshot()
}

func (m *ContactsModel) Filtered() []models.Contact {
	return m.filteredContacts
}

func (m *ContactsModel) EditModal() *EditContactModel {
	return m.editModal
}

func (m *ContactsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case ContactsLoadedMsg:
		m.contacts = msg.Contacts
		m.loading = false
		m.applyFilter()
		m.log.Info("contacts loaded", zap.Int("count", len(m.contacts.Contacts)))
		return m, nil

	case ContactUpdateRequestedMsg:
		m.applyPendingUpdate(msg.Command)
		return m, m.saveContact(msg.Command)

	case ContactCreateRequestedMsg:
		m.currentView = ContactViewList
		return m, m.createContact(msg.Contact)

	case ContactUpdatedMsg:
		m.confirmUpdate(msg.Contact)
		m.applyFilter()
		m.clearMessages()
		m.successMessage = fmt.Sprintf("Contact '%s' has been updated.", msg.Contact.Name)
		return m, nil

	case ContactUpdateFailedMsg:
		m.rollbackUpdate(msg.ContactID)
		m.applyFilter()
		m.error = msg.Err
		m.successMessage = ""
		m.log.Error("contact update failed", zap.String("contact_id", msg.ContactID), zap.Error(msg.Err))
		return m, nil

	case ContactCreatedMsg:
		if err := m.contacts.Add(msg.Contact, m.auditor); err != nil {
			m.log.Warn("failed to audit contact creation", zap.Error(err))
		}
		m.applyFilter()
		m.clearMessages()
		m.successMessage = fmt.Sprintf("Contact '%s' has been added.", msg.Contact.Name)
		return m, nil

	case ContactDeletedMsg:
		if err := m.contacts.Remove(msg.ContactID, m.auditor); err != nil {
			m.log.Warn("failed to remove deleted contact", zap.Error(err))
		}
		m.applyFilter()
		m.currentView = ContactViewList
		m.clearMessages()
		m.successMessage = "Contact has been deleted."
		if m.selectedContact >= len(m.filteredContacts) && m.selectedContact > 0 {
			m.selectedContact = len(m.filteredContacts) - 1
		}
		return m, nil

	case ErrorMsg:
		m.error = msg.Err
		m.successMessage = ""
		m.loading = false
		m.log.Error("contact operation failed", zap.Error(msg.Err))
		return m, nil

	case tea.KeyMsg:
		switch m.currentView {
		case ContactViewList:
			return m.updateListView(msg)
		case ContactViewDeleteConfirm:
			return m.updateDeleteConfirmView(msg)
		}
	}

	// Everything else belongs to the open dialog, if any.
	switch m.currentView {
	case ContactViewEdit:
		return m.updateEditView(msg)
	case ContactViewCreate:
		return m.updateCreateView(msg)
	}

	if m.searchInput.Focused() {
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *ContactsModel) updateListView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searchInput.Focused() {
		switch msg.String() {
		case "esc", "enter":
			m.searchInput.Blur()
			return m, nil
		}

		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		if q := m.searchInput.Value(); q != m.searchQuery {
			m.searchQuery = q
			m.selectedContact = 0
			m.applyFilter()
		}
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "/":
		m.clearMessages()
		return m, m.searchInput.Focus()

	case "up", "k":
		if m.selectedContact > 0 {
			m.selectedContact--
		}

	case "down", "j":
		if m.selectedContact < len(m.filteredContacts)-1 {
			m.selectedContact++
		}

	case "e", "enter":
		return m.openEditor()

	case "a":
		m.clearMessages()
		m.currentView = ContactViewCreate
		return m, m.createModal.Show()

	case "d", "delete":
		if len(m.filteredContacts) > 0 {
			m.clearMessages()
			m.currentView = ContactViewDeleteConfirm
		}

	case "esc":
		if m.searchQuery != "" {
			m.searchQuery = ""
			m.searchInput.SetValue("")
			m.applyFilter()
		} else {
			m.clearMessages()
		}
	}

	return m, nil
}

func (m *ContactsModel) openEditor() (tea.Model, tea.Cmd) {
	if len(m.filteredContacts) == 0 {
		return m, nil
	}

	target := m.filteredContacts[m.selectedContact]
	modal, err := NewEditContactModel(target, editor.ReaderFunc(m.snapshot), m.log)
	if err != nil {
		m.error = fmt.Errorf("failed to open editor: %w", err)
		return m, nil
	}

	m.clearMessages()
	m.editModal = modal
	m.currentView = ContactViewEdit
	return m, modal.Init()
}

func (m *ContactsModel) updateEditView(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.editModal == nil {
		m.currentView = ContactViewList
		return m, nil
	}

	var cmd tea.Cmd
	m.editModal, cmd = m.editModal.Update(msg)
	if m.editModal.Closed() {
		m.editModal = nil
		m.currentView = ContactViewList
	}
	return m, cmd
}

func (m *ContactsModel) updateCreateView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.createModal, cmd = m.createModal.Update(msg)
	if !m.createModal.IsVisible() {
		m.currentView = ContactViewList
	}
	return m, cmd
}

func (m *ContactsModel) updateDeleteConfirmView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		if len(m.filteredContacts) > 0 {
			contact := m.filteredContacts[m.selectedContact]
			m.currentView = ContactViewList
			return m, m.deleteContact(contact.ID)
		}
		m.currentView = ContactViewList

	case "n", "N", "esc":
		m.currentView = ContactViewList
	}

	return m, nil
}

func (m *ContactsModel) View() string {
	switch m.currentView {
	case ContactViewEdit:
		if m.editModal != nil {
			return m.place(m.editModal.View())
		}
	case ContactViewCreate:
		return m.place(m.createModal.View())
	case ContactViewDeleteConfirm:
		return m.place(m.renderDeleteConfirmView())
	}
	return m.renderListView()
}

// place centres a dialog in the window once its size is known.
func (m *ContactsModel) place(dialog string) string {
	if m.width == 0 || m.height == 0 {
		return dialog
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, dialog)
}

func (m *ContactsModel) renderListView() string {
	var content strings.Builder

	title := "Phonebook"
	if n := len(m.contacts.Contacts); n > 0 {
		title += fmt.Sprintf(" (%d contacts)", n)
	}
	content.WriteString(headerStyle(m.width).Render(title))
	content.WriteString("\n")

	content.WriteString(lipgloss.JoinHorizontal(lipgloss.Left,
		dimStyle.Render("Search: "),
		m.searchInput.View(),
	))
	content.WriteString("\n\n")

	emptyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(Colours.Overlay1)).
		Padding(1, 0)

	switch {
	case m.loading:
		content.WriteString(emptyStyle.Render("Loading contacts..."))
	case len(m.filteredContacts) == 0 && m.searchQuery != "":
		content.WriteString(emptyStyle.Render("No contacts found matching your search."))
	case len(m.filteredContacts) == 0:
		content.WriteString(emptyStyle.Render("No contacts yet. Press [A] to add your first contact."))
	default:
		rows := make([]string, 0, len(m.filteredContacts))
		for i, contact := range m.filteredContacts {
			rows = append(rows, m.renderContactItem(contact, i == m.selectedContact))
		}
		content.WriteString(strings.Join(rows, "\n"))
	}

	content.WriteString("\n\n")
	content.WriteString(helpStyle.Render("[↑/↓] Move [/] Search [E/Enter] Edit [A] Add [D] Delete [Q] Quit"))

	if m.successMessage != "" {
		content.WriteString("\n")
		content.WriteString(lipgloss.NewStyle().
			Foreground(lipgloss.Color(Colours.Green)).
			Render("✓ " + m.successMessage))
	}

	if m.error != nil {
		content.WriteString("\n")
		content.WriteString(fieldErrorStyle.Render("✗ " + formatErrorMessage(m.error)))
	}

	return content.String()
}

func (m *ContactsModel) renderContactItem(contact models.Contact, isSelected bool) string {
	line := lipgloss.NewStyle().Width(30).Render(utils.TruncateString(contact.Name, 28)) +
		lipgloss.NewStyle().Width(24).Render(contact.Number)
	if isSelected {
		return selectedRowStyle.Render("> " + line)
	}

	if !contact.UpdatedAt.IsZero() {
		line += dimStyle.Render(utils.FormatTimeAgo(contact.UpdatedAt, time.Now()))
	}
	return rowStyle.Render("  " + line)
}

func (m *ContactsModel) renderDeleteConfirmView() string {
	if len(m.filteredContacts) == 0 {
		return "No contact selected"
	}
	contact := m.filteredContacts[m.selectedContact]

	var content strings.Builder
	content.WriteString(lipgloss.NewStyle().
		Foreground(lipgloss.Color(Colours.Red)).
		Bold(true).
		Render("Delete Contact"))
	content.WriteString("\n\n")
	content.WriteString(fmt.Sprintf("Are you sure you want to delete '%s' (%s)?", contact.Name, contact.Number))
	content.WriteString("\n\n")
	content.WriteString(helpStyle.Render("[Y] Yes, Delete [N] Cancel"))

	return modalStyle(Colours.Red).Render(content.String())
}

func (m *ContactsModel) snapshot() []models.Contact {
	if m.contacts == nil {
		return nil
	}
	return m.contacts.Snapshot()
}

func (m *ContactsModel) applyFilter() {
	m.filteredContacts = m.contacts.Filter(m.searchQuery)
	if m.selectedContact >= len(m.filteredContacts) {
		m.selectedContact = 0
	}
}

// applyPendingUpdate shows an accepted edit right away, so dialogs opened
// before the store answers check uniqueness against the new values.
func (m *ContactsModel) applyPendingUpdate(update editor.UpdateCommand) {
	existing := m.contacts.FindByID(update.ID)
	if existing == nil {
		return
	}
	if _, saving := m.pendingUpdates[update.ID]; !saving {
		m.pendingUpdates[update.ID] = *existing
	}
	existing.Name = update.Data.Name
	existing.Number = update.Data.Number
	m.applyFilter()
}

// confirmUpdate settles a saved edit and audits it against the values held
// before the first unsaved change.
func (m *ContactsModel) confirmUpdate(saved *models.Contact) {
	existing := m.contacts.FindByID(saved.ID)
	if existing == nil {
		delete(m.pendingUpdates, saved.ID)
		if err := m.contacts.Add(saved, nil); err != nil {
			m.log.Warn("failed to add updated contact", zap.Error(err))
		}
		return
	}

	before, ok := m.pendingUpdates[saved.ID]
	if !ok {
		before = *existing
	}
	delete(m.pendingUpdates, saved.ID)

	if err := before.Update(saved.Name, saved.Number, m.auditor); err != nil {
		m.log.Warn("failed to audit contact update", zap.Error(err))
	}
	existing.Name = saved.Name
	existing.Number = saved.Number
	existing.UpdatedAt = saved.UpdatedAt
}

func (m *ContactsModel) rollbackUpdate(id string) {
	before, ok := m.pendingUpdates[id]
	if !ok {
		return
	}
	delete(m.pendingUpdates, id)

	if existing := m.contacts.FindByID(id); existing != nil {
		existing.Name = before.Name
		existing.Number = before.Number
		existing.UpdatedAt = before.UpdatedAt
	}
}

func (m *ContactsModel) clearMessages() {
	m.error = nil
	m.successMessage = ""
}

func (m *ContactsModel) loadContacts() tea.Cmd {
	return func() tea.Msg {
		contactList, err := m.repo.LoadContacts(context.Background())
		if err != nil {
			return ErrorMsg{Err: fmt.Errorf("failed to load contacts: %w", err)}
		}
		return ContactsLoadedMsg{Contacts: contactList}
	}
}

// saveContact is the store side of the edit dialog. The session has already
// accepted the command, so a failure only rolls the list back and is reported.
func (m *ContactsModel) saveContact(update editor.UpdateCommand) tea.Cmd {
	return func() tea.Msg {
		contact, err := m.repo.UpdateContact(context.Background(), update.ID, update.Data.Name, update.Data.Number)
		if err != nil {
			return ContactUpdateFailedMsg{
				ContactID: update.ID,
				Err:       fmt.Errorf("failed to update contact: %w", err),
			}
		}
		return ContactUpdatedMsg{Contact: contact}
	}
}

func (m *ContactsModel) createContact(contact *models.Contact) tea.Cmd {
	return func() tea.Msg {
		if err := m.repo.AddContact(context.Background(), contact); err != nil {
			return ErrorMsg{Err: fmt.Errorf("failed to save contact: %w", err)}
		}
		return ContactCreatedMsg{Contact: contact}
	}
}

func (m *ContactsModel) deleteContact(contactID string) tea.Cmd {
	return func() tea.Msg {
		if err := m.repo.DeleteContact(context.Background(), contactID); err != nil {
			return ErrorMsg{Err: fmt.Errorf("failed to delete contact: %w", err)}
		}
		return ContactDeletedMsg{ContactID: contactID}
	}
}

func formatErrorMessage(err error) string {
	switch {
	case errors.Is(err, storage.ErrContactNotFound):
		return "That contact no longer exists. Reload and try again."
	case errors.Is(err, storage.ErrWrongPassphrase):
		return "Could not unlock your phonebook. Check PBTERM_PASSPHRASE."
	}

	msg := err.Error()
	switch {
	case strings.HasPrefix(msg, "failed to load contacts"):
		return "Could not load your contacts. Please try again."
	case strings.HasPrefix(msg, "failed to update contact"):
		return "Could not update the contact. Please try again."
	case strings.HasPrefix(msg, "failed to save contact"):
		return "Could not save the contact. Please try again."
	case strings.HasPrefix(msg, "failed to delete contact"):
		return "Could not delete the contact. Please try again."
	default:
		return msg
	}
}
