package views

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"rhystmorgan/pbterm/internal/editor"
	"rhystmorgan/pbterm/internal/models"
	"rhystmorgan/pbterm/internal/validation"
)

// ContactCreateRequestedMsg carries a validated new contact to the store
// owner.
type ContactCreateRequestedMsg struct {
	Contact *models.Contact
}

type ContactCreateModel struct {
	reader editor.ContactReader

	form            ContactForm
	fieldErrors     map[validation.Field]string
	visible         bool
	feedbackMessage *FeedbackMessage
}

func NewContactCreateModel(reader editor.ContactReader) *ContactCreateModel {
	return &ContactCreateModel{reader: reader}
}

func (m *ContactCreateModel) Show() tea.Cmd {
	m.form = newContactForm("", "")
	m.fieldErrors = nil
	m.feedbackMessage = nil
	m.visible = true
	return m.form.focusCurrentField()
}

func (m *ContactCreateModel) Hide() {
	m.visible = false
}

func (m *ContactCreateModel) IsVisible() bool {
	return m.visible
}

func (m *ContactCreateModel) Update(msg tea.Msg) (*ContactCreateModel, tea.Cmd) {
	if !m.visible {
		return m, nil
	}

	switch msg := msg.(type) {
	case FeedbackTimeoutMsg:
		if m.feedbackMessage.expired(msg) {
			m.feedbackMessage = nil
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			m.Hide()
			return m, nil
		case "tab", "down":
			return m, m.form.nextField()
		case "shift+tab", "up":
			return m, m.form.prevField()
		case "enter":
			return m.submit()
		}
	}

	return m, m.form.updateInput(msg)
}

// submit runs the same checks as the edit dialog; a new contact has no ID to
// exclude from the uniqueness pass.
func (m *ContactCreateModel) submit() (*ContactCreateModel, tea.Cmd) {
	draft := m.form.draft()

	result := validation.ValidateDraft(draft)
	m.fieldErrors = result.ByField()
	if !result.IsValid() {
		return m, nil
	}

	err := validation.CheckUniqueness(m.reader.Contacts(), "", draft.Name, draft.Number)
	var collision *validation.CollisionError
	if errors.As(err, &collision) {
		var tick tea.Cmd
		m.feedbackMessage, tick = newFeedback(FeedbackError, collision.Message)
		return m, tick
	}

	contact := models.NewContact(draft.Name, draft.Number)
	m.Hide()
	return m, func() tea.Msg {
		return ContactCreateRequestedMsg{Contact: contact}
	}
}

func (m *ContactCreateModel) View() string {
	if !m.visible {
		return ""
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("New Contact"))
	content.WriteString("\n\n")
	content.WriteString(m.form.render("Add", m.fieldErrors))

	if m.feedbackMessage != nil {
		content.WriteString("\n\n")
		content.WriteString(m.feedbackMessage.render())
	}

	content.WriteString("\n\n")
	content.WriteString(helpStyle.Render("[Tab] Next [Shift+Tab] Previous [Enter] Add [Esc] Cancel"))

	return modalStyle(Colours.Green).Render(content.String())
}
