package views

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"rhystmorgan/pbterm/internal/editor"
	"rhystmorgan/pbterm/internal/models"
)

// ContactUpdateRequestedMsg carries an accepted edit to whoever owns the
// store.
type ContactUpdateRequestedMsg struct {
	Command editor.UpdateCommand
}

// EditContactModel is the edit dialog. It drives an editor.Session and acts
// as the session's notifier and dialog host.
type EditContactModel struct {
	session  *editor.Session
	form     ContactForm
	feedback *FeedbackMessage
	pending  []editor.UpdateCommand
	tick     tea.Cmd
	closed   bool
	log      *zap.Logger
}

func NewEditContactModel(target models.Contact, reader editor.ContactReader, logger *zap.Logger) (*EditContactModel, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &EditContactModel{
		form: newContactForm(target.Name, target.Number),
		log:  logger,
	}

	session, err := editor.Open(target, editor.Deps{
		Reader:   reader,
		Updater:  editor.UpdaterFunc(m.enqueue),
		Notifier: editor.NotifierFunc(m.notify),
		Host:     editor.HostFunc(func() { m.closed = true }),
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}
	m.session = session
	return m, nil
}

func (m *EditContactModel) Init() tea.Cmd {
	return m.form.focusCurrentField()
}

func (m *EditContactModel) Session() *editor.Session {
	return m.session
}

// Closed reports whether the dialog asked its host to close it.
func (m *EditContactModel) Closed() bool {
	return m.closed
}

func (m *EditContactModel) Update(msg tea.Msg) (*EditContactModel, tea.Cmd) {
	if m.closed {
		return m, nil
	}

	switch msg := msg.(type) {
	case FeedbackTimeoutMsg:
		if m.feedback.expired(msg) {
			m.feedback = nil
		}
		return m, nil

	case tea.KeyMsg:
		if m.session.State() == editor.StateConfirmingClose {
			return m.updateConfirm(msg)
		}

		switch msg.String() {
		case "esc":
			m.session.RequestCancel()
			return m, nil
		case "tab", "down":
			return m, m.form.nextField()
		case "shift+tab", "up":
			return m, m.form.prevField()
		case "enter":
			return m.submit()
		}
	}

	cmd := m.form.updateInput(msg)
	m.syncDraft()
	return m, cmd
}

func (m *EditContactModel) updateConfirm(msg tea.KeyMsg) (*EditContactModel, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.session.ResolveCancel(true)
	case "n", "N", "esc":
		m.session.ResolveCancel(false)
	}
	return m, nil
}

func (m *EditContactModel) submit() (*EditContactModel, tea.Cmd) {
	m.syncDraft()

	switch m.session.Submit() {
	case editor.OutcomeSubmitted:
		m.form.reset()
		return m, m.flush()
	case editor.OutcomeNameTaken, editor.OutcomeNumberTaken:
		cmd := m.tick
		m.tick = nil
		return m, cmd
	default:
		return m, nil
	}
}

func (m *EditContactModel) syncDraft() {
	m.session.SetName(m.form.name.Value())
	m.session.SetNumber(m.form.number.Value())
}

func (m *EditContactModel) enqueue(cmd editor.UpdateCommand) {
	m.pending = append(m.pending, cmd)
}

func (m *EditContactModel) notify(message string) {
	m.feedback, m.tick = newFeedback(FeedbackError, message)
}

// flush hands queued update commands to the event loop.
func (m *EditContactModel) flush() tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(m.pending))
	for _, update := range m.pending {
		update := update
		cmds = append(cmds, func() tea.Msg {
			return ContactUpdateRequestedMsg{Command: update}
		})
	}
	m.pending = nil
	return tea.Batch(cmds...)
}

func (m *EditContactModel) View() string {
	var content strings.Builder

	content.WriteString(titleStyle.Render("Edit Contact"))
	content.WriteString("\n\n")
	content.WriteString(m.form.render("Save", m.session.FieldErrors()))

	if m.feedback != nil {
		content.WriteString("\n\n")
		content.WriteString(m.feedback.render())
	}

	content.WriteString("\n\n")
	if m.session.State() == editor.StateConfirmingClose {
		prompt := lipgloss.NewStyle().
			Foreground(lipgloss.Color(Colours.Yellow)).
			Bold(true).
			Render(editor.DiscardPrompt)
		content.WriteString(prompt)
		content.WriteString("\n")
		content.WriteString(helpStyle.Render("[Y] Discard [N] Keep editing"))
	} else {
		content.WriteString(helpStyle.Render("[Tab] Next [Shift+Tab] Previous [Enter] Save [Esc] Cancel"))
	}

	border := Colours.Blue
	if m.session.State() == editor.StateConfirmingClose {
		border = Colours.Yellow
	}
	return modalStyle(border).Render(content.String())
}
