package views

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"rhystmorgan/pbterm/internal/audit"
	"rhystmorgan/pbterm/internal/storage"
)

type ErrorMsg struct {
	Err error
}

// StatusInfo describes the open phonebook for the status bar.
type StatusInfo struct {
	Backend string
	DataDir string
	Audit   bool
}

type AppModel struct {
	width  int
	height int

	status       StatusInfo
	contactsView *ContactsModel
}

func NewAppModel(repo storage.Repository, auditor *audit.ContactAuditor, status StatusInfo, logger *zap.Logger) *AppModel {
	return &AppModel{
		status:       status,
		contactsView: NewContactsModel(repo, auditor, logger),
	}
}

func (m *AppModel) Contacts() *ContactsModel {
	return m.contactsView
}

func (m *AppModel) Init() tea.Cmd {
	return m.contactsView.Init()
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// One line is reserved for the status bar.
		msg.Height--
		_, cmd := m.contactsView.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	_, cmd := m.contactsView.Update(msg)
	return m, cmd
}

func (m *AppModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	content := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height - 1).
		Render(m.contactsView.View())

	return lipgloss.JoinVertical(lipgloss.Left, content, m.renderStatusBar())
}

func (m *AppModel) renderStatusBar() string {
	auditState := "off"
	if m.status.Audit {
		auditState = "on"
	}
	text := fmt.Sprintf("store: %s  data: %s  audit: %s", m.status.Backend, m.status.DataDir, auditState)

	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(Colours.Subtext0)).
		Background(lipgloss.Color(Colours.Surface0)).
		Width(m.width).
		Padding(0, 1).
		Render(text)
}
