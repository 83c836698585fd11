package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"rhystmorgan/pbterm/internal/validation"
)

type ContactFormField int

const (
	FormFieldName ContactFormField = iota
	FormFieldNumber
	FormFieldSubmit
)

// ContactForm is the two-input form shared by the add and edit dialogs.
type ContactForm struct {
	name         textinput.Model
	number       textinput.Model
	currentField ContactFormField
}

func newContactForm(name, number string) ContactForm {
	nameInput := textinput.New()
	nameInput.Placeholder = "Enter contact name"
	// No CharLimit: SetValue would truncate longer stored values.
	nameInput.CharLimit = 0
	nameInput.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(Colours.Blue))
	nameInput.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(Colours.Text))
	nameInput.SetValue(name)
	nameInput.Focus()

	numberInput := textinput.New()
	numberInput.Placeholder = "+1 555 010 0199"
	numberInput.CharLimit = 0
	numberInput.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(Colours.Blue))
	numberInput.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(Colours.Text))
	numberInput.SetValue(number)

	return ContactForm{
		name:         nameInput,
		number:       numberInput,
		currentField: FormFieldName,
	}
}

func (f *ContactForm) draft() validation.Draft {
	return validation.Draft{Name: f.name.Value(), Number: f.number.Value()}
}

func (f *ContactForm) reset() {
	f.name.Reset()
	f.number.Reset()
	f.currentField = FormFieldName
}

func (f *ContactForm) nextField() tea.Cmd {
	f.currentField = (f.currentField + 1) % (FormFieldSubmit + 1)
	return f.focusCurrentField()
}

func (f *ContactForm) prevField() tea.Cmd {
	if f.currentField == FormFieldName {
		f.currentField = FormFieldSubmit
	} else {
		f.currentField--
	}
	return f.focusCurrentField()
}

func (f *ContactForm) focusCurrentField() tea.Cmd {
	f.name.Blur()
	f.number.Blur()

	switch f.currentField {
	case FormFieldName:
		return f.name.Focus()
	case FormFieldNumber:
		return f.number.Focus()
	}
	return nil
}

// updateInput forwards msg to the focused input.
func (f *ContactForm) updateInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch f.currentField {
	case FormFieldName:
		f.name, cmd = f.name.Update(msg)
	case FormFieldNumber:
		f.number, cmd = f.number.Update(msg)
	}
	return cmd
}

func (f *ContactForm) render(submitLabel string, fieldErrors map[validation.Field]string) string {
	var content strings.Builder

	fieldStyle := lipgloss.NewStyle().Padding(0, 1)

	fields := []struct {
		field ContactFormField
		label string
		input textinput.Model
		key   validation.Field
	}{
		{FormFieldName, "Name", f.name, validation.FieldName},
		{FormFieldNumber, "Number", f.number, validation.FieldNumber},
	}

	for _, fd := range fields {
		label := fd.label
		if f.currentField == fd.field {
			label = "> " + label
		}
		content.WriteString(labelStyle.Render(label))
		content.WriteString("\n")
		content.WriteString(fieldStyle.Render(fd.input.View()))
		if msg := fieldErrors[fd.key]; msg != "" {
			content.WriteString("\n")
			content.WriteString(fieldErrorStyle.Render("  " + msg))
		}
		content.WriteString("\n\n")
	}

	if f.currentField == FormFieldSubmit {
		content.WriteString(activeButtonStyle.Render("> " + submitLabel))
	} else {
		content.WriteString(buttonStyle.Render(submitLabel))
	}

	return content.String()
}
