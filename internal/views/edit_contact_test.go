package views

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rhystmorgan/pbterm/internal/editor"
	"rhystmorgan/pbterm/internal/models"
	"rhystmorgan/pbterm/internal/validation"
)

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func key(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

// collect runs cmd and flattens batches. Only use it on commands that do not
// block, such as the ones the dialogs emit on submit.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func phonebook() []models.Contact {
	return []models.Contact{
		{ID: "1", Name: "Alice", Number: "111-1111"},
		{ID: "2", Name: "Bob", Number: "222-2222"},
	}
}

func newEditModal(t *testing.T, target models.Contact) *EditContactModel {
	t.Helper()

	m, err := NewEditContactModel(target, editor.ReaderFunc(phonebook), nil)
	require.NoError(t, err)
	m.Init()
	return m
}

// replace clears the focused input and types value.
func replace(m *EditContactModel, value string) *EditContactModel {
	m, _ = m.Update(key(tea.KeyCtrlU))
	if value != "" {
		m, _ = m.Update(keyRunes(value))
	}
	return m
}

func TestEditContactModelSubmitUnchanged(t *testing.T) {
	m := newEditModal(t, phonebook()[0])

	m, cmd := m.Update(key(tea.KeyEnter))

	assert.True(t, m.Closed())
	assert.Equal(t, editor.StateClosed, m.Session().State())

	msgs := collect(cmd)
	require.Len(t, msgs, 1)
	assert.Equal(t, ContactUpdateRequestedMsg{Command: editor.UpdateCommand{
		ID:   "1",
		Data: editor.UpdateData{Name: "Alice", Number: "111-1111"},
	}}, msgs[0])
}

func TestEditContactModelKeepsLongValues(t *testing.T) {
	long := models.Contact{
		ID:     "3",
		Name:   strings.Repeat("Abcdefghij", 7),
		Number: "+380 (67) 1234 5678 123456789",
	}
	m, err := NewEditContactModel(long, editor.ReaderFunc(func() []models.Contact {
		return append(phonebook(), long)
	}), nil)
	require.NoError(t, err)

	assert.Equal(t, validation.Draft{Name: long.Name, Number: long.Number}, m.Session().Draft())
	assert.False(t, m.Session().Dirty())

	_, cmd := m.Update(key(tea.KeyEnter))
	msgs := collect(cmd)
	require.Len(t, msgs, 1)
	assert.Equal(t, ContactUpdateRequestedMsg{Command: editor.UpdateCommand{
		ID:   "3",
		Data: editor.UpdateData{Name: long.Name, Number: long.Number},
	}}, msgs[0])
}

func TestEditContactModelTypingUpdatesDraft(t *testing.T) {
	m := newEditModal(t, phonebook()[0])

	m = replace(m, "Alicia")
	m, _ = m.Update(key(tea.KeyTab))
	m = replace(m, "333-3333")

	assert.Equal(t, validation.Draft{Name: "Alicia", Number: "333-3333"}, m.Session().Draft())
	assert.True(t, m.Session().Dirty())

	_, cmd := m.Update(key(tea.KeyEnter))
	msgs := collect(cmd)
	require.Len(t, msgs, 1)
	update := msgs[0].(ContactUpdateRequestedMsg)
	assert.Equal(t, "Alicia", update.Command.Data.Name)
	assert.Equal(t, "333-3333", update.Command.Data.Number)
}

func TestEditContactModelInlineErrors(t *testing.T) {
	m := newEditModal(t, phonebook()[0])

	m = replace(m, "")
	m, cmd := m.Update(key(tea.KeyEnter))

	assert.Nil(t, cmd)
	assert.False(t, m.Closed())
	assert.Equal(t, editor.StateEditing, m.Session().State())
	assert.Contains(t, m.View(), validation.NameRequiredMessage)

	m = replace(m, "Al1ce")
	m, _ = m.Update(key(tea.KeyEnter))
	assert.Contains(t, m.View(), validation.NamePatternMessage)
}

func TestEditContactModelCollisionShowsBanner(t *testing.T) {
	m := newEditModal(t, phonebook()[0])

	m = replace(m, "bob")
	m, cmd := m.Update(key(tea.KeyEnter))

	assert.NotNil(t, cmd, "banner timeout should be scheduled")
	assert.False(t, m.Closed())
	assert.Equal(t, validation.NameTakenMessage, m.Session().LastFailure())
	assert.Contains(t, m.View(), validation.NameTakenMessage)

	m, _ = m.Update(FeedbackTimeoutMsg{At: m.feedback.ShowTime})
	assert.Nil(t, m.feedback)
	assert.NotContains(t, m.View(), validation.NameTakenMessage)
}

func TestEditContactModelNumberCollision(t *testing.T) {
	m := newEditModal(t, phonebook()[0])

	m, _ = m.Update(key(tea.KeyTab))
	m = replace(m, "222-2222")
	m, _ = m.Update(key(tea.KeyEnter))

	assert.Equal(t, validation.NumberTakenMessage, m.Session().LastFailure())
	assert.False(t, m.Closed())
}

func TestEditContactModelCancelFlow(t *testing.T) {
	m := newEditModal(t, phonebook()[0])
	m = replace(m, "Alicia")

	m, _ = m.Update(key(tea.KeyEsc))
	assert.Equal(t, editor.StateConfirmingClose, m.Session().State())
	assert.Contains(t, m.View(), editor.DiscardPrompt)

	// Typing is ignored while the prompt is up.
	m, _ = m.Update(keyRunes("x"))
	assert.Equal(t, editor.StateConfirmingClose, m.Session().State())

	m, _ = m.Update(keyRunes("n"))
	assert.Equal(t, editor.StateEditing, m.Session().State())
	assert.Equal(t, "Alicia", m.Session().Draft().Name)
	assert.False(t, m.Closed())

	m, _ = m.Update(key(tea.KeyEsc))
	m, cmd := m.Update(keyRunes("y"))
	assert.Nil(t, cmd)
	assert.True(t, m.Closed())
	assert.Equal(t, editor.StateClosed, m.Session().State())
}

func TestEditContactModelFocusCycles(t *testing.T) {
	m := newEditModal(t, phonebook()[0])

	assert.Equal(t, FormFieldName, m.form.currentField)
	m, _ = m.Update(key(tea.KeyTab))
	assert.Equal(t, FormFieldNumber, m.form.currentField)
	m, _ = m.Update(key(tea.KeyTab))
	assert.Equal(t, FormFieldSubmit, m.form.currentField)
	m, _ = m.Update(key(tea.KeyTab))
	assert.Equal(t, FormFieldName, m.form.currentField)
	m, _ = m.Update(key(tea.KeyShiftTab))
	assert.Equal(t, FormFieldSubmit, m.form.currentField)
}

func TestContactCreateModel(t *testing.T) {
	m := NewContactCreateModel(editor.ReaderFunc(phonebook))
	m.Show()
	require.True(t, m.IsVisible())

	t.Run("collision keeps dialog open", func(t *testing.T) {
		m.Show()
		m, _ = m.Update(keyRunes("ALICE"))
		m, _ = m.Update(key(tea.KeyTab))
		m, _ = m.Update(keyRunes("999-9999"))
		m, _ = m.Update(key(tea.KeyEnter))

		assert.True(t, m.IsVisible())
		assert.Contains(t, m.View(), validation.NameTakenMessage)
	})

	t.Run("invalid number", func(t *testing.T) {
		m.Show()
		m, _ = m.Update(keyRunes("Carol"))
		m, _ = m.Update(key(tea.KeyTab))
		m, _ = m.Update(keyRunes("call me"))
		m, cmd := m.Update(key(tea.KeyEnter))

		assert.Nil(t, cmd)
		assert.Contains(t, m.View(), validation.NumberPatternMessage)
	})

	t.Run("valid contact is emitted", func(t *testing.T) {
		m.Show()
		m, _ = m.Update(keyRunes("Carol"))
		m, _ = m.Update(key(tea.KeyTab))
		m, _ = m.Update(keyRunes("+1 555 0100"))
		m, cmd := m.Update(key(tea.KeyEnter))

		assert.False(t, m.IsVisible())
		msgs := collect(cmd)
		require.Len(t, msgs, 1)
		created := msgs[0].(ContactCreateRequestedMsg)
		assert.Equal(t, "Carol", created.Contact.Name)
		assert.Equal(t, "+1 555 0100", created.Contact.Number)
		assert.NotEmpty(t, created.Contact.ID)
	})

	t.Run("esc hides", func(t *testing.T) {
		m.Show()
		m, _ = m.Update(key(tea.KeyEsc))
		assert.False(t, m.IsVisible())
		assert.Empty(t, m.View())
	})
}
