package views

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const feedbackDuration = 3 * time.Second

type FeedbackType string

const (
	FeedbackSuccess FeedbackType = "success"
	FeedbackError   FeedbackType = "error"
	FeedbackWarning FeedbackType = "warning"
	FeedbackInfo    FeedbackType = "info"
)

type FeedbackMessage struct {
	Type     FeedbackType
	Message  string
	ShowTime time.Time
}

// FeedbackTimeoutMsg clears a feedback banner. At carries the ShowTime of the
// banner it was scheduled for so a newer banner is not cleared early.
type FeedbackTimeoutMsg struct {
	At time.Time
}

func newFeedback(feedbackType FeedbackType, message string) (*FeedbackMessage, tea.Cmd) {
	fb := &FeedbackMessage{
		Type:     feedbackType,
		Message:  message,
		ShowTime: time.Now(),
	}
	at := fb.ShowTime
	return fb, tea.Tick(feedbackDuration, func(time.Time) tea.Msg {
		return FeedbackTimeoutMsg{At: at}
	})
}

// expired reports whether msg clears fb.
func (fb *FeedbackMessage) expired(msg FeedbackTimeoutMsg) bool {
	return fb != nil && !fb.ShowTime.After(msg.At)
}

func (fb *FeedbackMessage) render() string {
	if fb == nil {
		return ""
	}

	var color string
	switch fb.Type {
	case FeedbackSuccess:
		color = Colours.Green
	case FeedbackError:
		color = Colours.Red
	case FeedbackWarning:
		color = Colours.Yellow
	case FeedbackInfo:
		color = Colours.Blue
	default:
		color = Colours.Text
	}

	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(color)).
		Background(lipgloss.Color(Colours.Surface0)).
		Padding(0, 1).
		Bold(true).
		Render(fb.Message)
}
