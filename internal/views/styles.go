package views

import "github.com/charmbracelet/lipgloss"

// Catppuccin Mocha, the subset the phonebook uses.
var Colours = struct {
	Red      string
	Yellow   string
	Green    string
	Blue     string
	Text     string
	Subtext0 string
	Overlay1 string
	Surface1 string
	Surface0 string
	Base     string
}{
	Red:      "#f38ba8",
	Yellow:   "#f9e2af",
	Green:    "#a6e3a1",
	Blue:     "#89b4fa",
	Text:     "#cdd6f4",
	Subtext0: "#a6adc8",
	Overlay1: "#7f849c",
	Surface1: "#45475a",
	Surface0: "#313244",
	Base:     "#1e1e2e",
}

func headerStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(Colours.Text)).
		Background(lipgloss.Color(Colours.Surface0)).
		Padding(0, 1).
		Width(width)
}

func modalStyle(border string) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(border)).
		Padding(1, 2)
}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(Colours.Green)).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(Colours.Text)).
			Bold(true)

	fieldErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(Colours.Red))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(Colours.Overlay1)).
			Italic(true)

	buttonStyle = lipgloss.NewStyle().
			Background(lipgloss.Color(Colours.Surface1)).
			Foreground(lipgloss.Color(Colours.Text)).
			Padding(0, 1)

	activeButtonStyle = lipgloss.NewStyle().
				Background(lipgloss.Color(Colours.Blue)).
				Foreground(lipgloss.Color(Colours.Base)).
				Padding(0, 1)

	selectedRowStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(Colours.Base)).
				Background(lipgloss.Color(Colours.Blue))

	rowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(Colours.Text))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(Colours.Subtext0))
)
