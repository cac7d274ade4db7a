package commands

import "github.com/charmbracelet/lipgloss"

var (
	commentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

func comment(s string) string {
	return commentStyle.Render(s)
}

// ErrorText formats a command error for the terminal.
func ErrorText(err error) string {
	return errorStyle.Render("error: " + err.Error())
}
