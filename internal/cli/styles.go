package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	primaryColor = lipgloss.Color("#A40000") // Voxtrim red
	accentColor  = lipgloss.Color("#FFA500") // Orange
	commandColor = lipgloss.Color("#00AAAA") // Cyan
	mutedColor   = lipgloss.Color("#888888") // Gray
	textColor    = lipgloss.Color("#FFFFFF") // White
)

// Styles
var (
	// Title style - bold red
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	// Error message style
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	// Key-value pair styles
	KeyStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	ValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor)

	// Subcommand list: name, default marker, one-line help
	CommandStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(commandColor)

	DefaultCommandStyle = lipgloss.NewStyle().
				Italic(true).
				Foreground(mutedColor)
)

// commandNameWidth aligns the help text of the command list
const commandNameWidth = 8

// FormatCommand renders one line of the command list. The default command
// is the one run when voxtrim is given only files.
func FormatCommand(name, help string, isDefault bool) string {
	line := CommandStyle.Render(fmt.Sprintf("%-*s", commandNameWidth, name))
	if help != "" {
		line += "  " + help
	}
	if isDefault {
		line += " " + DefaultCommandStyle.Render("(default)")
	}
	return line
}

// PrintVersion prints version information
func PrintVersion(version string) {
	fmt.Println(TitleStyle.Render("Voxtrim ✂"))
	fmt.Printf("%s %s\n", KeyStyle.Render("Version:"), ValueStyle.Render(version))
	fmt.Println()
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", ErrorStyle.Render("Error:"), message)
}
