package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Stderr receives status lines. Stdout is kept for command output.
var Stderr io.Writer = os.Stderr

// Theme defines the terminal colors.
type Theme struct {
	Primary lipgloss.Color
	Warn    lipgloss.Color
	Error   lipgloss.Color
	Dim     lipgloss.Color
}

// DefaultTheme is the bright green theme.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#00ff9f"),
	Warn:    lipgloss.Color("#ffb86c"),
	Error:   lipgloss.Color("#ff5555"),
	Dim:     lipgloss.Color("#6e7681"),
}

// Styles holds the styles derived from a theme.
type Styles struct {
	Success lipgloss.Style
	Info    lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Dim     lipgloss.Style
	Label   lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Success: lipgloss.NewStyle().Foreground(t.Primary),
		Info:    lipgloss.NewStyle().Foreground(t.Dim),
		Warning: lipgloss.NewStyle().Foreground(t.Warn),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(t.Error),
		Dim:     lipgloss.NewStyle().Foreground(t.Dim),
		Label:   lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
	}
}

var styles = NewStyles(DefaultTheme)

// PrintSuccess prints a success line.
func PrintSuccess(format string, args ...any) {
	fmt.Fprintln(Stderr, styles.Success.Render("✓ "+fmt.Sprintf(format, args...)))
}

// PrintError prints an error line.
func PrintError(format string, args ...any) {
	fmt.Fprintln(Stderr, styles.Error.Render("Error: "+fmt.Sprintf(format, args...)))
}

// PrintInfo prints an info line.
func PrintInfo(format string, args ...any) {
	fmt.Fprintln(Stderr, styles.Info.Render("ℹ "+fmt.Sprintf(format, args...)))
}

// PrintWarning prints a warning line.
func PrintWarning(format string, args ...any) {
	fmt.Fprintln(Stderr, styles.Warning.Render("⚠ "+fmt.Sprintf(format, args...)))
}

// PrintVerbose prints only when verbose is set.
func PrintVerbose(verbose bool, format string, args ...any) {
	if verbose {
		fmt.Fprintln(Stderr, styles.Dim.Render("[verbose] "+fmt.Sprintf(format, args...)))
	}
}

// PrintField prints an aligned "label: value" line.
func PrintField(label string, value any) {
	fmt.Fprintf(Stderr, "%s %v\n", styles.Label.Render(fmt.Sprintf("%-10s", label+":")), value)
}
