package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"charm.land/lipgloss/v2"
	"golang.org/x/term"
)

var (
	boldStyle = lipgloss.NewStyle().Bold(true)
	dimStyle  = lipgloss.NewStyle().Faint(true)
	ageStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
)

// stdoutIsTerminal is replaced in tests.
var stdoutIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// useColor reports whether styled text should be written to stdout.
func useColor() bool {
	return !IsNoColor() && stdoutIsTerminal()
}

func render(style lipgloss.Style, s string) string {
	if !useColor() {
		return s
	}
	return style.Render(s)
}

func bold(s string) string { return render(boldStyle, s) }

func dim(s string) string { return render(dimStyle, s) }

// ageColor highlights relative-time text.
func ageColor(s string) string { return render(ageStyle, s) }

// outputJSON prints v as indented JSON.
func outputJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
