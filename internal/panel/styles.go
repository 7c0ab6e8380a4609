package panel

import "github.com/charmbracelet/lipgloss"

// Styles holds the panel's lipgloss styles.
type Styles struct {
	Header  lipgloss.Style
	Badge   lipgloss.Style
	Footer  lipgloss.Style
	Empty   lipgloss.Style
	Label   map[string]lipgloss.Style
	Time    lipgloss.Style
	Message lipgloss.Style
	Detail  lipgloss.Style
	Section lipgloss.Style
	Warning lipgloss.Style
}

// DefaultStyles returns the standard panel styles.
func DefaultStyles() Styles {
	label := func(c string) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(c)).Bold(true)
	}
	return Styles{
		Header: lipgloss.NewStyle().
			Background(lipgloss.Color("#5f5fd7")).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 2).
			Bold(true),
		Badge: lipgloss.NewStyle().
			Background(lipgloss.Color("#d70000")).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 1),
		Footer: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#808080")).
			Padding(0, 2),
		Empty: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#808080")).
			Italic(true).
			Padding(1, 2),
		Label: map[string]lipgloss.Style{
			"runtime-exception":  label("#d70000"),
			"rejected-operation": label("#d78700"),
			"boundary-exception": label("#af5fd7"),
		},
		Time:    lipgloss.NewStyle().Foreground(lipgloss.Color("#808080")),
		Message: lipgloss.NewStyle().Bold(true),
		Detail:  lipgloss.NewStyle().Foreground(lipgloss.Color("#a8a8a8")),
		Section: lipgloss.NewStyle().Underline(true),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("#d70000")).Bold(true),
	}
}

func (s Styles) labelFor(kind string) lipgloss.Style {
	if st, ok := s.Label[kind]; ok {
		return st
	}
	return lipgloss.NewStyle().Bold(true)
}
