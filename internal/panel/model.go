package panel

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dotcommander/faultlog/internal/report"
	"github.com/dotcommander/faultlog/pkg/faultlog"
)

// ChangedMsg tells the model the mirrored records changed.
type ChangedMsg struct{}

// ModelOptions configures NewModel.
type ModelOptions struct {
	// Location record times are shown in. Nil means time.Local.
	Location *time.Location
	// ExportDir is where "e" writes the report. Empty means the working
	// directory.
	ExportDir string
	// Now is the clock used for export file names. Nil means time.Now.
	Now    func() time.Time
	Styles *Styles
}

// Model is the bubbletea model of the fault panel.
type Model struct {
	mirror   *Mirror
	viewport viewport.Model
	styles   Styles
	opts     ModelOptions

	confirming bool
	status     string
	width      int
	height     int
}

// NewModel returns a panel model over mirror.
func NewModel(mirror *Mirror, opts ModelOptions) Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	styles := DefaultStyles()
	if opts.Styles != nil {
		styles = *opts.Styles
	}
	m := Model{
		mirror:   mirror,
		viewport: viewport.New(80, 20),
		styles:   styles,
		opts:     opts,
	}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-2, 1) // header + footer
		m.refresh()
		return m, nil

	case ChangedMsg:
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if m.confirming {
			return m.updateConfirm(msg), nil
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "c":
			// Also offered when empty so a corrupt log can be reset.
			m.confirming = true
			m.status = ""
			return m, nil
		case "e":
			m.export()
			return m, nil
		case "r":
			m.mirror.Reload()
			m.status = "Reloaded"
			m.refresh()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) Model {
	m.confirming = false
	switch msg.String() {
	case "y", "Y":
		if m.mirror.Clear(func() bool { return true }) {
			m.status = "Cleared"
		}
	default:
		m.status = "Clear cancelled"
	}
	m.refresh()
	return m
}

func (m *Model) export() {
	if m.mirror.Len() == 0 {
		m.status = "Nothing to export"
		return
	}
	path := filepath.Join(m.opts.ExportDir, report.FileName(m.opts.Now()))
	f, err := os.Create(path) //nolint:gosec // G304: path built from export dir and fixed file name
	if err != nil {
		m.status = "Export failed: " + err.Error()
		return
	}
	werr := m.mirror.Export(f, report.Options{Location: m.opts.Location})
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		m.status = "Export failed: " + werr.Error()
		return
	}
	m.status = fmt.Sprintf("Exported %d records to %s", m.mirror.Len(), path)
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderRecords())
}

func (m Model) renderRecords() string {
	records := m.mirror.Records()
	if len(records) == 0 {
		return m.styles.Empty.Render("No recorded faults")
	}

	ropts := report.Options{Location: m.opts.Location}
	var sb strings.Builder
	for i, r := range records {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(m.styles.labelFor(string(r.Kind)).Render(r.Kind.ShortLabel()))
		sb.WriteString("  ")
		sb.WriteString(m.styles.Time.Render(report.FormatTime(r, ropts)))
		sb.WriteString("\n")
		sb.WriteString(m.styles.Message.Render(r.Message))
		sb.WriteString("\n")
		if pos := report.Position(r); pos != "" {
			sb.WriteString(m.styles.Detail.Render("Source: " + pos))
			sb.WriteString("\n")
		}
		writeSection(&sb, m.styles, "Stack trace", r.StackTrace)
		writeSection(&sb, m.styles, "Component stack", r.ComponentTrace)
	}
	return sb.String()
}

func writeSection(sb *strings.Builder, st Styles, title, body string) {
	if body == "" {
		return
	}
	sb.WriteString(st.Section.Render(title))
	sb.WriteString("\n")
	sb.WriteString(st.Detail.Render(strings.TrimRight(body, "\n")))
	sb.WriteString("\n")
}

func (m Model) View() string {
	header := m.styles.Header.Render("Fault log")
	if n := m.mirror.Len(); n > 0 {
		header += " " + m.styles.Badge.Render(fmt.Sprint(n))
	}
	return header + "\n" + m.viewport.View() + "\n" + m.footer()
}

func (m Model) footer() string {
	if m.confirming {
		return m.styles.Warning.Render(fmt.Sprintf("Clear all %d fault records? (y/n)", m.mirror.Len()))
	}
	help := "c clear · e export · r reload · q quit"
	if m.status != "" {
		help = m.status + " · " + help
	}
	return m.styles.Footer.Render(help)
}

// Confirming reports whether the model is waiting for a y/n answer.
func (m Model) Confirming() bool { return m.confirming }

// Status returns the last status line.
func (m Model) Status() string { return m.status }

// Records returns what the model currently shows.
func (m Model) Records() []faultlog.Record { return m.mirror.Records() }
