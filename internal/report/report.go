// Package report renders fault records as the plain-text export.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dotcommander/faultlog/pkg/faultlog"
)

// TimeLayout is how record times appear in the export.
const TimeLayout = "1/2/2006, 3:04:05 PM"

// Options controls rendering.
type Options struct {
	// Location record times are shown in. Nil means time.Local.
	Location *time.Location
}

func (o Options) location() *time.Location {
	if o.Location == nil {
		return time.Local
	}
	return o.Location
}

// Render returns one block per record, in slice order, separated by a blank
// line. Optional fields are left out when unset.
func Render(records []faultlog.Record, opts Options) string {
	blocks := make([]string, 0, len(records))
	for i, r := range records {
		blocks = append(blocks, renderBlock(i+1, r, opts))
	}
	return strings.Join(blocks, "\n")
}

// Write renders records to w.
func Write(w io.Writer, records []faultlog.Record, opts Options) error {
	_, err := io.WriteString(w, Render(records, opts))
	return err
}

func renderBlock(n int, r faultlog.Record, opts Options) string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== Fault #%d ===\n", n)
	fmt.Fprintf(&b, "Type: %s\n", r.Kind.Label())
	fmt.Fprintf(&b, "Time: %s\n", FormatTime(r, opts))
	fmt.Fprintf(&b, "Message: %s\n", r.Message)
	if r.Source != "" {
		fmt.Fprintf(&b, "Source: %s\n", r.Source)
	}
	if r.Line > 0 {
		fmt.Fprintf(&b, "Line: %d\n", r.Line)
	}
	if r.Column > 0 {
		fmt.Fprintf(&b, "Column: %d\n", r.Column)
	}
	if r.ErrorDetail != "" {
		fmt.Fprintf(&b, "Error: %s\n", r.ErrorDetail)
	}
	if r.StackTrace != "" {
		fmt.Fprintf(&b, "Stack trace:\n%s\n", strings.TrimRight(r.StackTrace, "\n"))
	}
	if r.ComponentTrace != "" {
		fmt.Fprintf(&b, "Component stack:\n%s\n", strings.TrimRight(r.ComponentTrace, "\n"))
	}
	return b.String()
}

// FormatTime renders the record's timestamp in opts.Location. A timestamp
// that does not parse is returned as stored.
func FormatTime(r faultlog.Record, opts Options) string {
	t, err := r.Time()
	if err != nil {
		return r.Timestamp
	}
	return t.In(opts.location()).Format(TimeLayout)
}

// Position renders "source:line:column", dropping unset parts.
func Position(r faultlog.Record) string {
	if r.Source == "" {
		return ""
	}
	parts := []string{r.Source}
	if r.Line > 0 {
		parts = append(parts, strconv.Itoa(r.Line))
		if r.Column > 0 {
			parts = append(parts, strconv.Itoa(r.Column))
		}
	}
	return strings.Join(parts, ":")
}

// FileName is the export file name for the given day.
func FileName(now time.Time) string {
	return "fault_logs_" + now.Format("2006-01-02") + ".txt"
}
