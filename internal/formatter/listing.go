package formatter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/desertthunder/musicat/internal/shared"
)

// Format selects how a listing is written.
type Format string

const (
	FormatTable    Format = "table"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
	FormatText     Format = "txt"
)

// Formats lists the accepted listing formats.
var Formats = []Format{FormatTable, FormatCSV, FormatMarkdown, FormatText}

// ParseFormat resolves a format name; empty means [FormatTable].
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "table":
		return FormatTable, nil
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	}
	return "", fmt.Errorf("%w: unknown format %q (want table, csv, md or txt)", shared.ErrInvalidArgument, s)
}

// Listing is a titled grid of cells.
type Listing struct {
	Title   string
	Headers []string
	Rows    [][]string
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8B5CF6"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// Render writes l to w in format f.
func Render(w io.Writer, f Format, l Listing) error {
	switch f {
	case FormatCSV:
		return renderCSV(w, l)
	case FormatMarkdown:
		return renderMarkdown(w, l)
	case FormatText:
		return renderText(w, l)
	default:
		return renderTable(w, l)
	}
}

func renderTable(w io.Writer, l Listing) error {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))).
		Headers(l.Headers...).
		Rows(l.Rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	if l.Title != "" {
		if _, err := fmt.Fprintln(w, titleStyle.Render(l.Title)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func renderCSV(w io.Writer, l Listing) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(l.Headers); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}
	if err := cw.WriteAll(l.Rows); err != nil {
		return fmt.Errorf("failed to write CSV records: %w", err)
	}
	return nil
}

func renderMarkdown(w io.Writer, l Listing) error {
	var b strings.Builder
	if l.Title != "" {
		fmt.Fprintf(&b, "## %s\n\n", l.Title)
	}
	b.WriteString(markdownRow(l.Headers))
	sep := make([]string, len(l.Headers))
	for i := range sep {
		sep[i] = "---"
	}
	b.WriteString(markdownRow(sep))
	for _, row := range l.Rows {
		b.WriteString(markdownRow(row))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func markdownRow(cells []string) string {
	escaped := make([]string, len(cells))
	for i, c := range cells {
		escaped[i] = strings.ReplaceAll(c, "|", `\|`)
	}
	return "| " + strings.Join(escaped, " | ") + " |\n"
}

func renderText(w io.Writer, l Listing) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(l.Headers, "\t"))
	for _, row := range l.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}
