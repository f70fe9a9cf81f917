package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/aristath/shiftplan/internal/domain"
	"github.com/aristath/shiftplan/internal/modules/scheduling"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// palette for terminal output. Colors are dropped when the writer is not a terminal.
var (
	colorPrimary = lipgloss.Color("#6B50FF")
	colorMuted   = lipgloss.Color("#858392")
	colorBorder  = lipgloss.Color("#4D4C57")
	colorAccent  = lipgloss.Color("#FF60FF")
	colorWarning = lipgloss.Color("#FFD300")
)

// TextRenderer renders the document for a terminal or a plain text file
type TextRenderer struct{}

// NewTextRenderer creates a text renderer
func NewTextRenderer() *TextRenderer {
	return &TextRenderer{}
}

func (r *TextRenderer) Extension() string   { return "txt" }
func (r *TextRenderer) ContentType() string { return "text/plain; charset=utf-8" }

// Render writes the document to w
func (r *TextRenderer) Render(w io.Writer, doc *Document) error {
	t := newTextStyles(lipgloss.NewRenderer(w))

	var b strings.Builder
	b.WriteString(t.title.Render(doc.Title) + "\n")
	b.WriteString(t.muted.Render(fmt.Sprintf("run %s  generated %s", doc.RunID, doc.GeneratedAt.Format("2006-01-02 15:04 MST"))) + "\n\n")

	b.WriteString(t.heading.Render("Weekly rota") + "\n")
	for _, section := range doc.Developers {
		dev := section.Developer
		b.WriteString(t.name.Render(fmt.Sprintf("%s (%s)", dev.Name, dev.Level)))
		b.WriteString(t.muted.Render(fmt.Sprintf("  %d h/week", section.Hours)) + "\n")
		for _, day := range section.Days {
			fmt.Fprintf(&b, "  %-9s  %s\n", domain.DayName(day.Day), formatShifts(day.Shifts))
		}
	}
	b.WriteString("\n")

	b.WriteString(t.heading.Render("Weekly cost") + "\n")
	b.WriteString(t.summaryTable(doc.Weekly.Developers, doc.Weekly.TotalHours, doc.Weekly.TotalCost) + "\n\n")

	if len(doc.Days) > 0 {
		b.WriteString(t.heading.Render(fmt.Sprintf("Daily coverage %s", doc.Period)) + "\n")
		for _, day := range doc.Days {
			b.WriteString(t.day(day))
		}
		b.WriteString("\n")
	}

	if doc.Monthly != nil {
		b.WriteString(t.heading.Render(fmt.Sprintf("Monthly cost %s", doc.Monthly.Period)) + "\n")
		b.WriteString(t.summaryTable(doc.Monthly.Developers, doc.Monthly.TotalHours, doc.Monthly.TotalCost) + "\n\n")
		b.WriteString(t.name.Render("Grand total") + fmt.Sprintf("  %d h  %s\n", doc.Monthly.TotalHours, formatMoney(doc.Monthly.TotalCost)))
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("failed to write text report: %w", err)
	}
	return nil
}

type textStyles struct {
	re      *lipgloss.Renderer
	title   lipgloss.Style
	heading lipgloss.Style
	name    lipgloss.Style
	muted   lipgloss.Style
	deploy  lipgloss.Style
}

func newTextStyles(re *lipgloss.Renderer) textStyles {
	return textStyles{
		re:      re,
		title:   re.NewStyle().Foreground(colorPrimary).Bold(true),
		heading: re.NewStyle().Foreground(colorAccent).Bold(true).Underline(true),
		name:    re.NewStyle().Bold(true),
		muted:   re.NewStyle().Foreground(colorMuted),
		deploy:  re.NewStyle().Foreground(colorWarning).Bold(true),
	}
}

func (t textStyles) summaryTable(lines []scheduling.DeveloperSummary, hours int, cost float64) string {
	rows := make([][]string, 0, len(lines)+1)
	for _, d := range lines {
		rows = append(rows, summaryRow(d))
	}
	rows = append(rows, totalsRow(hours, cost))
	last := len(rows) - 1

	header := t.re.NewStyle().Bold(true).Padding(0, 1)
	cell := t.re.NewStyle().Padding(0, 1)

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(t.re.NewStyle().Foreground(colorBorder)).
		Headers(summaryColumns...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return header
			case row == last:
				return cell.Bold(true).Align(alignFor(col))
			default:
				return cell.Align(alignFor(col))
			}
		}).
		String()
}

func alignFor(col int) lipgloss.Position {
	if col < 2 {
		return lipgloss.Left
	}
	return lipgloss.Right
}

func (t textStyles) day(day DaySection) string {
	var b strings.Builder
	b.WriteString(t.name.Render(day.Date.Format("Mon 2006-01-02")))
	if day.Weekend {
		b.WriteString(t.muted.Render("  weekend"))
	}
	b.WriteString("\n")

	for _, d := range day.Deploys {
		b.WriteString("  " + t.deploy.Render(fmt.Sprintf("deploy %s", d.At.Format("15:04"))) + t.muted.Render(" "+d.Source) + "\n")
	}
	if !day.Weekend {
		b.WriteString("  commercial   " + staffLine(day.Commercial) + "\n")
	}
	for _, w := range day.Standby {
		b.WriteString(fmt.Sprintf("  %-11s  %s\n", w.Window.Label, staffLine(w.Staff)))
	}
	return b.String()
}

func staffLine(staff []StaffShifts) string {
	if len(staff) == 0 {
		return "-"
	}
	parts := make([]string, len(staff))
	for i, s := range staff {
		parts[i] = fmt.Sprintf("%s %s", s.Name, formatShifts(s.Shifts))
	}
	return strings.Join(parts, "; ")
}
