package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/aristath/shiftplan/internal/domain"
	"github.com/aristath/shiftplan/internal/modules/scheduling"
	"github.com/go-pdf/fpdf"
)

const (
	pdfLineHeight = 6.0
	pdfRowHeight  = 7.0
)

// column widths for summaryColumns on A4 portrait with 10mm margins
var pdfSummaryWidths = []float64{40, 18, 16, 22, 20, 26, 26, 22}

// PDFRenderer lays the document out as an A4 PDF
type PDFRenderer struct{}

// NewPDFRenderer creates a PDF renderer
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

func (r *PDFRenderer) Extension() string   { return "pdf" }
func (r *PDFRenderer) ContentType() string { return "application/pdf" }

// Render writes the PDF. Core fonts are used, so text goes through a cp1252 translator.
func (r *PDFRenderer) Render(w io.Writer, doc *Document) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	p := &pdfWriter{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}

	pdf.SetTitle(doc.Title, true)
	pdf.SetCreator("shiftplan", true)
	pdf.SetCreationDate(doc.GeneratedAt)
	pdf.AliasNbPages("")
	pdf.SetHeaderFunc(func() {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.CellFormat(120, 8, p.tr(doc.Title), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 8)
		pdf.CellFormat(0, 8, "run "+doc.RunID, "", 1, "R", false, 0, "")
		pdf.Ln(2)
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 8, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	p.weeklyRota(doc)
	p.summaryTable("Weekly cost", doc.Weekly.Developers, doc.Weekly.TotalHours, doc.Weekly.TotalCost)
	p.rates(doc.Rates)

	if len(doc.Days) > 0 {
		pdf.AddPage()
		p.heading(fmt.Sprintf("Daily coverage %s", doc.Period))
		for _, day := range doc.Days {
			p.day(day)
		}
	}

	if doc.Monthly != nil {
		pdf.AddPage()
		p.summaryTable(fmt.Sprintf("Monthly cost %s", doc.Monthly.Period), doc.Monthly.Developers, doc.Monthly.TotalHours, doc.Monthly.TotalCost)
		p.grandTotals(doc)
	}

	if pdf.Err() {
		return fmt.Errorf("failed to lay out pdf: %w", pdf.Error())
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}

type pdfWriter struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func (p *pdfWriter) heading(text string) {
	p.pdf.SetFont("Helvetica", "B", 12)
	p.pdf.CellFormat(0, 9, p.tr(text), "B", 1, "L", false, 0, "")
	p.pdf.Ln(2)
}

func (p *pdfWriter) line(style string, text string) {
	p.pdf.SetFont("Helvetica", style, 9)
	p.pdf.MultiCell(0, pdfLineHeight, p.tr(text), "", "L", false)
}

func (p *pdfWriter) weeklyRota(doc *Document) {
	p.heading("Weekly rota")
	for _, section := range doc.Developers {
		dev := section.Developer
		p.line("B", fmt.Sprintf("%s (%s) - %d h/week", dev.Name, dev.Level, section.Hours))
		if len(section.Days) == 0 {
			p.line("I", "    no shifts")
		}
		for _, day := range section.Days {
			p.line("", fmt.Sprintf("    %-9s  %s", domain.DayName(day.Day), formatShifts(day.Shifts)))
		}
		p.pdf.Ln(1)
	}
	p.pdf.Ln(3)
}

func (p *pdfWriter) summaryTable(title string, rows []scheduling.DeveloperSummary, hours int, cost float64) {
	p.heading(title)

	p.pdf.SetFont("Helvetica", "B", 8)
	p.pdf.SetFillColor(230, 230, 235)
	for i, col := range summaryColumns {
		p.pdf.CellFormat(pdfSummaryWidths[i], pdfRowHeight, col, "1", 0, "C", true, 0, "")
	}
	p.pdf.Ln(-1)

	p.pdf.SetFont("Helvetica", "", 8)
	for _, d := range rows {
		p.tableRow(summaryRow(d))
	}
	p.pdf.SetFont("Helvetica", "B", 8)
	p.tableRow(totalsRow(hours, cost))
	p.pdf.Ln(4)
}

func (p *pdfWriter) tableRow(cells []string) {
	for i, cell := range cells {
		align := "R"
		if i < 2 {
			align = "L"
		}
		p.pdf.CellFormat(pdfSummaryWidths[i], pdfRowHeight, p.tr(cell), "1", 0, align, false, 0, "")
	}
	p.pdf.Ln(-1)
}

func (p *pdfWriter) rates(r domain.PolicyRates) {
	p.line("I", fmt.Sprintf(
		"On-call multiplier %.2f, minimum mid/senior per active hour %d, weekend headcount %d",
		r.OnCallRateMultiplier, r.MinimumMidOrSeniorDuringActiveHours, r.WeekendRequiredHeadcount))
}

func (p *pdfWriter) day(day DaySection) {
	if _, pageHeight := p.pdf.GetPageSize(); p.pdf.GetY() > pageHeight-60 {
		p.pdf.AddPage()
	}

	label := fmt.Sprintf("%s %s", domain.DayName(day.Weekday), day.Date.Format("2006-01-02"))
	if day.Weekend {
		label += " (weekend)"
	}
	p.pdf.SetFont("Helvetica", "B", 10)
	p.pdf.SetFillColor(240, 240, 244)
	p.pdf.CellFormat(0, pdfRowHeight, p.tr(label), "", 1, "L", true, 0, "")

	for _, d := range day.Deploys {
		p.line("B", fmt.Sprintf("    Deploy at %s (%s)", d.At.Format("15:04"), d.Source))
	}

	if !day.Weekend {
		p.line("U", "Commercial hours 08:00-17:00")
		p.staff(day.Commercial)
	}
	for _, w := range day.Standby {
		p.line("U", "Standby "+w.Window.Label)
		p.staff(w.Staff)
	}
	p.pdf.Ln(2)
}

func (p *pdfWriter) staff(staff []StaffShifts) {
	if len(staff) == 0 {
		p.line("I", "    nobody")
		return
	}
	for _, s := range staff {
		p.line("", fmt.Sprintf("    %s (%s): %s", s.Name, s.Level, formatShifts(s.Shifts)))
	}
}

func (p *pdfWriter) grandTotals(doc *Document) {
	p.heading("Grand totals")
	lines := []string{
		fmt.Sprintf("Weekly hours: %d", doc.Weekly.TotalHours),
		fmt.Sprintf("Weekly cost: %s", formatMoney(doc.Weekly.TotalCost)),
		fmt.Sprintf("Monthly hours: %d", doc.Monthly.TotalHours),
		fmt.Sprintf("Monthly cost: %s", formatMoney(doc.Monthly.TotalCost)),
	}
	if deploys := doc.Deploys(); len(deploys) > 0 {
		lines = append(lines, fmt.Sprintf("Deploys covered: %d", len(deploys)))
	}
	p.line("", strings.Join(lines, "\n"))
}
