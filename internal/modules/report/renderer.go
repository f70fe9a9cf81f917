package report

import (
	"io"
	"strconv"

	"github.com/aristath/shiftplan/internal/modules/scheduling"
)

// Renderer writes a document in one output format
type Renderer interface {
	Render(w io.Writer, doc *Document) error
	// Extension is the file extension without the dot
	Extension() string
	ContentType() string
}

// summaryColumns are shared by the weekly and monthly cost tables
var summaryColumns = []string{"Developer", "Level", "Hours", "Commercial h", "Standby h", "Commercial", "Standby", "Total"}

func summaryRow(d scheduling.DeveloperSummary) []string {
	return []string{
		d.Name,
		d.Level.String(),
		strconv.Itoa(d.Hours),
		strconv.Itoa(d.CommercialHours),
		strconv.Itoa(d.StandbyHours),
		formatMoney(d.CommercialCost),
		formatMoney(d.StandbyCost),
		formatMoney(d.Cost),
	}
}

func totalsRow(hours int, cost float64) []string {
	return []string{"Total", "", strconv.Itoa(hours), "", "", "", "", formatMoney(cost)}
}
