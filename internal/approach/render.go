package approach

import (
	"fmt"
	"html/template"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/samvad-hq/neowatch/internal/domain"
)

// Placeholder replaces the table body when nothing qualifies.
const Placeholder = "No results for the current criteria."

// Headers are the four display column titles.
var Headers = []string{"Object", "Close approach", "Distance (km)", "Speed (km/s)"}

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	numericStyle = cellStyle.Align(lipgloss.Right)
)

// TextTable builds a terminal table for rows, or a single placeholder row.
func TextTable(rows []domain.DisplayRow) *table.Table {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(Headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col >= 2 && len(rows) > 0:
				return numericStyle
			default:
				return cellStyle
			}
		})

	if len(rows) == 0 {
		return t.Row(Placeholder, "", "", "")
	}
	for _, r := range rows {
		t.Row(r.Designation, r.ApproachTimestamp, r.DistanceKm, r.RelativeSpeedKmS)
	}
	return t
}

// RenderText writes rows as a bordered terminal table.
func RenderText(w io.Writer, rows []domain.DisplayRow) error {
	_, err := fmt.Fprintln(w, TextTable(rows).Render())
	return err
}

var htmlTable = template.Must(template.New("approaches").Parse(`<table id="approaches">
<thead><tr>{{range .Headers}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{- if .Rows}}{{range .Rows}}
<tr>
  <td>{{.Designation}}</td><td>{{.ApproachTimestamp}}</td>
  <td style="text-align:right">{{.DistanceKm}}</td>
  <td style="text-align:right">{{.RelativeSpeedKmS}}</td>
</tr>{{end}}{{else}}
<tr><td colspan="4">{{.Placeholder}}</td></tr>{{end}}
</tbody>
</table>
`))

// RenderHTML writes rows as an HTML table, escaping every field.
func RenderHTML(w io.Writer, rows []domain.DisplayRow) error {
	return htmlTable.Execute(w, struct {
		Headers     []string
		Rows        []domain.DisplayRow
		Placeholder string
	}{Headers: Headers, Rows: rows, Placeholder: Placeholder})
}
