package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/wsec/internal/analysis"
	"github.com/verte-zerg/wsec/internal/model"
	"github.com/verte-zerg/wsec/internal/selection"
)

// Titles used by the CLI and exports.
const (
	SelectionTitle = "AISC W-Sections: Current selection"
	AnalysisTitle  = "AISC W-Sections: Current selection with analysis"
)

// Result column headers.
const (
	HeaderPosition = "#"
	HeaderSection  = "Section"
	HeaderFy       = "fy"
	HeaderMaxVM    = "MaxVM"
	HeaderDCR      = "DCR"
)

// leadingCols are never dropped when the table is narrowed.
const leadingCols = 2

// Table is a renderer-agnostic grid. Cells hold either a string or a
// float64 so file exports keep numbers numeric.
type Table struct {
	Title   string
	Filters map[string]string
	Loads   map[string]float64
	Headers []string
	Rows    [][]any
}

// SelectionTable lays out a selection view. Each row starts with its display
// position, which is what sub-slices refer to.
func SelectionTable(v selection.View, columns []string) Table {
	t := Table{
		Title:   SelectionTitle,
		Filters: v.Filters,
		Loads:   v.Loads,
		Headers: append([]string{HeaderPosition, HeaderSection}, columns...),
	}
	for i, rec := range v.Rows {
		row := make([]any, 0, len(t.Headers))
		row = append(row, strconv.Itoa(i), rec.Name)
		for _, col := range columns {
			row = append(row, rec.Values[col])
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// AnalysisTable lays out stress results with the applied loads echoed.
func AnalysisTable(av selection.AnalysisView, columns []string) Table {
	loadCols := presentLoads(av.Loads)
	headers := append([]string{HeaderPosition, HeaderSection}, columns...)
	headers = append(headers, HeaderFy)
	headers = append(headers, loadCols...)
	headers = append(headers, HeaderMaxVM, HeaderDCR)

	t := Table{
		Title:   AnalysisTitle,
		Filters: av.Filters,
		Loads:   av.Loads,
		Headers: headers,
	}
	for i, res := range av.Results {
		pos := i
		if i < len(av.Positions) {
			pos = av.Positions[i]
		}
		t.Rows = append(t.Rows, analysisRow(pos, res, columns, loadCols))
	}
	return t
}

func analysisRow(pos int, res analysis.Result, columns, loadCols []string) []any {
	row := make([]any, 0, len(columns)+len(loadCols)+5)
	row = append(row, strconv.Itoa(pos), res.Record.Name)
	for _, col := range columns {
		row = append(row, res.Record.Values[col])
	}
	row = append(row, res.Fy)
	for _, name := range loadCols {
		row = append(row, res.Loads[name])
	}
	return append(row, res.MaxVonMises, res.DCR)
}

func presentLoads(loads map[string]float64) []string {
	var out []string
	for _, name := range model.LoadComponents {
		if _, ok := loads[name]; ok {
			out = append(out, name)
		}
	}
	return out
}

// Strings formats every cell for text output.
func (t Table) Strings() [][]string {
	out := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = FormatCell(cell)
		}
		out[i] = cells
	}
	return out
}

// FormatCell renders one table cell.
func FormatCell(cell any) string {
	switch v := cell.(type) {
	case string:
		return v
	case float64:
		return FormatNumber(v)
	case int:
		return strconv.Itoa(v)
	default:
		return fmt.Sprint(v)
	}
}

// FormatNumber prints whole numbers plainly, large magnitudes in scientific
// notation and everything else with up to four decimals.
func FormatNumber(v float64) string {
	abs := math.Abs(v)
	switch {
	case v == 0:
		return "0"
	case abs >= 1e7 || abs < 1e-3:
		return strconv.FormatFloat(v, 'e', 3, 64)
	case v == math.Trunc(v):
		return strconv.FormatFloat(v, 'f', 0, 64)
	default:
		s := strconv.FormatFloat(v, 'f', 4, 64)
		s = strings.TrimRight(s, "0")
		return strings.TrimSuffix(s, ".")
	}
}

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
	titleStyle = lipgloss.NewStyle().Bold(true)
)

// Header renders the title panel with the active filters and loads.
func Header(t Table) string {
	body := strings.Join([]string{
		titleStyle.Render(t.Title),
		"Filters: " + model.FormatFilters(t.Filters),
		"Loads:   " + model.FormatLoads(t.Loads),
	}, "\n")
	return panelStyle.Render(body)
}

// Render writes the panel and table to w. Trailing columns that do not fit
// in width are dropped with a note; width <= 0 uses the terminal width.
func Render(w io.Writer, t Table, width int) error {
	if width <= 0 {
		width = TerminalWidth()
	}
	if _, err := fmt.Fprintln(w, Header(t)); err != nil {
		return err
	}
	if len(t.Rows) == 0 {
		_, err := fmt.Fprintln(w, "No sections selected.")
		return err
	}

	rows := t.Strings()
	widths := columnWidths(t.Headers, rows, len(t.Headers))
	keep := fitColumns(widths, width, leadingCols)
	hidden := len(t.Headers) - keep

	headers := t.Headers[:keep]
	for i := range rows {
		if len(rows[i]) > keep {
			rows[i] = rows[i][:keep]
		}
	}
	right := make(map[int]bool, keep)
	for i := range headers {
		right[i] = i != 1
	}
	for _, line := range formatTable(headers, rows, right) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if hidden > 0 {
		if _, err := fmt.Fprintf(w, "%d more column(s) hidden: %s\n", hidden, strings.Join(t.Headers[keep:], ", ")); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%d section(s)\n", len(t.Rows))
	return err
}
