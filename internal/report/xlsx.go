package report

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/verte-zerg/wsec/internal/model"
)

// Sheet names in exported workbooks.
const (
	SheetSections = "Sections"
	SheetQuery    = "Query"
)

// WriteXLSX saves t as a workbook with a data sheet and a query sheet
// listing the filters and loads.
func WriteXLSX(path string, t Table) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := f.SetSheetName("Sheet1", SheetSections); err != nil {
		return err
	}
	header := make([]any, len(t.Headers))
	for i, h := range t.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetSections, "A1", &header); err != nil {
		return err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}
	if err := f.SetRowStyle(SheetSections, 1, 1, headerStyle); err != nil {
		return err
	}
	for i, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := append([]any(nil), row...)
		if err := f.SetSheetRow(SheetSections, cell, &values); err != nil {
			return err
		}
	}
	if err := f.SetPanes(SheetSections, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	if _, err := f.NewSheet(SheetQuery); err != nil {
		return err
	}
	for i, pair := range queryRows(t) {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := pair
		if err := f.SetSheetRow(SheetQuery, cell, &values); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

func queryRows(t Table) [][]any {
	rows := [][]any{{"Title", t.Title}}
	fields := make([]string, 0, len(t.Filters))
	for k := range t.Filters {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	for _, k := range fields {
		rows = append(rows, []any{fmt.Sprintf("filter %s", k), t.Filters[k]})
	}
	for _, name := range model.LoadComponents {
		if v, ok := t.Loads[name]; ok {
			rows = append(rows, []any{fmt.Sprintf("load %s", name), v})
		}
	}
	return rows
}
