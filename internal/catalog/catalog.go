// Package catalog loads the W-section table.
package catalog

import (
	_ "embed"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Column names with special meaning. Every other column is numeric.
const (
	ColumnType    = "Type"
	ColumnSection = "Section"
	ColumnWeight  = "W"
)

// Dimensional columns consumed by the stress solver.
const (
	ColumnDepth       = "d"
	ColumnFlangeWidth = "bf"
	ColumnFlangeThk   = "tf"
	ColumnWebThk      = "tw"
	ColumnKDes        = "kdes"
)

// hiddenColumns are dropped from rendered tables.
var hiddenColumns = map[string]bool{ColumnType: true, ColumnKDes: true}

//go:embed data/w_sections.csv
var embeddedCSV []byte

// Record is one catalog row.
type Record struct {
	Index  int
	Type   string
	Name   string
	Values map[string]float64
}

// Value returns the numeric field value.
func (r Record) Value(field string) (float64, bool) {
	v, ok := r.Values[field]
	return v, ok
}

// Catalog is an immutable, ordered set of records. Row indexes are positions
// in the source and stay stable across loads of the same source.
type Catalog struct {
	columns []string
	records []Record
	fields  map[string]bool
}

// New builds a catalog from numeric column names and records. Record indexes
// are reassigned to their position.
func New(columns []string, records []Record) *Catalog {
	c := &Catalog{
		columns: append([]string(nil), columns...),
		records: make([]Record, len(records)),
		fields:  make(map[string]bool, len(columns)),
	}
	for _, col := range columns {
		c.fields[col] = true
	}
	for i, rec := range records {
		values := make(map[string]float64, len(rec.Values))
		for k, v := range rec.Values {
			values[k] = v
		}
		rec.Values = values
		rec.Index = i
		c.records[i] = rec
	}
	return c
}

// FromRows parses a header row followed by data rows.
func FromRows(rows [][]string) (*Catalog, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}
	var columns []string
	for _, h := range header {
		if h == "" || h == ColumnType || h == ColumnSection {
			continue
		}
		columns = append(columns, h)
	}
	records := make([]Record, 0, len(rows)-1)
	for lineNo, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		rec := Record{Values: make(map[string]float64, len(columns))}
		for i, h := range header {
			if h == "" {
				continue
			}
			cell := ""
			if i < len(row) {
				cell = strings.TrimSpace(row[i])
			}
			switch h {
			case ColumnType:
				rec.Type = cell
			case ColumnSection:
				rec.Name = cell
			default:
				v, err := strconv.ParseFloat(cell, 64)
				if err != nil {
					return nil, fmt.Errorf("row %d column %s: invalid number %q", lineNo+2, h, cell)
				}
				rec.Values[h] = v
			}
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("catalog has no rows")
	}
	return New(columns, records), nil
}

// Len returns the number of records.
func (c *Catalog) Len() int {
	return len(c.records)
}

// Columns returns numeric column names in source order.
func (c *Catalog) Columns() []string {
	return append([]string(nil), c.columns...)
}

// DisplayColumns returns numeric columns shown in tables.
func (c *Catalog) DisplayColumns() []string {
	out := make([]string, 0, len(c.columns))
	for _, col := range c.columns {
		if hiddenColumns[col] {
			continue
		}
		out = append(out, col)
	}
	return out
}

// AllIndexes returns every row index in order.
func (c *Catalog) AllIndexes() []int {
	out := make([]int, len(c.records))
	for i := range c.records {
		out[i] = i
	}
	return out
}

// HasField reports whether field is a numeric column.
func (c *Catalog) HasField(field string) bool {
	return c.fields[field]
}

// Value returns the numeric value of field in row.
func (c *Catalog) Value(row int, field string) (float64, bool) {
	if row < 0 || row >= len(c.records) {
		return 0, false
	}
	return c.records[row].Value(field)
}

// Record returns the record at row.
func (c *Catalog) Record(row int) (Record, bool) {
	if row < 0 || row >= len(c.records) {
		return Record{}, false
	}
	return c.records[row], true
}

// Records returns the records for indexes, in the given order.
func (c *Catalog) Records(indexes []int) ([]Record, error) {
	out := make([]Record, 0, len(indexes))
	for _, idx := range indexes {
		rec, ok := c.Record(idx)
		if !ok {
			return nil, fmt.Errorf("row index %d is outside the catalog (0-%d)", idx, len(c.records)-1)
		}
		out = append(out, rec)
	}
	return out, nil
}

// SortByWeight returns a copy of records ordered by ascending weight. Ties
// keep their input order.
func SortByWeight(records []Record) []Record {
	out := append([]Record(nil), records...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Values[ColumnWeight] < out[j].Values[ColumnWeight]
	})
	return out
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
