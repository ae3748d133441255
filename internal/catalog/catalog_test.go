package catalog

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestDefaultCatalogFirstRow(t *testing.T) {
	cat, err := Default()
	if err != nil {
		t.Fatalf("load default catalog: %v", err)
	}
	if cat.Len() == 0 {
		t.Fatalf("expected rows in default catalog")
	}
	rec, ok := cat.Record(0)
	if !ok {
		t.Fatalf("expected first row")
	}
	if rec.Name != "W1100X499" {
		t.Fatalf("unexpected first section: %q", rec.Name)
	}
	for _, field := range []string{ColumnDepth, ColumnFlangeWidth, ColumnFlangeThk, ColumnWebThk, ColumnKDes, ColumnWeight, "Ix", "Sy"} {
		if !cat.HasField(field) {
			t.Fatalf("expected field %s in default catalog", field)
		}
	}
}

func TestReadCSVAssignsStableIndexes(t *testing.T) {
	data := "Type,Section,W,Ix\nW,A,20,200\nW,B,10,250\n\nW,C,30,400\n"
	cat, err := ReadCSV(strings.NewReader(data))
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if cat.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", cat.Len())
	}
	rec, _ := cat.Record(2)
	if rec.Index != 2 || rec.Name != "C" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if v, ok := cat.Value(1, "Ix"); !ok || v != 250 {
		t.Fatalf("unexpected value: %v %v", v, ok)
	}
	if _, ok := cat.Value(5, "Ix"); ok {
		t.Fatalf("expected out-of-range row to miss")
	}
}

func TestReadCSVRejectsBadNumber(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("Type,Section,W\nW,A,heavy\n"))
	if err == nil {
		t.Fatalf("expected error for non-numeric cell")
	}
}

func TestSortByWeight(t *testing.T) {
	cat := New([]string{"Ix", "W"}, []Record{
		{Name: "A", Values: map[string]float64{"Ix": 200, "W": 300}},
		{Name: "B", Values: map[string]float64{"Ix": 250, "W": 250}},
		{Name: "C", Values: map[string]float64{"Ix": 400, "W": 600}},
		{Name: "D", Values: map[string]float64{"Ix": 500, "W": 700}},
	})
	recs, err := cat.Records(cat.AllIndexes())
	if err != nil {
		t.Fatalf("records: %v", err)
	}
	sorted := SortByWeight(recs)
	if sorted[0].Name != "B" || sorted[1].Name != "A" {
		t.Fatalf("unexpected order: %s %s", sorted[0].Name, sorted[1].Name)
	}
	if recs[0].Name != "A" {
		t.Fatalf("sort must not reorder input")
	}
}

func TestRecordsRejectsOutOfRange(t *testing.T) {
	cat := New([]string{"W"}, []Record{{Name: "A", Values: map[string]float64{"W": 1}}})
	if _, err := cat.Records([]int{0, 3}); err == nil {
		t.Fatalf("expected error for index outside catalog")
	}
}

func TestDisplayColumnsHidesKDes(t *testing.T) {
	cat, err := Default()
	if err != nil {
		t.Fatalf("load default catalog: %v", err)
	}
	for _, col := range cat.DisplayColumns() {
		if col == ColumnKDes {
			t.Fatalf("kdes should be hidden")
		}
	}
}

func TestLoadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sections.xlsx")
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"Type", "Section", "W", "d"},
		{"W", "W310X97", 97.1, 308},
		{"W", "W200X22", 22.3, 206},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}

	cat, err := Load(path)
	if err != nil {
		t.Fatalf("load workbook: %v", err)
	}
	if cat.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", cat.Len())
	}
	rec, _ := cat.Record(1)
	if rec.Name != "W200X22" || rec.Values["d"] != 206 {
		t.Fatalf("unexpected record: %+v", rec)
	}
}
