package catalog

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Default returns the embedded AISC W-section catalog.
func Default() (*Catalog, error) {
	return ReadCSV(bytes.NewReader(embeddedCSV))
}

// Load reads a catalog from path. An empty path selects the embedded table.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return LoadXLSX(path)
	case ".csv", "":
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer func() {
			if cerr := file.Close(); cerr != nil {
				// Best-effort close for read-only catalog.
				_ = cerr
			}
		}()
		return ReadCSV(file)
	default:
		return nil, fmt.Errorf("unsupported catalog format %q (use .csv or .xlsx)", filepath.Ext(path))
	}
}

// ReadCSV parses a catalog from CSV with a header row.
func ReadCSV(r io.Reader) (*Catalog, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog CSV: %w", err)
	}
	return FromRows(rows)
}

// LoadXLSX parses the first sheet of a workbook.
func LoadXLSX(path string) (*Catalog, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close for read-only workbook.
			_ = cerr
		}
	}()
	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	return FromRows(rows)
}
