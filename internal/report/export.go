package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/verte-zerg/wsec/internal/analysis"
)

// Export writes t to path in the format implied by its extension. Charts
// need analysis results; results may be nil for the other formats.
func Export(path string, t Table, results []analysis.Result) (err error) {
	ext := strings.ToLower(filepath.Ext(path))
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	switch ext {
	case ".xlsx":
		return WriteXLSX(path, t)
	case ".png", ".svg":
		if len(results) == 0 {
			return fmt.Errorf("%s charts need analysis results; use 'wsec maxvm -o %s'", ext, filepath.Base(path))
		}
		return SaveDCRChart(path, results)
	case ".pdf", ".csv":
	default:
		return fmt.Errorf("unsupported export format %q (use .xlsx, .pdf, .csv, .png or .svg)", ext)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if ext == ".pdf" {
		return WritePDF(f, t)
	}
	return WriteCSV(f, t)
}

// WriteCSV writes the header row and every data row.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Headers); err != nil {
		return err
	}
	for _, row := range t.Strings() {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
