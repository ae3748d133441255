package report

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/verte-zerg/wsec/internal/analysis"
)

const (
	terminalWidthBackup = 80
	minBarWidth         = 10
	barFull             = "█"
	barEmpty            = "░"
	colorReset          = "\x1b[0m"
	colorOK             = "\x1b[32m"
	colorWarn           = "\x1b[33m"
	colorFail           = "\x1b[31m"
	// warnDCR starts the warning band below failure.
	warnDCR = 0.9
)

// TerminalWidth returns the stdout width, or 80 when it is not a terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// ShouldUseColor reports whether w is a colour terminal. NO_COLOR wins over
// force.
func ShouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

// RenderDCRBars draws one horizontal bar per result scaled so that DCR=1
// reaches the failure mark. Bars longer than the mark are clipped with '>'.
func RenderDCRBars(w io.Writer, results []analysis.Result, width int, useColor bool) error {
	if len(results) == 0 {
		return nil
	}
	if width <= 0 {
		width = TerminalWidth()
	}
	nameWidth := 0
	for _, r := range results {
		if n := displayWidth(r.Record.Name); n > nameWidth {
			nameWidth = n
		}
	}
	// name, space, bar, '|', '>', space, "0.000"
	barWidth := width - nameWidth - 9
	if barWidth < minBarWidth {
		barWidth = minBarWidth
	}

	if _, err := fmt.Fprintln(w, "DCR (| marks 1.0)"); err != nil {
		return err
	}
	for _, r := range results {
		filled := int(math.Round(math.Min(r.DCR, 1) * float64(barWidth)))
		if filled < 0 {
			filled = 0
		}
		bar := strings.Repeat(barFull, filled) + strings.Repeat(barEmpty, barWidth-filled) + "|"
		if r.DCR > 1 {
			bar += ">"
		} else {
			bar += " "
		}
		if useColor {
			bar = dcrColor(r.DCR) + bar + colorReset
		}
		line := fmt.Sprintf("%s %s %.3f", padCell(r.Record.Name, nameWidth, false), bar, r.DCR)
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func dcrColor(dcr float64) string {
	switch {
	case dcr >= 1:
		return colorFail
	case dcr >= warnDCR:
		return colorWarn
	default:
		return colorOK
	}
}
