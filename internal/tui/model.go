// Package tui provides the Bubble Tea section browser.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/wsec/internal/analysis"
	"github.com/verte-zerg/wsec/internal/model"
	"github.com/verte-zerg/wsec/internal/query"
	"github.com/verte-zerg/wsec/internal/report"
	"github.com/verte-zerg/wsec/internal/selection"
	"github.com/verte-zerg/wsec/internal/solver"
	"github.com/verte-zerg/wsec/internal/store"
)

type inputMode int

const (
	modeBrowse inputMode = iota
	modeAll
	modeFilter
	modeLoads
	modeSlice
)

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
)

// Options configure the browser.
type Options struct {
	// Columns are the catalog fields shown in the table.
	Columns []string
	Fy      float64
	Solver  solver.Solver
}

// Model implements the Bubble Tea browser over a selection service.
type Model struct {
	svc  selection.Service
	opts Options

	view     selection.View
	analysis *selection.AnalysisView

	table table.Model
	input textinput.Model
	mode  inputMode

	notice string
	errMsg string

	width  int
	height int
}

// NewModel constructs the browser and loads the stored selection, starting a
// fresh one when nothing was saved yet.
func NewModel(svc selection.Service, opts Options) *Model {
	if opts.Fy <= 0 {
		opts.Fy = analysis.DefaultFy
	}
	if opts.Solver == nil {
		opts.Solver = solver.CellSolver{}
	}
	m := &Model{svc: svc, opts: opts}
	m.svc.Notify = func(msg string) { m.notice = msg }
	m.input = newInput()
	m.table = table.New(table.WithFocused(true), table.WithHeight(1))
	m.table.SetStyles(tableStyles())
	m.load()
	return m
}

func newInput() textinput.Model {
	input := textinput.New()
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.mode != modeBrowse {
			return m.updateInput(msg)
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "/":
			return m.startInput(modeFilter, "Filter: ", "d <=310 Ix >500e6")
		case "A":
			return m.startInput(modeAll, "New selection: ", "W <100 (empty for all)")
		case "l":
			return m.startInput(modeLoads, "Loads: ", "Mx 3e8 Vy 2e5")
		case "m":
			return m.startInput(modeSlice, "Rows: ", "start:stop:step (empty for all)")
		case "r":
			m.clearMessages()
			if err := m.svc.Reset(context.Background()); err != nil {
				m.errMsg = err.Error()
				return m, nil
			}
			m.load()
			return m, nil
		case "esc":
			if m.analysis != nil {
				m.analysis = nil
				m.refreshTable()
			}
			return m, nil
		default:
			var cmd tea.Cmd
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) load() {
	ctx := context.Background()
	v, err := m.svc.Status(ctx)
	if errors.Is(err, store.ErrStorageUnavailable) {
		v, err = m.svc.All(ctx, nil)
	}
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.view = v
	m.analysis = nil
	m.refreshTable()
}

func (m *Model) startInput(mode inputMode, prompt, placeholder string) (tea.Model, tea.Cmd) {
	m.mode = mode
	m.clearMessages()
	m.input.Prompt = prompt
	m.input.Placeholder = placeholder
	m.input.SetValue("")
	m.input.Width = maxInt(10, m.width-lipgloss.Width(prompt)-2)
	return m, m.input.Focus()
}

func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeBrowse
		m.errMsg = ""
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		if err := m.submit(m.input.Value()); err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		m.mode = modeBrowse
		m.errMsg = ""
		m.input.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) submit(value string) error {
	ctx := context.Background()
	m.notice = ""
	args := strings.Fields(value)
	switch m.mode {
	case modeAll, modeFilter:
		filters, err := query.ParseFilterArgs(args)
		if err != nil {
			return err
		}
		var v selection.View
		if m.mode == modeAll {
			v, err = m.svc.All(ctx, filters)
		} else {
			v, err = m.svc.Filter(ctx, filters)
		}
		if err != nil {
			return err
		}
		m.view = v
		m.analysis = nil
	case modeLoads:
		loads, err := query.ParseLoadArgs(args)
		if err != nil {
			return err
		}
		v, err := m.svc.Apply(ctx, loads)
		if err != nil {
			return err
		}
		m.view = v
		m.analysis = nil
	case modeSlice:
		slice, err := query.ParseSlice(value)
		if err != nil {
			return err
		}
		av, err := m.svc.Analyze(ctx, slice, m.opts.Fy, m.opts.Solver)
		if err != nil {
			return err
		}
		m.analysis = &av
	}
	m.refreshTable()
	return nil
}

func (m *Model) clearMessages() {
	m.notice = ""
	m.errMsg = ""
}

func (m *Model) currentTable() report.Table {
	if m.analysis != nil {
		return report.AnalysisTable(*m.analysis, m.opts.Columns)
	}
	return report.SelectionTable(m.view, m.opts.Columns)
}

func (m *Model) refreshTable() {
	t := m.currentTable()
	cells := t.Strings()
	columns := make([]table.Column, len(t.Headers))
	for i, h := range t.Headers {
		w := lipgloss.Width(h)
		for _, row := range cells {
			if i < len(row) && lipgloss.Width(row[i]) > w {
				w = lipgloss.Width(row[i])
			}
		}
		columns[i] = table.Column{Title: h, Width: w}
	}
	rows := make([]table.Row, len(cells))
	for i, row := range cells {
		rows[i] = table.Row(row)
	}
	m.table.SetRows(nil)
	m.table.SetColumns(columns)
	m.table.SetRows(rows)
	m.table.GotoTop()
	m.updateLayout()
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.table.SetWidth(m.width)
	m.table.SetHeight(maxInt(1, bodyHeight))
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	headerHeight = len(m.headerLines())
	footerHeight = 1
	if m.mode != modeBrowse {
		footerHeight++
	}
	if m.errMsg != "" || m.notice != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) headerLines() []string {
	t := m.currentTable()
	lines := []string{titleStyle.Render(truncateLine(t.Title, m.width))}
	for _, line := range wrapWords("Filters: "+model.FormatFilters(t.Filters), m.width) {
		lines = append(lines, headerStyle.Render(line))
	}
	for _, line := range wrapWords("Loads: "+model.FormatLoads(t.Loads), m.width) {
		lines = append(lines, headerStyle.Render(line))
	}
	if m.analysis != nil {
		lines = append(lines, m.renderGoverning())
	}
	return lines
}

func (m *Model) renderHeader() string {
	return strings.Join(m.headerLines(), "\n")
}

func (m *Model) renderGoverning() string {
	best, ok := analysis.MaxDCR(m.analysis.Results)
	if !ok {
		return headerStyle.Render("No rows analysed.")
	}
	line := fmt.Sprintf("fy %g MPa  max DCR %.3f (%s)", m.analysis.Fy, best.DCR, best.Record.Name)
	if best.DCR >= 1 {
		return failStyle.Render(line)
	}
	return headerStyle.Render(line)
}

func (m *Model) renderBody() string {
	if len(m.table.Rows()) == 0 {
		return headerStyle.Render("No sections selected.")
	}
	return m.table.View()
}

func (m *Model) renderHelp() string {
	if m.mode != modeBrowse {
		return "enter: apply  esc: cancel"
	}
	help := "Filter: /  New: A  Loads: l  Analyse: m  Reset: r  Quit: q"
	if m.analysis != nil {
		help = "Back: esc  Filter: /  Loads: l  Analyse: m  Quit: q"
	}
	return help
}

func (m *Model) renderFooter() string {
	var lines []string
	if m.mode != modeBrowse {
		lines = append(lines, m.input.View())
	}
	switch {
	case m.errMsg != "":
		lines = append(lines, errorStyle.Render(truncateLine(m.errMsg, m.width)))
	case m.notice != "":
		lines = append(lines, noticeStyle.Render(truncateLine(m.notice, m.width)))
	}
	lines = append(lines, footerStyle.Render(fmt.Sprintf("%s  %d section(s)", m.renderHelp(), len(m.view.Rows))))
	return strings.Join(lines, "\n")
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#F0F0F0")).
		Background(lipgloss.Color("#3A3A3A")).
		Bold(false)
	return styles
}
