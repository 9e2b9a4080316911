package ui

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/nconklindev/sweeper/internal/config"
	"github.com/nconklindev/sweeper/internal/converter"
	"github.com/nconklindev/sweeper/internal/types"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

type state int

const (
	stateFilePicker state = iota
	stateOverview
	stateColumnSelection
	stateChart
	stateFormatSelection
	stateProcessing
	stateComplete
	stateError
)

const maxPreviewWidth = 20

type Model struct {
	cfg          *config.Config
	state        state
	prevState    state
	filepicker   filepicker.Model
	selectedFile string
	info         *types.FileInfo
	original     *types.Table
	table        *types.Table
	projected    *types.Table
	preview      table.Model
	selectedCols map[int]bool
	cursor       int
	formats      []types.Format
	formatCursor int
	notice       string
	result       *types.ConversionResult
	err          error
	width        int
	height       int
	progress     progress.Model
	progressChan chan float64
	resultChan   chan conversionResultMsg
}

type conversionResultMsg struct {
	result *types.ConversionResult
	err    error
}

type fileLoadedMsg struct {
	info *types.FileInfo
	err  error
}

type conversionCompleteMsg struct {
	result *types.ConversionResult
	err    error
}

type progressMsg float64

type waitForProgressMsg struct{}

func InitialModel(cfg *config.Config) Model {
	fp := filepicker.New()
	fp.AllowedTypes = converter.SupportedExtensions()
	fp.CurrentDirectory, _ = os.Getwd()

	// Set filepicker colors to match theme
	fp.Styles.Cursor = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF8C42"))
	fp.Styles.Symlink = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB84D"))
	fp.Styles.Directory = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB84D"))
	fp.Styles.File = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF"))
	fp.Styles.Permission = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	fp.Styles.Selected = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF8C42")).Bold(true)
	fp.Styles.FileSize = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	prog := progress.New(progress.WithGradient("#FF8C42", "#FF9F5A"))

	formats := converter.ListSupportedFormats()
	formatCursor := 0
	for i, f := range formats {
		if f == cfg.TargetFormat() {
			formatCursor = i
		}
	}

	return Model{
		cfg:          cfg,
		state:        stateFilePicker,
		filepicker:   fp,
		selectedCols: make(map[int]bool),
		formats:      formats,
		formatCursor: formatCursor,
		progress:     prog,
	}
}

func (m Model) Init() tea.Cmd {
	return m.filepicker.Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// Leave room for title, subtitle, help text and padding
		height := msg.Height - 14
		if height < 5 {
			height = 5
		}

		m.filepicker.SetHeight(height)

		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case fileLoadedMsg:
		if msg.err != nil {
			slog.Warn("file load failed", "file", m.selectedFile, "error", msg.err)
			m.err = msg.err
			m.prevState = stateFilePicker
			m.state = stateError
			return m, nil
		}
		m.loadInfo(msg.info)
		return m, nil

	case conversionCompleteMsg:
		if msg.err != nil {
			slog.Warn("conversion failed", "file", m.selectedFile, "error", msg.err)
			m.err = msg.err
			m.prevState = stateFormatSelection
			m.state = stateError
			return m, nil
		}
		slog.Info("file converted", "input", msg.result.InputFile, "output", msg.result.OutputFile)
		m.result = msg.result
		m.state = stateComplete
		return m, nil

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd

	case progressMsg:
		if m.state == stateProcessing {
			cmd := m.progress.SetPercent(float64(msg))
			return m, tea.Batch(cmd, waitForProgress(m.progressChan, m.resultChan))
		}
		return m, nil

	case waitForProgressMsg:
		return m, waitForProgress(m.progressChan, m.resultChan)
	}

	// Handle filepicker updates
	if m.state == stateFilePicker {
		var cmd tea.Cmd
		m.filepicker, cmd = m.filepicker.Update(msg)

		if didSelect, path := m.filepicker.DidSelectFile(msg); didSelect {
			m.selectedFile = path
			return m, m.loadFile(path)
		}

		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.state {
	case stateFilePicker:
		if key == "q" {
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.filepicker, cmd = m.filepicker.Update(msg)
		if didSelect, path := m.filepicker.DidSelectFile(msg); didSelect {
			m.selectedFile = path
			return m, m.loadFile(path)
		}
		return m, cmd

	case stateOverview:
		switch key {
		case "q":
			return m, tea.Quit
		case "esc":
			m.state = stateFilePicker
			return m, m.filepicker.Init()
		case "d":
			t := m.table.Clone()
			dropped := converter.RemoveDuplicates(t)
			m.setTable(t)
			m.notice = fmt.Sprintf("✓ Duplicates removed (%d row(s) dropped)", dropped)
		case "f":
			t := m.table.Clone()
			filled := converter.FillMissingNumeric(t)
			m.setTable(t)
			m.notice = fmt.Sprintf("✓ Missing values filled (%d cell(s))", filled)
		case "r":
			m.setTable(m.original.Clone())
			m.notice = "✓ Reset to the file as read"
		case "v":
			m.projected = m.table
			m.prevState = stateOverview
			m.state = stateChart
		case "enter", "c":
			m.notice = ""
			m.state = stateColumnSelection
		default:
			var cmd tea.Cmd
			m.preview, cmd = m.preview.Update(msg)
			return m, cmd
		}

	case stateColumnSelection:
		switch key {
		case "q":
			return m, tea.Quit
		case "esc":
			m.notice = ""
			m.state = stateOverview
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.table.Columns)-1 {
				m.cursor++
			}
		case " ":
			m.selectedCols[m.cursor] = !m.selectedCols[m.cursor]
		case "a":
			for i := range m.table.Columns {
				m.selectedCols[i] = true
			}
		case "n":
			for i := range m.table.Columns {
				m.selectedCols[i] = false
			}
		case "v", "enter":
			projected, err := converter.SelectColumns(m.table, m.selectedNames())
			if err != nil {
				m.err = err
				m.prevState = stateColumnSelection
				m.state = stateError
				return m, nil
			}
			if key == "v" {
				m.projected = projected
				m.prevState = stateColumnSelection
				m.state = stateChart
				return m, nil
			}
			if len(projected.Columns) == 0 {
				m.notice = "Select at least one column: a table with no columns cannot be written"
				return m, nil
			}
			m.notice = ""
			m.projected = projected
			m.state = stateFormatSelection
		}

	case stateChart:
		switch key {
		case "q":
			return m, tea.Quit
		default:
			m.state = m.prevState
		}

	case stateFormatSelection:
		switch key {
		case "q":
			return m, tea.Quit
		case "esc":
			m.state = stateColumnSelection
		case "up", "k", "left", "h":
			if m.formatCursor > 0 {
				m.formatCursor--
			}
		case "down", "j", "right", "l":
			if m.formatCursor < len(m.formats)-1 {
				m.formatCursor++
			}
		case "enter":
			m.state = stateProcessing
			return m.convertFile()
		}

	case stateComplete:
		if key == "n" {
			m.reset()
			return m, m.filepicker.Init()
		}
		return m, tea.Quit

	case stateError:
		switch key {
		case "q":
			return m, tea.Quit
		case "esc", "enter":
			m.err = nil
			m.state = m.prevState
			if m.state == stateFilePicker {
				return m, m.filepicker.Init()
			}
		}
	}

	return m, nil
}

// loadInfo installs a freshly read file, applying any cleaning the config
// asks for up front.
func (m *Model) loadInfo(info *types.FileInfo) {
	m.info = info
	m.original = info.Table
	m.cursor = 0
	m.notice = ""
	m.result = nil

	t := info.Table
	if choice := m.cfg.CleaningChoice(); choice.RemoveDuplicates || choice.FillMissingNumeric {
		t = converter.ApplyCleaning(t, choice)
		m.notice = "✓ Default cleaning applied"
	}
	m.setTable(t)

	m.selectedCols = make(map[int]bool, len(t.Columns))
	for i := range t.Columns {
		m.selectedCols[i] = true
	}

	slog.Info("file loaded", "file", info.Name, "format", info.Format, "rows", info.RowCount(), "columns", len(info.Table.Columns))
	m.state = stateOverview
}

func (m *Model) setTable(t *types.Table) {
	m.table = t
	m.preview = newPreview(t, m.cfg.Preview.Rows)
}

func (m *Model) reset() {
	m.state = stateFilePicker
	m.info = nil
	m.original = nil
	m.table = nil
	m.projected = nil
	m.result = nil
	m.err = nil
	m.notice = ""
	m.selectedFile = ""
	m.progress = progress.New(progress.WithGradient("#FF8C42", "#FF9F5A"))
}

func (m Model) selectedNames() []string {
	names := []string{}
	for i, c := range m.table.Columns {
		if m.selectedCols[i] {
			names = append(names, c.Name)
		}
	}
	return names
}

// newPreview builds the head-of-table view shown on the overview screen.
func newPreview(t *types.Table, rows int) table.Model {
	head := t.Head(rows)

	columns := make([]table.Column, len(t.Columns))
	for i, c := range t.Columns {
		width := lipgloss.Width(c.Name)
		for _, row := range head {
			if w := lipgloss.Width(row[i].String()); w > width {
				width = w
			}
		}
		if width > maxPreviewWidth {
			width = maxPreviewWidth
		}
		columns[i] = table.Column{Title: c.Name, Width: width}
	}

	tableRows := make([]table.Row, len(head))
	for r, row := range head {
		cells := make(table.Row, len(row))
		for i, cell := range row {
			cells[i] = cell.String()
		}
		tableRows[r] = cells
	}

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#FF8C42")).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#FF8C42"))

	height := len(tableRows) + 1
	return table.New(
		table.WithColumns(columns),
		table.WithRows(tableRows),
		table.WithHeight(height),
		table.WithStyles(styles),
		table.WithFocused(true),
	)
}

func (m Model) loadFile(path string) tea.Cmd {
	return func() tea.Msg {
		info, err := converter.ReadFile(path)
		return fileLoadedMsg{info: info, err: err}
	}
}

func (m Model) convertFile() (Model, tea.Cmd) {
	m.progressChan = make(chan float64, 100)
	m.resultChan = make(chan conversionResultMsg, 1)

	cmd := tea.Batch(
		func() tea.Msg {
			// Capture everything the goroutine needs
			progressChan := m.progressChan
			resultChan := m.resultChan
			projected := m.projected
			selectedFile := m.selectedFile
			outputDir := m.cfg.Output.Dir
			target := m.formats[m.formatCursor]

			go func() {
				result, err := converter.SaveTable(projected, selectedFile, outputDir, target, progressChan)

				resultChan <- conversionResultMsg{result: result, err: err}

				close(progressChan)
				close(resultChan)
			}()

			return waitForProgressMsg{}
		},
		waitForProgress(m.progressChan, m.resultChan),
		m.progress.Init(),
	)

	return m, cmd
}

func waitForProgress(progressChan chan float64, resultChan chan conversionResultMsg) tea.Cmd {
	return func() tea.Msg {
		if progressChan == nil {
			return nil
		}

		p, ok := <-progressChan
		if !ok {
			// Progress channel closed, check result
			res, ok := <-resultChan
			if ok {
				return conversionCompleteMsg(res)
			}
			return nil
		}

		return progressMsg(p)
	}
}

func (m Model) View() string {
	switch m.state {
	case stateFilePicker:
		return m.viewFilePicker()
	case stateOverview:
		return m.viewOverview()
	case stateColumnSelection:
		return m.viewColumnSelection()
	case stateChart:
		return m.viewChart()
	case stateFormatSelection:
		return m.viewFormatSelection()
	case stateProcessing:
		return m.viewProcessing()
	case stateComplete:
		return m.viewComplete()
	case stateError:
		return m.viewError()
	}
	return ""
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	title := TitleStyle.Render("💿 Sweeper - Convert and Clean Tabular Files")
	s.WriteString(title)
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render("Select a CSV or XLSX file to preview, clean and convert"))
	s.WriteString("\n\n")
	s.WriteString(m.filepicker.View())
	s.WriteString("\n\n")
	s.WriteString(HelpStyle.Render("Press q to quit"))

	return s.String()
}

func (m Model) viewOverview() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("💿 " + m.info.Name))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render(fmt.Sprintf("%s • %s • %d rows × %d columns",
		m.info.Format, humanize.Bytes(uint64(m.info.SizeBytes)), m.table.NumRows(), len(m.table.Columns))))
	s.WriteString("\n\n")

	if len(m.table.Columns) > 0 {
		s.WriteString(m.preview.View())
		s.WriteString("\n")
	}

	if m.notice != "" {
		s.WriteString("\n")
		s.WriteString(SuccessStyle.Render(m.notice))
		s.WriteString("\n")
	}

	s.WriteString(HelpStyle.Render("d: remove duplicates • f: fill missing numbers • r: reset • v: chart • enter: select columns • esc: back • q: quit"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewColumnSelection() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("🔲 Select Columns to Convert"))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render(fmt.Sprintf("File: %s", filepath.Base(m.selectedFile))))
	s.WriteString("\n\n")

	for i, c := range m.table.Columns {
		cursor := " "
		if m.cursor == i {
			cursor = ">"
		}

		checked := " "
		if m.selectedCols[i] {
			checked = "✓"
		}

		line := fmt.Sprintf("%s [%s] %s", cursor, checked, c.Name)

		if m.cursor == i {
			line = SelectedStyle.Render(line)
		} else if m.selectedCols[i] {
			line = CheckedStyle.Render(line)
		} else {
			line = UnselectedStyle.Render(line)
		}

		s.WriteString(line)
		s.WriteString(" ")
		s.WriteString(KindStyle.Render(c.Kind.String()))
		s.WriteString("\n")
	}

	if m.notice != "" {
		s.WriteString("\n")
		s.WriteString(WarnStyle.Render(m.notice))
		s.WriteString("\n")
	}

	s.WriteString(HelpStyle.Render("↑/↓: navigate • space: toggle • a: all • n: none • v: chart • enter: continue • esc: back • q: quit"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewChart() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("📊 Data Visualization"))
	s.WriteString("\n\n")

	width := m.width - 40
	if width < 20 {
		width = 20
	}
	rows := m.height - 12
	if rows < 5 {
		rows = 5
	}
	s.WriteString(renderBarChart(m.projected, m.cfg.Chart.Columns, width, rows))
	s.WriteString("\n")
	s.WriteString(HelpStyle.Render("any key: back • q: quit"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewFormatSelection() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("💾 Convert File"))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render(fmt.Sprintf("Convert %s (%d rows × %d columns) to:",
		filepath.Base(m.selectedFile), m.projected.NumRows(), len(m.projected.Columns))))
	s.WriteString("\n\n")

	for i, f := range m.formats {
		radio := "( )"
		if m.formatCursor == i {
			radio = "(•)"
		}
		line := fmt.Sprintf("%s %s", radio, f)
		if m.formatCursor == i {
			line = SelectedStyle.Render(line)
		}
		s.WriteString(line)
		s.WriteString("\n")
	}

	s.WriteString(HelpStyle.Render("↑/↓: choose • enter: convert • esc: back • q: quit"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewProcessing() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("💾 Processing..."))
	s.WriteString("\n\n")
	s.WriteString(fmt.Sprintf("Writing %s...", m.formats[m.formatCursor]))
	s.WriteString("\n\n")
	s.WriteString(m.progress.View())

	return BoxStyle.Render(s.String())
}

func (m Model) viewComplete() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("✓ Conversion Complete!"))
	s.WriteString("\n\n")

	// Truncate paths if they're too long
	maxPathLen := m.width - 20
	if maxPathLen < 30 {
		maxPathLen = 30
	}

	inputPath := m.result.InputFile
	if len(inputPath) > maxPathLen {
		inputPath = "..." + inputPath[len(inputPath)-maxPathLen+3:]
	}

	outputPath := m.result.OutputFile
	if len(outputPath) > maxPathLen {
		outputPath = "..." + outputPath[len(outputPath)-maxPathLen+3:]
	}

	s.WriteString(fmt.Sprintf("Input:  %s\n", inputPath))
	s.WriteString(SuccessStyle.Render(fmt.Sprintf("Output: %s\n", outputPath)))
	s.WriteString("\n")
	s.WriteString(fmt.Sprintf("Type: %s (%s)\n", m.result.MediaType, humanize.Bytes(uint64(len(m.result.Data)))))
	s.WriteString(fmt.Sprintf("Columns: %s\n", strings.Join(m.result.Columns, ", ")))
	s.WriteString(fmt.Sprintf("Rows written: %d\n", m.result.RowsWritten))
	s.WriteString("\n")
	s.WriteString(HelpStyle.Render("n: convert another file • any other key: exit"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewError() string {
	var s strings.Builder

	s.WriteString(ErrorStyle.Render("✗ Error"))
	s.WriteString("\n\n")
	s.WriteString(m.err.Error())
	s.WriteString("\n\n")
	s.WriteString(HelpStyle.Render("esc: go back • q: quit"))

	return BoxStyle.Render(s.String())
}
