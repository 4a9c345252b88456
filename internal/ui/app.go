package ui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/lucasdeeiroz/runlens/internal/capture"
	"github.com/lucasdeeiroz/runlens/internal/config"
	"github.com/lucasdeeiroz/runlens/internal/export"
	"github.com/lucasdeeiroz/runlens/internal/render"
	"github.com/lucasdeeiroz/runlens/internal/session"
	"github.com/lucasdeeiroz/runlens/internal/source"
	"github.com/lucasdeeiroz/runlens/internal/view"
)

// Mode represents the current UI mode
type Mode int

const (
	ModeTree Mode = iota
	ModeRaw
	ModeFilter
)

// tickMsg drives follow mode
type tickMsg time.Time

// runnerDoneMsg arrives when a captured runner process has exited
type runnerDoneMsg struct{}

// ModelOptions configures the application model
type ModelOptions struct {
	Path      string
	Config    *config.Config
	Log       *logrus.Logger
	Capture   *capture.Writer
	ExportDir string
}

// Model is the main application model: a tree pane over the parsed run, a
// log pane for the selected test, and a raw mode showing the file as-is
type Model struct {
	cfg *config.Config
	log *logrus.Logger

	session  *session.Session
	src      *source.FileSource
	filtered *source.FilteredProvider
	exporter *export.Writer
	capture  *capture.Writer

	treePane    *TreePane
	logPane     *view.Viewport
	logProvider *logRows
	rawPane     *view.Viewport
	styles      *render.Styles

	filterInput textinput.Model

	mode      Mode
	following bool
	width     int
	height    int

	filename string
	status   string
	err      error
}

// NewModel creates the application model for a run file
func NewModel(opts ModelOptions) (*Model, error) {
	src, err := source.NewFileSource(opts.Path)
	if err != nil {
		return nil, err
	}

	sess := session.New(opts.Config, opts.Log)
	styles := render.NewStyles(opts.Config)
	lineRenderer := render.NewLineRenderer(sess.Classifier(), styles)
	filtered := source.NewFilteredProvider(src)

	treePane := NewTreePane(styles, opts.Config.Display.ShowIDs)

	exporter := export.NewWriter()
	if opts.ExportDir != "" {
		exporter.SetDir(opts.ExportDir)
	}

	logProvider := &logRows{
		renderer:    lineRenderer,
		highlighter: render.NewPayloadHighlighter(),
	}
	logPane := view.NewViewport(80, opts.Config.Display.LogPaneHeight)
	logPane.SetProvider(logProvider)

	rawPane := view.NewViewport(80, 24)
	rawPane.SetProvider(&rawRows{filtered: filtered, renderer: lineRenderer})

	ti := textinput.New()
	ti.Placeholder = "Filter..."
	ti.CharLimit = 256

	m := &Model{
		cfg:         opts.Config,
		log:         opts.Log,
		session:     sess,
		src:         src,
		filtered:    filtered,
		exporter:    exporter,
		capture:     opts.Capture,
		treePane:    treePane,
		logPane:     logPane,
		logProvider: logProvider,
		rawPane:     rawPane,
		styles:      styles,
		filterInput: ti,
		mode:        ModeTree,
		following:   opts.Capture != nil,
		filename:    filepath.Base(opts.Path),
	}

	if tree, err := sess.Update(src); err == nil {
		treePane.SetTree(tree)
	} else {
		m.err = err
	}
	m.syncLogPane()

	return m, nil
}

// SetFollowing enables or disables follow mode before the program starts
func (m *Model) SetFollowing(following bool) {
	m.following = following
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.following {
		cmds = append(cmds, m.tick())
	}
	if m.capture != nil {
		cmds = append(cmds, m.waitForRunner())
	}
	return tea.Batch(cmds...)
}

// waitForRunner delivers a message once the captured runner exits
func (m *Model) waitForRunner() tea.Cmd {
	return func() tea.Msg {
		<-m.capture.Done()
		return runnerDoneMsg{}
	}
}

// tick schedules the next follow refresh
func (m *Model) tick() tea.Cmd {
	interval := time.Duration(m.cfg.Display.FollowInterval) * time.Millisecond
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tickMsg:
		m.refresh()
		if m.following {
			return m, m.tick()
		}
		return m, nil

	case runnerDoneMsg:
		// One final refresh so the terminal exit line is never missed
		m.refresh()
		m.status = "runner finished"
		return m, nil
	}

	return m, nil
}

// layout distributes the window between the panes. Two lines are reserved
// for the status bar and help line, one for the log pane header.
func (m *Model) layout() {
	logHeight := m.cfg.Display.LogPaneHeight
	treeHeight := m.height - logHeight - 3
	if treeHeight < 3 {
		treeHeight = 3
	}

	m.treePane.SetSize(m.width, treeHeight)
	m.logPane.SetSize(m.width, logHeight)
	m.rawPane.SetSize(m.width, m.height-2)
}

// refresh picks up file changes and rebuilds the tree
func (m *Model) refresh() {
	newLines, reset, err := m.src.Refresh()
	if err != nil {
		m.err = err
		return
	}
	if newLines == 0 && !reset {
		return
	}

	tree, err := m.session.Update(m.src)
	if err != nil {
		m.err = err
		return
	}
	m.treePane.SetTree(tree)
	m.filtered.MarkDirty()
	if m.mode == ModeRaw {
		m.rawPane.GotoBottom()
	}
	m.syncLogPane()
}

// syncLogPane points the log pane at the selected test's logs
func (m *Model) syncLogPane() {
	atBottom := m.logPane.Offset() >= m.logProvider.RowCount()-m.logPane.Height()

	if test := m.treePane.SelectedTest(); test != nil {
		m.logProvider.lines = test.Logs
	} else {
		m.logProvider.lines = nil
	}
	m.logPane.SetProvider(m.logProvider)
	if atBottom {
		m.logPane.GotoBottom()
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode == ModeFilter {
		return m.handleFilterKey(msg)
	}
	if m.mode == ModeRaw {
		return m.handleRawKey(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m.quit()

	case "j", "down":
		m.treePane.MoveDown(1)
		m.syncLogPane()
	case "k", "up":
		m.treePane.MoveUp(1)
		m.syncLogPane()

	case "ctrl+d":
		m.treePane.PageDown()
		m.syncLogPane()
	case "ctrl+u":
		m.treePane.PageUp()
		m.syncLogPane()

	case "g", "home":
		m.treePane.GotoTop()
		m.syncLogPane()
	case "G", "end":
		m.treePane.GotoBottom()
		m.syncLogPane()

	case "enter", " ":
		m.treePane.Toggle()
	case "E":
		m.treePane.ExpandAll()
	case "C":
		m.treePane.CollapseAll()

	case "J", "pgdown":
		m.logPane.ScrollDown(1)
	case "K", "pgup":
		m.logPane.ScrollUp(1)

	case "F":
		m.following = !m.following
		if m.following {
			return m, m.tick()
		}

	case "e":
		m.exportSelected()

	case "tab", "r":
		m.mode = ModeRaw
	}

	return m, nil
}

func (m *Model) handleRawKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m.quit()

	case "j", "down":
		m.rawPane.ScrollDown(1)
	case "k", "up":
		m.rawPane.ScrollUp(1)
	case "d", "ctrl+d", "pgdown", " ":
		m.rawPane.PageDown()
	case "u", "ctrl+u", "pgup":
		m.rawPane.PageUp()
	case "g", "home":
		m.rawPane.GotoTop()
	case "G", "end":
		m.rawPane.GotoBottom()

	case "/":
		m.mode = ModeFilter
		m.filterInput.SetValue(m.filtered.GetTextFilter())
		m.filterInput.Focus()
		return m, textinput.Blink

	case "e":
		m.exportFiltered()

	case "esc":
		// Esc clears an active filter first, then leaves raw mode
		if m.filtered.IsFiltered() {
			m.filtered.ClearTextFilter()
			m.rawPane.GotoTop()
		} else {
			m.mode = ModeTree
		}

	case "tab", "r":
		m.mode = ModeTree
	}

	return m, nil
}

func (m *Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.filtered.SetTextFilter(m.filterInput.Value())
		m.rawPane.GotoTop()
		m.mode = ModeRaw
		m.filterInput.Blur()
		return m, nil

	case "esc":
		m.mode = ModeRaw
		m.filterInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	return m, cmd
}

// quit stops a live capture before exiting
func (m *Model) quit() (tea.Model, tea.Cmd) {
	if m.capture != nil {
		if err := m.capture.Stop(); err != nil {
			m.log.WithError(err).Warn("failed to stop runner")
		}
	}
	return m, tea.Quit
}

// exportSelected writes the selected test's logs to a file
func (m *Model) exportSelected() {
	test := m.treePane.SelectedTest()
	if test == nil {
		m.status = "select a test to export"
		return
	}

	path, err := m.exporter.ExportTest(m.src.Path(), test)
	if err != nil {
		m.status = err.Error()
		return
	}
	m.status = "exported " + path
}

// exportFiltered writes the raw view's visible lines to a file
func (m *Model) exportFiltered() {
	path, err := m.exporter.ExportFiltered(m.src.Path(), m.filtered)
	if err != nil {
		m.status = err.Error()
		return
	}
	m.status = "exported " + path
}

// View implements tea.Model
func (m *Model) View() string {
	var builder strings.Builder

	if m.mode == ModeRaw || m.mode == ModeFilter {
		builder.WriteString(m.rawPane.Render())
	} else {
		builder.WriteString(m.treePane.Render())
		builder.WriteString("\n")
		builder.WriteString(m.styles.System.Render(strings.Repeat("─", max(m.width, 1))))
		builder.WriteString("\n")
		builder.WriteString(m.logPane.Render())
	}
	builder.WriteString("\n")

	builder.WriteString(m.statusBar())
	builder.WriteString("\n")
	builder.WriteString(m.helpLine())

	return builder.String()
}

// statusBar renders the one-line status bar
func (m *Model) statusBar() string {
	statusStyle := lipgloss.NewStyle().
		Background(lipgloss.Color(m.cfg.Theme.StatusBar)).
		Foreground(lipgloss.Color(m.cfg.Theme.StatusBarText)).
		Width(m.width)

	if m.mode == ModeFilter {
		return statusStyle.Render("/" + m.filterInput.View())
	}

	parts := []string{" " + m.filename}
	parts = append(parts, fmt.Sprintf("%d lines", m.session.Processed()))

	if m.following {
		parts = append(parts, "FOLLOW")
	}
	if m.mode == ModeRaw {
		parts = append(parts, "RAW")
		if m.filtered.IsFiltered() {
			parts = append(parts, fmt.Sprintf("filter:%q", m.filtered.GetTextFilter()))
		}
		// Top row's position in the unfiltered file
		if original := m.filtered.OriginalLineNumber(m.rawPane.Offset()); original >= 0 {
			parts = append(parts, fmt.Sprintf("L%d", original+1))
		}
		parts = append(parts, fmt.Sprintf("%.0f%%", m.rawPane.PercentScrolled()))
	}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	if m.err != nil {
		parts = append(parts, "error: "+m.err.Error())
	}

	return statusStyle.Render(strings.Join(parts, "  "))
}

// helpLine renders the key hints for the current mode
func (m *Model) helpLine() string {
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.cfg.Theme.SystemLine))

	if m.mode == ModeRaw || m.mode == ModeFilter {
		return helpStyle.Render("j/k:scroll  d/u:page  g/G:top/bottom  /:filter  e:export  tab:tree  q:quit")
	}
	return helpStyle.Render("j/k:select  enter:fold  J/K:logs  E/C:un/fold all  F:follow  e:export  tab:raw  q:quit")
}

// Close releases the model's resources
func (m *Model) Close() error {
	if m.src != nil {
		return m.src.Close()
	}
	return nil
}
