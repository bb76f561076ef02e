// Package ui is the interactive terminal view of a compilation timeline.
//
// The model owns a timeline.Controller and renders the rows it leaves
// visible. It never mutates entry data; selection state lives entirely in
// the controller and is discarded when the document is reloaded.
package ui

import (
	"errors"
	"fmt"
	"os"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/buildline/pkg/analysis"
	"github.com/vanderheijden86/buildline/pkg/config"
	"github.com/vanderheijden86/buildline/pkg/debug"
	"github.com/vanderheijden86/buildline/pkg/model"
	"github.com/vanderheijden86/buildline/pkg/timeline"
	"github.com/vanderheijden86/buildline/pkg/watcher"
)

// View width thresholds for adaptive layout
const (
	SplitViewThreshold = 100
	MinDetailPaneWidth = 40
)

// ReloadMsg carries a re-read document, from the watcher or a manual reload.
type ReloadMsg struct {
	watcher.Reload
}

// WaitForReloadCmd returns a command that waits for the next document reload.
func WaitForReloadCmd(dw *watcher.DocumentWatcher) tea.Cmd {
	return func() tea.Msg {
		r, ok := <-dw.Reloads()
		if !ok {
			return nil
		}
		return ReloadMsg{r}
	}
}

// ReloadFunc re-reads the input document on demand.
type ReloadFunc func() (*model.Dataset, error)

// Model is the bubbletea model for the timeline view.
type Model struct {
	tl     *timeline.Timeline
	ctl    *timeline.Controller
	report analysis.CouplingReport

	cursor int // index into the visible rows
	offset int // first visible row drawn

	width  int
	height int
	ready  bool

	showDetails bool
	showHelp    bool
	detail      viewport.Model
	mdRenderer  *glamour.TermRenderer
	mdWidth     int

	theme Theme
	cfg   config.Config

	docWatcher *watcher.DocumentWatcher
	reload     ReloadFunc
	source     string

	statusMsg     string
	statusIsError bool
}

// NewModel builds the view over ds. A nil dataset shows an empty timeline.
func NewModel(ds *model.Dataset, cfg config.Config) Model {
	m := Model{
		cfg:    cfg,
		theme:  NewTheme(lipgloss.NewRenderer(os.Stdout), cfg.UI.Theme),
		detail: viewport.New(0, 0),
	}
	m.setDataset(ds)
	return m
}

// WithWatcher makes the model follow document reloads from dw.
func (m Model) WithWatcher(dw *watcher.DocumentWatcher) Model {
	m.docWatcher = dw
	return m
}

// WithReload enables the manual reload key.
func (m Model) WithReload(fn ReloadFunc) Model {
	m.reload = fn
	return m
}

// WithSource sets the document path shown in the header.
func (m Model) WithSource(path string) Model {
	m.source = path
	return m
}

// Timeline returns the laid-out timeline.
func (m Model) Timeline() *timeline.Timeline { return m.tl }

// Controller returns the selection controller.
func (m Model) Controller() *timeline.Controller { return m.ctl }

// Cursor returns the cursor position within the visible rows.
func (m Model) Cursor() int { return m.cursor }

// Status returns the status line text and whether it is an error.
func (m Model) Status() (string, bool) { return m.statusMsg, m.statusIsError }

// setDataset rebuilds every derived structure. Any selection is dropped.
func (m *Model) setDataset(ds *model.Dataset) {
	m.tl = timeline.Build(ds)
	m.ctl = timeline.NewController(m.tl)
	var entries []model.CompilationEntry
	if ds != nil {
		entries = ds.Entries
	}
	m.report = analysis.NewAnalyzer(entries).Analyze()
	m.cursor, m.offset = 0, 0
	m.refreshDetail()
}

func (m Model) Init() tea.Cmd {
	if m.docWatcher == nil {
		return nil
	}
	return WaitForReloadCmd(m.docWatcher)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resizeDetail()
		m.clampScroll()

	case ReloadMsg:
		m.applyReload(msg.Reload)
		if m.docWatcher != nil {
			cmds = append(cmds, WaitForReloadCmd(m.docWatcher))
		}

	case tea.KeyMsg:
		if m.showHelp {
			// Any key closes help; q still quits.
			m.showHelp = false
			if msg.String() == "q" || msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			return m, nil
		}
		var cmd tea.Cmd
		m, cmd = m.handleKey(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "pgup", "ctrl+u":
		m.moveCursor(-m.listHeight())
	case "pgdown", "ctrl+d":
		m.moveCursor(m.listHeight())
	case "home", "g":
		m.moveCursor(-len(m.tl.Rows))
	case "end", "G":
		m.moveCursor(len(m.tl.Rows))
	case "enter", " ", "space":
		m.toggleCursor()
	case "esc", "c":
		if _, ok := m.ctl.Active(); ok {
			name := m.cursorName()
			m.ctl.Clear()
			m.followRow(name)
			m.refreshDetail()
			m.statusMsg, m.statusIsError = "Selection cleared", false
		}
	case "/":
		m.showDetails = !m.showDetails
		m.resizeDetail()
	case "shift+up", "K":
		if m.showDetails {
			m.detail.ScrollUp(1)
		}
	case "shift+down", "J":
		if m.showDetails {
			m.detail.ScrollDown(1)
		}
	case "y":
		row := m.cursorRow()
		if row == nil {
			break
		}
		if err := clipboard.WriteAll(row.Name()); err != nil {
			m.statusMsg = fmt.Sprintf("❌ Clipboard error: %v", err)
			m.statusIsError = true
		} else {
			m.statusMsg = fmt.Sprintf("📋 Copied %s to clipboard", row.Name())
			m.statusIsError = false
		}
	case "r":
		if m.reload == nil {
			m.statusMsg, m.statusIsError = "Reload unavailable", true
			break
		}
		m.statusMsg, m.statusIsError = "Reloading…", false
		return m, manualReloadCmd(m.reload, m.source)
	case "?":
		m.showHelp = true
	}
	return m, nil
}

func manualReloadCmd(fn ReloadFunc, path string) tea.Cmd {
	return func() tea.Msg {
		ds, err := fn()
		return ReloadMsg{watcher.Reload{Path: path, Dataset: ds, Err: err}}
	}
}

func (m *Model) applyReload(r watcher.Reload) {
	if r.Err != nil {
		m.statusIsError = true
		if errors.Is(r.Err, watcher.ErrFileRemoved) {
			m.statusMsg = "Document removed; keeping the last timeline"
		} else {
			m.statusMsg = fmt.Sprintf("Reload error: %v", r.Err)
		}
		debug.Log("ui: reload failed: %v", r.Err)
		return
	}
	m.setDataset(r.Dataset)
	m.clampScroll()
	m.statusMsg = fmt.Sprintf("Reloaded %d units", m.tl.Len())
	m.statusIsError = false
}

// toggleCursor activates the row under the cursor and keeps the cursor on
// it, which stays visible in both directions of the toggle.
func (m *Model) toggleCursor() {
	row := m.cursorRow()
	if row == nil {
		return
	}
	name := row.Name()
	m.ctl.Activate(name)
	m.followRow(name)
	if active, ok := m.ctl.Active(); ok {
		m.statusMsg = fmt.Sprintf("Selected %s", timeline.DisplayName(active))
	} else {
		m.statusMsg = ""
	}
	m.statusIsError = false
	m.refreshDetail()
}

// followRow moves the cursor to the named row if it is visible, or to the
// top otherwise.
func (m *Model) followRow(name string) {
	m.cursor = 0
	for i, r := range m.tl.VisibleRows() {
		if r.Name() == name {
			m.cursor = i
			break
		}
	}
	m.clampScroll()
}

func (m *Model) moveCursor(delta int) {
	n := len(m.tl.VisibleRows())
	if n == 0 {
		m.cursor = 0
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), n-1)
	m.clampScroll()
	m.refreshDetail()
}

// clampScroll keeps the cursor inside the drawn window.
func (m *Model) clampScroll() {
	n := len(m.tl.VisibleRows())
	if m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
	h := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
	m.offset = max(min(m.offset, n-h), 0)
}

func (m Model) cursorRow() *timeline.Row {
	rows := m.tl.VisibleRows()
	if m.cursor < 0 || m.cursor >= len(rows) {
		return nil
	}
	return rows[m.cursor]
}

func (m Model) cursorName() string {
	if r := m.cursorRow(); r != nil {
		return r.Name()
	}
	return ""
}

func (m Model) isSplitView() bool {
	return m.showDetails && m.width >= SplitViewThreshold
}

// headerHeight is the title, two summary lines, the optional note and the
// clear hint.
func (m Model) headerHeight() int {
	h := 4 // title, summary, blank, column header
	if m.tl.Summary().Note() != "" {
		h++
	}
	if m.clearHintVisible() {
		h++
	}
	return h
}

func (m Model) listHeight() int {
	if m.height == 0 {
		return 20
	}
	return max(m.height-m.headerHeight()-1, 1)
}

func (m Model) clearHintVisible() bool {
	return m.ctl.ClearControlVisible() && m.cfg.UI.ShowClearHint
}
