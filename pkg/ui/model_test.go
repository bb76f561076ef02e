package ui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/buildline/pkg/config"
	"github.com/vanderheijden86/buildline/pkg/model"
	"github.com/vanderheijden86/buildline/pkg/testutil"
	"github.com/vanderheijden86/buildline/pkg/timeline"
	"github.com/vanderheijden86/buildline/pkg/watcher"
)

func newABCModel(t *testing.T) Model {
	t.Helper()
	m := NewModel(testutil.ToDataset(testutil.ABC(), 12), config.DefaultConfig())
	return update(t, m, tea.WindowSizeMsg{Width: 90, Height: 30})
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "end":
		return tea.KeyMsg{Type: tea.KeyEnd}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func visibleNames(m Model) []string {
	var names []string
	for _, r := range m.Timeline().VisibleRows() {
		names = append(names, r.Name())
	}
	return names
}

func TestNewModel_LongestFirst(t *testing.T) {
	m := newABCModel(t)
	got := strings.Join(visibleNames(m), ",")
	if got != "C,B,A" {
		t.Fatalf("rows = %s, want C,B,A", got)
	}
	if m.cursorName() != "C" {
		t.Errorf("cursor on %q, want C", m.cursorName())
	}
}

func TestNewModel_NilDataset(t *testing.T) {
	m := NewModel(nil, config.DefaultConfig())
	m = update(t, m, key("j"))
	m = update(t, m, key("enter"))
	if m.Timeline().Len() != 0 {
		t.Fatalf("expected empty timeline")
	}
	if !strings.Contains(m.View(), "No compilation entries.") {
		t.Errorf("empty view missing placeholder:\n%s", m.View())
	}
}

func TestModel_SelectTogglesAndHides(t *testing.T) {
	m := newABCModel(t)

	m = update(t, m, key("enter"))
	active, ok := m.Controller().Active()
	if !ok || active != "C" {
		t.Fatalf("active = %q/%v, want C", active, ok)
	}
	testutil.AssertStates(t, m.Timeline(), map[string]timeline.RowState{
		"C": timeline.StateSelected,
		"B": timeline.StateDependency,
		"A": timeline.StateHidden,
	})
	if got := strings.Join(visibleNames(m), ","); got != "C,B" {
		t.Errorf("visible = %s, want C,B", got)
	}
	if m.cursorName() != "C" {
		t.Errorf("cursor moved off the selected row: %q", m.cursorName())
	}

	m = update(t, m, key("space"))
	if _, ok := m.Controller().Active(); ok {
		t.Fatal("selecting the active row again should clear it")
	}
	testutil.AssertAllNormal(t, m.Timeline())
}

func TestModel_SelectMiddleOfChain(t *testing.T) {
	m := newABCModel(t)
	m = update(t, m, key("j"))
	m = update(t, m, key("enter"))

	testutil.AssertStates(t, m.Timeline(), map[string]timeline.RowState{
		"C": timeline.StateDirectDependant,
		"B": timeline.StateSelected,
		"A": timeline.StateDependency,
	})
	if m.Cursor() != 1 {
		t.Errorf("cursor = %d, want 1", m.Cursor())
	}
	if msg, isErr := m.Status(); isErr || msg != "Selected B" {
		t.Errorf("status = %q (error=%v)", msg, isErr)
	}
}

func TestModel_EscClears(t *testing.T) {
	m := newABCModel(t)
	m = update(t, m, key("enter"))
	m = update(t, m, key("esc"))

	if _, ok := m.Controller().Active(); ok {
		t.Fatal("esc should clear the selection")
	}
	if m.Controller().ClearControlVisible() {
		t.Error("clear control still visible")
	}
	testutil.AssertAllNormal(t, m.Timeline())
	if len(visibleNames(m)) != 3 {
		t.Errorf("expected every row visible again")
	}
}

func TestModel_CursorBounds(t *testing.T) {
	m := newABCModel(t)
	m = update(t, m, key("k"))
	if m.Cursor() != 0 {
		t.Errorf("cursor = %d after moving up at top", m.Cursor())
	}
	m = update(t, m, key("G"))
	if m.Cursor() != 2 {
		t.Errorf("cursor = %d after G, want 2", m.Cursor())
	}
	m = update(t, m, key("j"))
	if m.Cursor() != 2 {
		t.Errorf("cursor = %d after moving past the end", m.Cursor())
	}
	m = update(t, m, key("g"))
	if m.Cursor() != 0 {
		t.Errorf("cursor = %d after g, want 0", m.Cursor())
	}
}

func TestModel_ScrollKeepsCursorDrawn(t *testing.T) {
	m := NewModel(testutil.ToDataset(testutil.QuickChain(50), 0), config.DefaultConfig())
	m = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 15})
	m = update(t, m, key("end"))

	if m.Cursor() != 49 {
		t.Fatalf("cursor = %d, want 49", m.Cursor())
	}
	if m.offset == 0 {
		t.Error("offset should follow the cursor")
	}
	last := m.Timeline().VisibleRows()[49]
	if !strings.Contains(m.View(), last.Label) {
		t.Errorf("view does not draw the cursor row %q", last.Label)
	}
}

func TestModel_View(t *testing.T) {
	m := newABCModel(t)
	view := m.View()
	for _, want := range []string{
		timeline.SummaryTitle,
		"Total Duration: 12.00 seconds",
		"Total Assemblies: 3",
		"[9.00s] C",
		"[2.00s] B",
		"[1.00s] A",
		"3 units",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
	if strings.Contains(view, "Clear Selection") {
		t.Error("clear hint shown without a selection")
	}

	m = update(t, m, key("enter"))
	view = m.View()
	if !strings.Contains(view, "Clear Selection") {
		t.Errorf("clear hint missing after selecting:\n%s", view)
	}
	if strings.Contains(view, "[1.00s] A") {
		t.Error("hidden row A was drawn")
	}
	if !strings.Contains(view, "2 of 3 units") {
		t.Errorf("column header should count visible rows:\n%s", view)
	}
}

func TestModel_ClearHintDisabled(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.UI.ShowClearHint = false
	m := NewModel(testutil.ToDataset(testutil.ABC(), 12), cfg)
	m = update(t, m, key("enter"))
	if !m.Controller().ClearControlVisible() {
		t.Fatal("controller should still expose the clear control")
	}
	if strings.Contains(m.View(), "Clear Selection") {
		t.Error("hint drawn although ui.show_clear_hint is off")
	}
}

func TestModel_SummaryNote(t *testing.T) {
	ds := &model.Dataset{
		Entries: testutil.ABC(),
		Total:   model.TotalDuration{Kind: model.TotalDurationsOnly, Seconds: 9},
	}
	m := NewModel(ds, config.DefaultConfig())
	if !strings.Contains(m.View(), "no start times recorded") {
		t.Errorf("note missing:\n%s", m.View())
	}
}

func TestModel_ReloadDiscardsSelection(t *testing.T) {
	m := newABCModel(t)
	m = update(t, m, key("enter"))

	m = update(t, m, ReloadMsg{watcher.Reload{Dataset: testutil.ToDataset(testutil.QuickChain(5), 0)}})
	if _, ok := m.Controller().Active(); ok {
		t.Error("reload should drop the selection")
	}
	if m.Timeline().Len() != 5 {
		t.Errorf("rows = %d, want 5", m.Timeline().Len())
	}
	testutil.AssertAllNormal(t, m.Timeline())
	if msg, isErr := m.Status(); isErr || msg != "Reloaded 5 units" {
		t.Errorf("status = %q (error=%v)", msg, isErr)
	}
}

func TestModel_ReloadErrorKeepsTimeline(t *testing.T) {
	m := newABCModel(t)
	m = update(t, m, key("enter"))

	m = update(t, m, ReloadMsg{watcher.Reload{Err: errors.New("boom")}})
	if m.Timeline().Len() != 3 {
		t.Fatalf("timeline replaced on error")
	}
	if _, ok := m.Controller().Active(); !ok {
		t.Error("failed reload should not touch the selection")
	}
	msg, isErr := m.Status()
	if !isErr || !strings.Contains(msg, "boom") {
		t.Errorf("status = %q (error=%v)", msg, isErr)
	}

	m = update(t, m, ReloadMsg{watcher.Reload{Err: watcher.ErrFileRemoved}})
	if msg, _ := m.Status(); !strings.Contains(msg, "removed") {
		t.Errorf("status = %q, want removal notice", msg)
	}
}

func TestModel_ManualReload(t *testing.T) {
	m := newABCModel(t)
	m = update(t, m, key("r"))
	if msg, isErr := m.Status(); !isErr || msg != "Reload unavailable" {
		t.Errorf("status = %q (error=%v)", msg, isErr)
	}

	calls := 0
	m = m.WithReload(func() (*model.Dataset, error) {
		calls++
		return testutil.ToDataset(testutil.QuickStar(3), 0), nil
	}).WithSource("Logs/compilation_timeline.json")

	next, cmd := m.Update(key("r"))
	if cmd == nil {
		t.Fatal("expected a reload command")
	}
	msg := cmd()
	rm, ok := msg.(ReloadMsg)
	if !ok {
		t.Fatalf("cmd returned %T, want ReloadMsg", msg)
	}
	if calls != 1 || rm.Path != "Logs/compilation_timeline.json" {
		t.Errorf("calls=%d path=%q", calls, rm.Path)
	}
	m = update(t, next.(Model), rm)
	if m.Timeline().Len() != 4 {
		t.Errorf("rows = %d, want 4", m.Timeline().Len())
	}
}

func TestModel_Help(t *testing.T) {
	m := newABCModel(t)
	m = update(t, m, key("?"))
	if !strings.Contains(m.View(), "Keys") {
		t.Fatalf("help not shown:\n%s", m.View())
	}
	m = update(t, m, key("j"))
	if m.showHelp {
		t.Error("any key should close help")
	}
	if m.Cursor() != 0 {
		t.Error("the key closing help should not move the cursor")
	}
}

func TestModel_Quit(t *testing.T) {
	m := newABCModel(t)
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestModel_DetailsPane(t *testing.T) {
	m := NewModel(testutil.ToDataset(testutil.ABC(), 12), config.DefaultConfig())
	m = update(t, m, tea.WindowSizeMsg{Width: 140, Height: 40})
	m = update(t, m, key("/"))
	if !m.isSplitView() {
		t.Fatal("wide terminal should split")
	}
	if m.detail.View() == "" {
		t.Error("details pane is empty")
	}

	m = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 40})
	if m.isSplitView() {
		t.Error("narrow terminal should not split")
	}
	m = update(t, m, key("/"))
	if m.showDetails {
		t.Error("/ should close the pane")
	}
}

func TestModel_ClearRefreshesDetails(t *testing.T) {
	m := NewModel(testutil.ToDataset(testutil.ABC(), 12), config.DefaultConfig())
	m = update(t, m, tea.WindowSizeMsg{Width: 140, Height: 40})
	m = update(t, m, key("/"))
	m = update(t, m, key("enter"))
	if got := stripANSI(m.detail.View()); !strings.Contains(got, "Role") || !strings.Contains(got, "selected") {
		t.Fatalf("details should show the selected role:\n%s", got)
	}

	m = update(t, m, key("esc"))
	if got := stripANSI(m.detail.View()); strings.Contains(got, "Role") {
		t.Errorf("details still show a role after clearing:\n%s", got)
	}
}

func TestModel_InitWithoutWatcher(t *testing.T) {
	m := newABCModel(t)
	if m.Init() != nil {
		t.Error("Init without a watcher should not wait for reloads")
	}
}

func TestWaitForReloadCmd_StoppedWatcher(t *testing.T) {
	path := testutil.WriteEntries(t, filepath.Join(t.TempDir(), "compilation_timeline.json"), testutil.ABC(), 12)
	dw, err := watcher.WatchDocument(context.Background(), path, watcher.WithForcePoll(true))
	if err != nil {
		t.Fatal(err)
	}
	dw.Stop()

	if msg := WaitForReloadCmd(dw)(); msg != nil {
		t.Errorf("expected nil message once the watcher stops, got %T", msg)
	}
}
