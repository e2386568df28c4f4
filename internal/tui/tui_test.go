package tui

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjy-dev/covlens/internal/coverage"
	"github.com/zjy-dev/covlens/internal/render"
)

func asciiRenderer() *render.Renderer {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.Ascii)
	return render.New(render.WithRenderer(r), render.WithSyntax(false))
}

func mappingWithCount(count uint64) *coverage.FileMapping {
	return coverage.NewFileMapping("main.c", []coverage.Segment{
		{Line: 1, Col: 1, Count: count, HasCount: true, IsRegionEntry: true},
		{Line: 3, Col: 1, Count: 0, HasCount: false, IsRegionEntry: false},
	})
}

const source = "int main() {\n  return 0;\n}\n"

// fakeLoads returns a LoadFunc yielding the given results in order.
func fakeLoads(results ...func() (Snapshot, error)) LoadFunc {
	i := 0
	return func() (Snapshot, error) {
		r := results[min(i, len(results)-1)]
		i++
		return r()
	}
}

func ok(count uint64) func() (Snapshot, error) {
	return func() (Snapshot, error) {
		return Snapshot{Mapping: mappingWithCount(count), Source: []byte(source)}, nil
	}
}

func fail(msg string) func() (Snapshot, error) {
	return func() (Snapshot, error) { return Snapshot{}, errors.New(msg) }
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// update applies msg and, like the bubbletea runtime, feeds the result of a
// returned load command straight back in.
func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	if cmd == nil {
		return m
	}
	switch res := cmd().(type) {
	case loadedMsg, loadFailedMsg:
		next, _ = m.Update(res)
		m = next.(Model)
	}
	return m
}

func started(t *testing.T, load LoadFunc) Model {
	t.Helper()
	m := NewModel("main.c", load, WithRenderer(asciiRenderer()))
	m = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 10})
	next, _ := m.Update(m.loadCmd()())
	return next.(Model)
}

func TestModel_InitialLoad(t *testing.T) {
	m := started(t, fakeLoads(ok(3)))

	require.True(t, m.State().Active())
	count, found := m.State().LineCount(2)
	assert.True(t, found)
	assert.Equal(t, uint64(3), count)

	view := m.View()
	assert.Contains(t, view, "main.c  max 3")
	assert.Contains(t, view, "1    3 │ int main() {")
	assert.Contains(t, view, "c: toggle coverage")
}

func TestModel_ToggleDisposesAndRestores(t *testing.T) {
	m := started(t, fakeLoads(ok(3)))

	m = update(t, m, key("c"))
	assert.False(t, m.State().Active())
	assert.Contains(t, m.View(), "coverage hidden")
	assert.Contains(t, m.View(), "1 │ int main() {")

	m = update(t, m, key("c"))
	assert.True(t, m.State().Active())
	assert.Contains(t, m.View(), "1    3 │ int main() {")
}

func TestModel_ReloadReplacesState(t *testing.T) {
	m := started(t, fakeLoads(ok(3), ok(42)))

	m = update(t, m, key("r"))

	count, _ := m.State().LineCount(1)
	assert.Equal(t, uint64(42), count)
	assert.NoError(t, m.Err())
}

func TestModel_FailedReloadKeepsPriorState(t *testing.T) {
	m := started(t, fakeLoads(ok(3), fail("unsupported coverage export format")))
	before := m.State().Mapping()

	m = update(t, m, key("r"))

	assert.Same(t, before, m.State().Mapping())
	assert.EqualError(t, m.Err(), "unsupported coverage export format")
	assert.Contains(t, m.View(), "error: unsupported coverage export format")
}

func TestModel_ReloadWhileHiddenStaysHidden(t *testing.T) {
	m := started(t, fakeLoads(ok(3), ok(9)))

	m = update(t, m, key("c"))
	m = update(t, m, key("r"))
	assert.False(t, m.State().Active())

	m = update(t, m, key("c"))
	count, _ := m.State().LineCount(1)
	assert.Equal(t, uint64(9), count)
}

func TestModel_FileChangeTriggersReload(t *testing.T) {
	changes := make(chan struct{}, 1)
	m := NewModel("main.c", fakeLoads(ok(1), ok(5)), WithRenderer(asciiRenderer()), WithChanges(changes))
	m = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 10})
	next, _ := m.Update(m.loadCmd()())
	m = next.(Model)

	changes <- struct{}{}
	msg := m.waitForChange()()
	require.IsType(t, fileChangedMsg{}, msg)

	next, cmd := m.Update(msg)
	m = next.(Model)
	require.NotNil(t, cmd)
	next, _ = m.Update(m.loadCmd()())
	m = next.(Model)

	count, _ := m.State().LineCount(1)
	assert.Equal(t, uint64(5), count)
}

func TestModel_Quit(t *testing.T) {
	m := started(t, fakeLoads(ok(1)))

	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestModel_ViewBeforeResize(t *testing.T) {
	m := NewModel("main.c", fakeLoads(ok(1)))
	assert.Equal(t, "loading...", m.View())
	assert.True(t, strings.HasPrefix(m.footer(), "no coverage loaded"))
}

func TestModel_Program(t *testing.T) {
	m := NewModel("main.c", fakeLoads(ok(3)), WithRenderer(asciiRenderer()))
	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(80, 12))

	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("max 3")) && bytes.Contains(out, []byte("return 0;"))
	})

	tm.Send(key("c"))
	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("coverage hidden"))
	})

	tm.Send(key("q"))
	tm.WaitFinished(t, teatest.WithFinalTimeout(time.Second))

	final, isModel := tm.FinalModel(t).(Model)
	require.True(t, isModel)
	assert.False(t, final.State().Active())
	assert.NoError(t, final.Err())
}
