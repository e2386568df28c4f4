// Package tui is the interactive coverage viewer.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjy-dev/covlens/internal/coverage"
	"github.com/zjy-dev/covlens/internal/logger"
	"github.com/zjy-dev/covlens/internal/render"
)

// Snapshot is the result of one load: the mapping and the source it annotates.
type Snapshot struct {
	Mapping *coverage.FileMapping
	Source  []byte
}

// LoadFunc loads a fresh snapshot. It runs outside the update loop.
type LoadFunc func() (Snapshot, error)

type loadedMsg struct{ snap Snapshot }

type loadFailedMsg struct{ err error }

type fileChangedMsg struct{}

// chrome is the number of lines used by the header and footer.
const chrome = 2

// Model is the bubbletea model of the viewer.
type Model struct {
	filename string
	load     LoadFunc
	renderer *render.Renderer
	changes  <-chan struct{}

	// state is only touched from Update, so a mapping is never seen half-loaded.
	state   *render.State
	mapping *coverage.FileMapping
	source  []byte
	hidden  bool
	loading bool
	err     error

	viewport viewport.Model
	ready    bool
}

// Option configures a Model.
type Option func(*Model)

// WithRenderer sets the listing renderer.
func WithRenderer(r *render.Renderer) Option {
	return func(m *Model) { m.renderer = r }
}

// WithChanges reloads whenever a value arrives on ch.
func WithChanges(ch <-chan struct{}) Option {
	return func(m *Model) { m.changes = ch }
}

// NewModel creates a viewer for filename that obtains data from load.
func NewModel(filename string, load LoadFunc, opts ...Option) Model {
	m := Model{
		filename: filename,
		load:     load,
		state:    render.NewState(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	if m.renderer == nil {
		m.renderer = render.New()
	}
	return m
}

// Init starts the first load and, if configured, waits for file changes.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), m.waitForChange())
}

func (m Model) loadCmd() tea.Cmd {
	load := m.load
	return func() tea.Msg {
		snap, err := load()
		if err != nil {
			return loadFailedMsg{err: err}
		}
		return loadedMsg{snap: snap}
	}
}

func (m Model) waitForChange() tea.Cmd {
	if m.changes == nil {
		return nil
	}
	ch := m.changes
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return fileChangedMsg{}
	}
}

// Update handles keys, window resizes and load results.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "c":
			m.toggle()
			m.refresh()
			return m, nil
		case "r":
			m.loading = true
			return m, m.loadCmd()
		}

	case loadedMsg:
		m.loading = false
		m.err = nil
		m.mapping = msg.snap.Mapping
		m.source = msg.snap.Source
		if !m.hidden {
			if m.state.Replace(m.mapping) {
				logger.Debug("[Coverage] Replaced coverage for %s", m.filename)
			}
		}
		m.refresh()
		return m, nil

	case loadFailedMsg:
		// keep whatever was displayed before
		m.loading = false
		m.err = msg.err
		logger.Warn("[Coverage] Reload failed: %v", msg.err)
		return m, nil

	case fileChangedMsg:
		m.loading = true
		return m, tea.Batch(m.loadCmd(), m.waitForChange())

	case tea.WindowSizeMsg:
		height := max(msg.Height-chrome, 1)
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
		m.refresh()
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// toggle shows or hides coverage. Hiding disposes the render state.
func (m *Model) toggle() {
	if m.hidden {
		m.hidden = false
		if m.mapping != nil {
			m.state.Load(m.mapping)
		}
		return
	}
	m.hidden = true
	m.state.Dispose()
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}
	lines := m.renderer.Lines(m.filename, m.source, m.state)
	m.viewport.SetContent(strings.Join(lines, "\n"))
}

// View renders the header, listing and footer.
func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}
	return m.renderer.Header(m.filename, m.state) + "\n" + m.viewport.View() + "\n" + m.footer()
}

func (m Model) footer() string {
	var status string
	switch {
	case m.err != nil:
		status = fmt.Sprintf("error: %v", m.err)
	case m.loading:
		status = "loading..."
	case m.mapping == nil:
		status = "no coverage loaded"
	}
	keys := "c: toggle coverage  r: reload  q: quit"
	if status == "" {
		return keys
	}
	return status + "  |  " + keys
}

// State returns the current render state.
func (m Model) State() *render.State {
	return m.state
}

// Err returns the error of the last failed load, or nil.
func (m Model) Err() error {
	return m.err
}

// Run starts the viewer on the alternate screen and blocks until it exits.
func Run(m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
