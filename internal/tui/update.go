package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/webszilla/work-zilla-explorer/internal/explorer"
)

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case sessionEventMsg:
		if msg.event.Type == explorer.EventError {
			m.statusMsg = msg.event.Message
		}
		m.refresh()
		return m, m.waitForEvent(msg.ch)

	case opDoneMsg:
		if msg.err != nil {
			m.statusMsg = msg.err.Error()
		}
		m.refresh()
		return m, nil
	}

	return m, nil
}

func (m *Model) run(op func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{err: op(context.Background())}
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeSearch:
		return m.handleSearchKey(msg)
	case modeResults:
		return m.handleResultsKey(msg)
	case modeNewFolder, modeRename:
		return m.handleInputKey(msg)
	}
	return m.handleBrowseKey(msg)
}

func (m *Model) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case "enter", "l", "right":
		if entry, ok := m.selectedEntry(); ok && entry.IsFolder() {
			m.cursor = 0
			return m, m.run(func(ctx context.Context) error {
				return m.session.Open(ctx, entry)
			})
		}

	case "backspace", "h", "left":
		if len(m.path) > 1 {
			up := len(m.path) - 2
			m.cursor = 0
			return m, m.run(func(ctx context.Context) error {
				return m.session.OpenBreadcrumb(ctx, up)
			})
		}

	case "m":
		if m.hasMore {
			return m, m.run(m.session.LoadMore)
		}

	case "/":
		m.mode = modeSearch
		m.input = ""
		m.statusMsg = ""

	case "n":
		m.mode = modeNewFolder
		m.input = ""
		m.statusMsg = ""

	case "r":
		if entry, ok := m.selectedEntry(); ok {
			m.mode = modeRename
			m.renaming = entry
			m.input = entry.Name
			m.statusMsg = ""
		}

	case "x":
		if entry, ok := m.selectedEntry(); ok {
			m.statusMsg = fmt.Sprintf("deleting %s…", entry.Name)
			return m, m.run(func(ctx context.Context) error {
				return m.session.Delete(ctx, entry)
			})
		}

	case "b":
		m.session.ClearLimitBanner()
		m.refresh()

	case "home", "g":
		m.cursor = 0

	case "end", "G":
		if len(m.items) > 0 {
			m.cursor = len(m.items) - 1
		}
	}

	return m, nil
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if len(m.results) > 0 {
			m.mode = modeResults
			m.cursor = 0
		}
		return m, nil

	case "esc":
		m.mode = modeBrowse
		m.input = ""
		m.session.ClearSearch()
		m.refresh()
		return m, nil

	case "backspace":
		if len(m.input) > 0 {
			runes := []rune(m.input)
			m.input = string(runes[:len(runes)-1])
			m.session.SetSearchQuery(m.input)
		}
		return m, nil

	case "ctrl+c":
		return m, tea.Quit
	}

	if msg.Type == tea.KeyRunes {
		m.input += msg.String()
		m.session.SetSearchQuery(m.input)
	}
	return m, nil
}

func (m *Model) handleResultsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeSearch
		return m, nil

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.results)-1 {
			m.cursor++
		}

	case "enter":
		if r, ok := m.selectedResult(); ok {
			m.mode = modeBrowse
			m.input = ""
			m.cursor = 0
			return m, m.run(func(ctx context.Context) error {
				return m.session.OpenSearchResult(ctx, r)
			})
		}

	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		name := m.input
		mode := m.mode
		m.mode = modeBrowse
		m.input = ""
		if name == "" {
			return m, nil
		}
		if mode == modeNewFolder {
			return m, m.run(func(ctx context.Context) error {
				return m.session.CreateFolder(ctx, name)
			})
		}
		entry := m.renaming
		return m, m.run(func(ctx context.Context) error {
			return m.session.Rename(ctx, entry, name)
		})

	case "esc":
		m.mode = modeBrowse
		m.input = ""
		return m, nil

	case "backspace":
		if len(m.input) > 0 {
			runes := []rune(m.input)
			m.input = string(runes[:len(runes)-1])
		}
		return m, nil

	case "ctrl+c":
		return m, tea.Quit
	}

	if msg.Type == tea.KeyRunes {
		m.input += msg.String()
	}
	return m, nil
}
