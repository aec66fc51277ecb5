// Package tui is a terminal browser over an explorer session: breadcrumb
// navigation, paginated listings, live search, mutations, uploads, and the
// quota footer.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/webszilla/work-zilla-explorer/internal/explorer"
	"github.com/webszilla/work-zilla-explorer/internal/protocol"
)

// inputMode is what the keyboard is currently driving.
type inputMode int

const (
	modeBrowse inputMode = iota
	modeSearch
	modeResults
	modeNewFolder
	modeRename
)

// Model holds the TUI state. All remote work happens inside the session;
// the model only mirrors its snapshots.
type Model struct {
	session *explorer.Session

	items   []protocol.Entry
	path    []protocol.PathSegment
	results []protocol.SearchResult
	uploads []explorer.UploadTask
	quota   explorer.Quota
	hasMore bool

	cursor    int
	mode      inputMode
	input     string
	renaming  protocol.Entry
	statusMsg string
	width     int
	height    int
	err       error
}

// NewModel creates a TUI over a started session.
func NewModel(session *explorer.Session) *Model {
	m := &Model{session: session}
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.waitForEvent(m.session.Events().Subscribe())
}

// sessionEventMsg carries one session event plus the channel to keep
// listening on.
type sessionEventMsg struct {
	event explorer.Event
	ch    chan explorer.Event
}

// opDoneMsg reports a finished remote operation.
type opDoneMsg struct{ err error }

func (m *Model) waitForEvent(ch chan explorer.Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return sessionEventMsg{event: event, ch: ch}
	}
}

// refresh re-reads every snapshot the view renders.
func (m *Model) refresh() {
	m.items = m.session.Listing().Items
	m.hasMore = m.session.Listing().HasMore()
	m.path = m.session.Path()
	m.results = m.session.SearchResults()
	m.uploads = m.session.Uploads()
	m.quota = m.session.Quota()
	if m.cursor >= len(m.visibleRows()) {
		m.cursor = len(m.visibleRows()) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// visibleRows returns how many rows the cursor can move over in the
// current mode.
func (m *Model) visibleRows() []string {
	if m.mode == modeResults {
		rows := make([]string, len(m.results))
		for i, r := range m.results {
			rows[i] = r.FileID
		}
		return rows
	}
	rows := make([]string, len(m.items))
	for i, e := range m.items {
		rows[i] = e.ID
	}
	return rows
}

func (m *Model) selectedEntry() (protocol.Entry, bool) {
	if m.mode == modeResults || m.cursor >= len(m.items) {
		return protocol.Entry{}, false
	}
	return m.items[m.cursor], true
}

func (m *Model) selectedResult() (protocol.SearchResult, bool) {
	if m.mode != modeResults || m.cursor >= len(m.results) {
		return protocol.SearchResult{}, false
	}
	return m.results[m.cursor], true
}

func (m *Model) helpLine() string {
	switch m.mode {
	case modeSearch:
		return "Type to search | Enter: results | Esc: cancel"
	case modeResults:
		return "↑/↓ move | Enter: jump to folder | Esc: back"
	case modeNewFolder:
		return "Folder name | Enter: create | Esc: cancel"
	case modeRename:
		return "New name | Enter: rename | Esc: cancel"
	}
	return "↑/↓ move | Enter: open | Backspace: up | m: more | /: search | n: new | r: rename | x: delete | q: quit"
}
