package explorer

import (
	"context"
	"strings"
	"time"

	"github.com/webszilla/work-zilla-explorer/internal/metrics"
	"github.com/webszilla/work-zilla-explorer/internal/protocol"
)

// SetSearchQuery updates the live search box. The query is debounced: any
// keystroke within the window restarts the timer. An empty or whitespace-only
// query issues no request and clears the search state instead. Only the most
// recently issued query's response may update the displayed results; stale
// responses are discarded by generation stamp, not arrival order.
func (s *Session) SetSearchQuery(query string) {
	s.mu.Lock()
	s.searchQuery = query
	if s.searchTimer != nil {
		s.searchTimer.Stop()
		s.searchTimer = nil
	}
	s.searchGen++
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		s.searchResults = nil
		s.mu.Unlock()
		s.publish(Event{Type: EventSearch})
		return
	}
	gen := s.searchGen
	s.searchTimer = time.AfterFunc(s.opts.SearchDebounce, func() {
		s.runSearch(gen, trimmed)
	})
	s.mu.Unlock()
}

// ClearSearch clears the query and results without issuing a request.
func (s *Session) ClearSearch() {
	s.SetSearchQuery("")
}

// SearchQuery returns the current search box contents.
func (s *Session) SearchQuery() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searchQuery
}

// SearchResults returns a copy of the currently displayed results.
func (s *Session) SearchResults() []protocol.SearchResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]protocol.SearchResult(nil), s.searchResults...)
}

func (s *Session) runSearch(gen uint64, query string) {
	s.mu.Lock()
	if gen != s.searchGen || s.closed {
		s.mu.Unlock()
		return
	}
	limit := s.opts.SearchLimit
	userID := s.scope.UserID
	s.mu.Unlock()

	metrics.RecordSearchQuery()
	resp, err := s.gw.Search(s.ctx, query, limit, userID)
	if err != nil {
		s.publishError(err)
		return
	}

	s.mu.Lock()
	if gen != s.searchGen {
		s.mu.Unlock()
		metrics.RecordSearchStaleDrop()
		return
	}
	s.searchResults = resp.Items
	s.mu.Unlock()

	s.publish(Event{Type: EventSearch})
}

// OpenSearchResult jumps the navigator to the folder containing a result.
// Selecting a result is equivalent to manual navigation: the Path is replaced
// by the result's ancestor chain, the terminal folder is reloaded, and the
// search box and results are cleared.
func (s *Session) OpenSearchResult(ctx context.Context, r protocol.SearchResult) error {
	s.mu.Lock()
	prev := append([]protocol.PathSegment(nil), s.path...)
	path := append([]protocol.PathSegment(nil), r.FolderPath...)
	if len(path) == 0 {
		path = []protocol.PathSegment{{ID: s.rootID, Name: s.rootName}}
	}
	s.path = path
	for i, seg := range path {
		s.expanded[seg.ID] = struct{}{}
		s.names[seg.ID] = seg.Name
		if i > 0 {
			s.parents[seg.ID] = path[i-1].ID
		}
	}
	terminal := path[len(path)-1].ID

	if s.searchTimer != nil {
		s.searchTimer.Stop()
		s.searchTimer = nil
	}
	s.searchGen++
	s.searchQuery = ""
	s.searchResults = nil
	s.mu.Unlock()

	s.publish(Event{Type: EventSearch})
	s.publish(Event{Type: EventPath, FolderID: terminal})
	if err := s.resetAndLoad(ctx, terminal); err != nil {
		s.rollbackPath(prev, terminal, err)
		return err
	}
	return nil
}
