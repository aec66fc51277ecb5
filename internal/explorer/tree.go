package explorer

import (
	"context"

	"github.com/webszilla/work-zilla-explorer/internal/gateway"
	"github.com/webszilla/work-zilla-explorer/internal/metrics"
	"github.com/webszilla/work-zilla-explorer/internal/protocol"
)

// CachedChildren returns the last-fetched direct children of a folder, if
// cached. Only one level is ever cached per folder.
func (s *Session) CachedChildren(folderID string) ([]protocol.Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, ok := s.tree[folderID]
	if !ok {
		return nil, false
	}
	return append([]protocol.Entry(nil), items...), true
}

// IsExpanded reports whether a folder's children are shown in the side tree.
func (s *Session) IsExpanded(folderID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.expanded[folderID]
	return ok
}

// ExpandedSet returns a copy of the expansion set.
func (s *Session) ExpandedSet() map[string]struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]struct{}, len(s.expanded))
	for id := range s.expanded {
		out[id] = struct{}{}
	}
	return out
}

// ExpandFolder loads a folder's children into the tree cache and marks it
// expanded, without navigating to it. The cache entry is replaced wholesale.
func (s *Session) ExpandFolder(ctx context.Context, folderID string) error {
	s.mu.Lock()
	limit := s.opts.PageLimit
	userID := s.scope.UserID
	s.mu.Unlock()

	resp, err := s.gw.ListFolder(ctx, folderID, limit, 0, userID)
	if err != nil {
		if gateway.IsKind(err, gateway.KindInvalidFolder) {
			s.recoverInvalidFolder(ctx, folderID)
		}
		s.publishError(err)
		return err
	}

	s.mu.Lock()
	s.tree[folderID] = append([]protocol.Entry(nil), resp.Items...)
	s.expanded[folderID] = struct{}{}
	s.recordParentsLocked(folderID, resp.Items)
	metrics.SetTreeCacheSize(len(s.tree))
	s.mu.Unlock()

	s.publish(Event{Type: EventTree, FolderID: folderID})
	return nil
}

// Collapse hides a folder's children in the side tree. Ancestors of the
// active view stay expanded.
func (s *Session) Collapse(folderID string) {
	s.mu.Lock()
	for _, seg := range s.path {
		if seg.ID == folderID {
			s.mu.Unlock()
			return
		}
	}
	delete(s.expanded, folderID)
	s.mu.Unlock()

	s.publish(Event{Type: EventTree, FolderID: folderID})
}
