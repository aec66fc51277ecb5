package explorer

import (
	"context"
	"fmt"

	"github.com/webszilla/work-zilla-explorer/internal/gateway"
	"github.com/webszilla/work-zilla-explorer/internal/protocol"
)

// Open navigates into a folder entry. If the folder is already on the Path
// (an ancestor reached through the tree widget), the Path is truncated to it
// instead of appending a duplicate; the Path never contains a folder id
// twice. Every successful navigation ends in a listing reset for the new
// terminal folder; a failed load rolls the Path back so it stays consistent
// with the still-displayed listing.
func (s *Session) Open(ctx context.Context, entry protocol.Entry) error {
	if !entry.IsFolder() {
		return fmt.Errorf("cannot open %q: not a folder", entry.Name)
	}

	s.mu.Lock()
	prev := append([]protocol.PathSegment(nil), s.path...)
	onPath := false
	for i, seg := range s.path {
		if seg.ID == entry.ID {
			s.path = s.path[:i+1]
			onPath = true
			break
		}
	}
	if !onPath {
		if chain, ok := s.ancestorChainLocked(entry); ok {
			s.path = chain
		} else {
			// Entry from an uncached source; fall back to appending.
			s.path = append(s.path, protocol.PathSegment{ID: entry.ID, Name: entry.Name})
		}
	}
	for _, seg := range s.path {
		s.expanded[seg.ID] = struct{}{}
	}
	s.mu.Unlock()

	s.publish(Event{Type: EventPath, FolderID: entry.ID})
	if err := s.resetAndLoad(ctx, entry.ID); err != nil {
		s.rollbackPath(prev, entry.ID, err)
		return err
	}
	return nil
}

// rollbackPath restores the pre-navigation path after a failed load.
// Skipped when the invalid_folder recovery already rebuilt the path, and
// when a newer navigation owns the terminal slot.
func (s *Session) rollbackPath(prev []protocol.PathSegment, terminal string, err error) {
	if gateway.IsKind(err, gateway.KindInvalidFolder) {
		return
	}
	s.mu.Lock()
	if s.currentFolderLocked() != terminal {
		s.mu.Unlock()
		return
	}
	s.path = prev
	folderID := ""
	if len(prev) > 0 {
		folderID = prev[len(prev)-1].ID
	}
	s.mu.Unlock()

	s.publish(Event{Type: EventPath, FolderID: folderID})
}

// ancestorChainLocked rebuilds the scope-root-to-entry path from the parent
// links recorded while caching listings. Clicking an entry is resolved
// against where the entry actually lives, so rapid navigation against two
// siblings cannot interleave into a bogus path.
func (s *Session) ancestorChainLocked(entry protocol.Entry) ([]protocol.PathSegment, bool) {
	chain := []protocol.PathSegment{{ID: entry.ID, Name: entry.Name}}
	cur, ok := s.parents[entry.ID]
	for ok && cur != s.rootID {
		chain = append([]protocol.PathSegment{{ID: cur, Name: s.names[cur]}}, chain...)
		cur, ok = s.parents[cur]
	}
	if !ok && cur != s.rootID {
		return nil, false
	}
	chain = append([]protocol.PathSegment{{ID: s.rootID, Name: s.rootName}}, chain...)
	return chain, true
}

// OpenBreadcrumb truncates the Path to index+1 segments and reloads that
// folder.
func (s *Session) OpenBreadcrumb(ctx context.Context, index int) error {
	s.mu.Lock()
	if index < 0 || index >= len(s.path) {
		s.mu.Unlock()
		return fmt.Errorf("breadcrumb index %d out of range", index)
	}
	prev := append([]protocol.PathSegment(nil), s.path...)
	s.path = s.path[:index+1]
	folderID := s.path[index].ID
	s.mu.Unlock()

	s.publish(Event{Type: EventPath, FolderID: folderID})
	if err := s.resetAndLoad(ctx, folderID); err != nil {
		s.rollbackPath(prev, folderID, err)
		return err
	}
	return nil
}

// ResetToRoot navigates back to the scope root.
func (s *Session) ResetToRoot(ctx context.Context) error {
	return s.OpenBreadcrumb(ctx, 0)
}
