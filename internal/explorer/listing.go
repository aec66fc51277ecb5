package explorer

import (
	"context"

	"go.uber.org/zap"

	"github.com/webszilla/work-zilla-explorer/internal/gateway"
	"github.com/webszilla/work-zilla-explorer/internal/logging"
	"github.com/webszilla/work-zilla-explorer/internal/metrics"
	"github.com/webszilla/work-zilla-explorer/internal/protocol"
)

// applyListingLocked installs a fetched page. reset replaces the accumulated
// page; otherwise the new items are appended. The tree cache entry for the
// folder is always replaced wholesale with the accumulated items — the server
// listing is authoritative, never merged field-by-field.
func (s *Session) applyListingLocked(folderID string, items []protocol.Entry, p protocol.Pagination, reset bool) {
	if reset {
		s.listing = ListingPage{
			FolderID:     folderID,
			Items:        append([]protocol.Entry(nil), items...),
			Offset:       p.Offset,
			Limit:        p.Limit,
			TotalFolders: p.TotalFolders,
			TotalFiles:   p.TotalFiles,
		}
	} else {
		s.listing.Items = append(s.listing.Items, items...)
		s.listing.Offset = p.Offset
		s.listing.TotalFolders = p.TotalFolders
		s.listing.TotalFiles = p.TotalFiles
	}

	s.tree[folderID] = append([]protocol.Entry(nil), s.listing.Items...)
	s.expanded[folderID] = struct{}{}
	s.recordParentsLocked(folderID, s.listing.Items)
	metrics.SetTreeCacheSize(len(s.tree))
}

// recordParentsLocked remembers where each cached entry lives so Open can
// rebuild an entry's ancestor chain without trusting the path the click
// happened to race against.
func (s *Session) recordParentsLocked(folderID string, items []protocol.Entry) {
	for _, e := range items {
		s.parents[e.ID] = folderID
		if e.IsFolder() {
			s.names[e.ID] = e.Name
		}
	}
}

// resetAndLoad opens folderID at offset 0, discarding any accumulated
// pagination state. Rapid navigation is resolved last-request-wins: a
// superseded response is dropped even if it arrives later.
func (s *Session) resetAndLoad(ctx context.Context, folderID string) error {
	s.mu.Lock()
	s.loadGen++
	gen := s.loadGen
	limit := s.opts.PageLimit
	userID := s.scope.UserID
	s.mu.Unlock()

	metrics.RecordListingLoad(true)
	resp, err := s.gw.ListFolder(ctx, folderID, limit, 0, userID)
	if err != nil {
		if gateway.IsKind(err, gateway.KindInvalidFolder) {
			s.recoverInvalidFolder(ctx, folderID)
		}
		s.publishError(err)
		return err
	}

	s.mu.Lock()
	if gen != s.loadGen {
		s.mu.Unlock()
		return nil
	}
	s.applyListingLocked(folderID, resp.Items, resp.Pagination, true)
	s.mu.Unlock()

	s.publish(Event{Type: EventListing, FolderID: folderID})
	s.publish(Event{Type: EventTree, FolderID: folderID})
	return nil
}

// LoadMore appends the next page to the current folder's listing. Already
// visible rows are kept; this is the one intentional incremental display.
// Overlapping calls resolve last-writer-wins through the load generation, so
// two racing LoadMores cannot append the same page twice.
func (s *Session) LoadMore(ctx context.Context) error {
	s.mu.Lock()
	if s.listing.FolderID == "" || !s.listing.HasMore() {
		s.mu.Unlock()
		return nil
	}
	s.loadGen++
	gen := s.loadGen
	folderID := s.listing.FolderID
	offset := s.listing.Offset + s.listing.Limit
	limit := s.listing.Limit
	userID := s.scope.UserID
	s.mu.Unlock()

	metrics.RecordListingLoad(false)
	resp, err := s.gw.ListFolder(ctx, folderID, limit, offset, userID)
	if err != nil {
		if gateway.IsKind(err, gateway.KindInvalidFolder) {
			s.recoverInvalidFolder(ctx, folderID)
		}
		s.publishError(err)
		return err
	}

	s.mu.Lock()
	if gen != s.loadGen || s.listing.FolderID != folderID {
		s.mu.Unlock()
		return nil
	}
	p := resp.Pagination
	p.Offset = offset
	s.applyListingLocked(folderID, resp.Items, p, false)
	s.mu.Unlock()

	s.publish(Event{Type: EventListing, FolderID: folderID})
	s.publish(Event{Type: EventTree, FolderID: folderID})
	return nil
}

// recoverInvalidFolder handles a folder that was deleted or moved out of
// scope concurrently: its cache entry is dropped and the view is forced back
// to the scope root. This is the only automatic recovery path.
func (s *Session) recoverInvalidFolder(ctx context.Context, folderID string) {
	s.mu.Lock()
	delete(s.tree, folderID)
	delete(s.expanded, folderID)
	metrics.SetTreeCacheSize(len(s.tree))
	rootID, rootName := s.rootID, s.rootName
	if folderID == rootID {
		// The scope root itself is gone; rebuild the scope.
		s.mu.Unlock()
		if err := s.loadScopeRoot(ctx); err != nil {
			logging.Debug("scope rebuild after invalid root failed", zap.Error(err))
		}
		return
	}
	s.path = []protocol.PathSegment{{ID: rootID, Name: rootName}}
	s.expanded[rootID] = struct{}{}
	s.mu.Unlock()

	s.publish(Event{Type: EventPath, FolderID: rootID})
	if err := s.resetAndLoad(ctx, rootID); err != nil {
		logging.Debug("root reload after invalid folder failed",
			zap.String("folder_id", folderID), zap.Error(err))
	}
}
