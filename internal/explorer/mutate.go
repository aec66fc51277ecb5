package explorer

import (
	"context"
	"errors"

	"github.com/webszilla/work-zilla-explorer/internal/gateway"
	"github.com/webszilla/work-zilla-explorer/internal/metrics"
	"github.com/webszilla/work-zilla-explorer/internal/protocol"
)

// ErrMutationPending is returned when a mutation is already in flight for the
// same entry. This is a single-flight-per-entry rule, not a global lock;
// unrelated entries may be mutated concurrently.
var ErrMutationPending = errors.New("a mutation is already pending for this entry")

func (s *Session) beginMutation(entryID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[entryID]; busy {
		return false
	}
	s.inflight[entryID] = struct{}{}
	return true
}

func (s *Session) endMutation(entryID string) {
	s.mu.Lock()
	delete(s.inflight, entryID)
	s.mu.Unlock()
}

// MutationPending reports whether a mutation is in flight for the entry.
func (s *Session) MutationPending(entryID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, busy := s.inflight[entryID]
	return busy
}

// CreateFolder creates a folder inside the currently displayed folder and
// reloads it on success.
func (s *Session) CreateFolder(ctx context.Context, name string) error {
	s.mu.Lock()
	parentID := s.currentFolderLocked()
	userID := s.scope.UserID
	s.mu.Unlock()

	err := s.gw.CreateFolder(ctx, name, parentID, userID)
	metrics.RecordMutation("create_folder", err == nil)
	if err != nil {
		s.publishError(err)
		return err
	}
	return s.reloadCurrent(ctx)
}

// Rename renames an entry. On success the currently displayed folder is
// reloaded and the quota refreshed. A file_not_found failure also reloads:
// the item disappeared concurrently and the view must self-heal.
func (s *Session) Rename(ctx context.Context, entry protocol.Entry, newName string) error {
	if !s.beginMutation(entry.ID) {
		return ErrMutationPending
	}
	defer s.endMutation(entry.ID)

	s.mu.Lock()
	userID := s.scope.UserID
	s.mu.Unlock()

	var err error
	if entry.IsFolder() {
		err = s.gw.RenameFolder(ctx, entry.ID, newName, userID)
	} else {
		err = s.gw.RenameFile(ctx, entry.ID, newName, userID)
	}
	metrics.RecordMutation("rename", err == nil)
	if err != nil {
		if gateway.IsKind(err, gateway.KindFileNotFound) {
			s.reloadCurrent(ctx)
		}
		s.publishError(err)
		return err
	}

	if rerr := s.reloadCurrent(ctx); rerr != nil {
		return rerr
	}
	return s.RefreshQuota(ctx)
}

// Move moves an entry into a target folder. Only the folder actually being
// viewed is reloaded — the move's source may differ, but it is the only tree
// region the user can see.
func (s *Session) Move(ctx context.Context, entry protocol.Entry, targetFolderID string) error {
	if !s.beginMutation(entry.ID) {
		return ErrMutationPending
	}
	defer s.endMutation(entry.ID)

	s.mu.Lock()
	userID := s.scope.UserID
	s.mu.Unlock()

	var err error
	if entry.IsFolder() {
		err = s.gw.MoveFolder(ctx, entry.ID, targetFolderID, userID)
	} else {
		err = s.gw.MoveFile(ctx, entry.ID, targetFolderID, userID)
	}
	metrics.RecordMutation("move", err == nil)
	if err != nil {
		s.publishError(err)
		return err
	}

	if rerr := s.reloadCurrent(ctx); rerr != nil {
		return rerr
	}
	return s.RefreshQuota(ctx)
}

// Delete deletes an entry, reloads the currently displayed folder, and
// refreshes the quota.
func (s *Session) Delete(ctx context.Context, entry protocol.Entry) error {
	if !s.beginMutation(entry.ID) {
		return ErrMutationPending
	}
	defer s.endMutation(entry.ID)

	s.mu.Lock()
	userID := s.scope.UserID
	s.mu.Unlock()

	var err error
	if entry.IsFolder() {
		err = s.gw.DeleteFolder(ctx, entry.ID, userID)
	} else {
		err = s.gw.DeleteFile(ctx, entry.ID, userID)
	}
	metrics.RecordMutation("delete", err == nil)
	if err != nil {
		s.publishError(err)
		return err
	}

	if rerr := s.reloadCurrent(ctx); rerr != nil {
		return rerr
	}
	return s.RefreshQuota(ctx)
}

func (s *Session) reloadCurrent(ctx context.Context) error {
	s.mu.Lock()
	folderID := s.currentFolderLocked()
	s.mu.Unlock()
	if folderID == "" {
		return nil
	}
	return s.resetAndLoad(ctx, folderID)
}
