package explorer

import (
	"context"

	"go.uber.org/zap"

	"github.com/webszilla/work-zilla-explorer/internal/logging"
	"github.com/webszilla/work-zilla-explorer/internal/protocol"
)

// SetUser switches the explorer to another member's files (org admins only;
// empty means self). A user change always clears the device selection and
// rebuilds everything from that user's root. The quota snapshot is refreshed,
// never zeroed.
func (s *Session) SetUser(ctx context.Context, userID string) error {
	s.mu.Lock()
	s.scope.UserID = userID
	s.scope.DeviceID = ""
	s.mu.Unlock()

	if err := s.loadScopeRoot(ctx); err != nil {
		return err
	}
	return s.RefreshQuota(ctx)
}

// SetDevice switches to a device namespace within the current user's files.
// The device root is the child of the absolute root whose name equals the
// device id. Quota is per-user and is left untouched.
func (s *Session) SetDevice(ctx context.Context, deviceID string) error {
	s.mu.Lock()
	s.scope.DeviceID = deviceID
	s.mu.Unlock()

	return s.loadScopeRoot(ctx)
}

// loadScopeRoot fetches the absolute root for the active user, derives the
// scope root (device folder when one is selected), and rebuilds Path, the
// tree cache, and the expansion set from scratch.
func (s *Session) loadScopeRoot(ctx context.Context) error {
	s.mu.Lock()
	scope := s.scope
	s.loadGen++
	gen := s.loadGen
	s.mu.Unlock()

	resp, err := s.gw.Root(ctx, scope.UserID)
	if err != nil {
		s.publishError(err)
		return err
	}

	rootID, rootName := resp.FolderID, "Home"
	if scope.DeviceID != "" {
		found := false
		for _, it := range resp.Items {
			if it.IsFolder() && it.Name == scope.DeviceID {
				rootID, rootName = it.ID, it.Name
				found = true
				break
			}
		}
		if !found {
			// No folder named after the device: fall back to the absolute
			// root rather than erroring.
			logging.Warn("device folder not found, using absolute root",
				zap.String("device_id", scope.DeviceID))
		}
	}

	s.mu.Lock()
	if gen != s.loadGen {
		s.mu.Unlock()
		return nil
	}
	s.absRootID = resp.FolderID
	s.rootID, s.rootName = rootID, rootName
	s.tree = make(map[string][]protocol.Entry)
	s.expanded = map[string]struct{}{rootID: {}}
	s.parents = make(map[string]string)
	s.names = map[string]string{rootID: rootName}
	s.path = []protocol.PathSegment{{ID: rootID, Name: rootName}}
	s.searchGen++
	s.searchQuery = ""
	s.searchResults = nil

	if rootID == resp.FolderID {
		s.applyListingLocked(rootID, resp.Items, resp.Pagination, true)
		s.mu.Unlock()
		s.publish(Event{Type: EventScope})
		s.publish(Event{Type: EventPath, FolderID: rootID})
		s.publish(Event{Type: EventListing, FolderID: rootID})
		s.publish(Event{Type: EventTree, FolderID: rootID})
		return nil
	}
	s.mu.Unlock()

	s.publish(Event{Type: EventScope})
	s.publish(Event{Type: EventPath, FolderID: rootID})
	return s.resetAndLoad(ctx, rootID)
}

// OrgUsers lists the organization members the scope can be switched to.
func (s *Session) OrgUsers(ctx context.Context) ([]protocol.OrgUser, error) {
	return s.gw.OrgUsers(ctx)
}

// OrgDevices lists the devices registered for the active user.
func (s *Session) OrgDevices(ctx context.Context) ([]protocol.OrgDevice, error) {
	s.mu.Lock()
	userID := s.scope.UserID
	s.mu.Unlock()
	return s.gw.OrgDevices(ctx, userID)
}
