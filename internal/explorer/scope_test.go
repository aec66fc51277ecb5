package explorer

import (
	"context"
	"testing"
	"time"

	"github.com/webszilla/work-zilla-explorer/internal/protocol"
)

// deviceServer mimics a per-device layout: the absolute root holds one folder
// per registered device.
func deviceServer() *fakeServer {
	fs := newFakeServer()
	fs.addFolder("root", "d1", "dev-laptop-01")
	fs.addFolder("root", "d2", "dev-phone-02")
	fs.addFile("d1", "f1", "notes.txt", 64)
	return fs
}

func TestSetDeviceScopesToDeviceFolder(t *testing.T) {
	fs := deviceServer()
	s, _, cleanup := newTestSession(t, fs, Scope{}, Options{})
	defer cleanup()
	ctx := context.Background()
	s.Start(ctx)

	if err := s.SetDevice(ctx, "dev-laptop-01"); err != nil {
		t.Fatal(err)
	}
	if got := s.RootID(); got != "d1" {
		t.Fatalf("scope root = %q, want d1", got)
	}
	assertPath(t, s, "d1")
	assertTerminalConsistent(t, s)
	items := s.Listing().Items
	if len(items) != 1 || items[0].Name != "notes.txt" {
		t.Errorf("device listing wrong: %+v", items)
	}

	// The sibling device's folder must be unreachable via the path.
	for _, seg := range s.Path() {
		if seg.ID == "d2" {
			t.Error("other device's folder appeared on the path")
		}
	}
}

func TestSetDeviceUnknownFallsBackToAbsoluteRoot(t *testing.T) {
	fs := deviceServer()
	s, _, cleanup := newTestSession(t, fs, Scope{}, Options{})
	defer cleanup()
	ctx := context.Background()
	s.Start(ctx)

	if err := s.SetDevice(ctx, "dev-ghost-99"); err != nil {
		t.Fatal(err)
	}
	if got := s.RootID(); got != "root" {
		t.Fatalf("scope root = %q, want absolute root", got)
	}
	assertPath(t, s, "root")
}

func TestSetDeviceDoesNotTouchQuota(t *testing.T) {
	fs := deviceServer()
	fs.status = protocol.StatusResponse{TotalAllowedStorageGB: 100, UsedStorageGB: 30}

	s, _, cleanup := newTestSession(t, fs, Scope{}, Options{})
	defer cleanup()
	ctx := context.Background()
	s.Start(ctx)

	before := countRequests(fs, "GET /status")
	if err := s.SetDevice(ctx, "dev-laptop-01"); err != nil {
		t.Fatal(err)
	}
	if after := countRequests(fs, "GET /status"); after != before {
		t.Error("device change must not refresh the quota")
	}
	if q := s.Quota(); q.StorageUsedGB != 30 {
		t.Errorf("quota snapshot changed across device switch: %+v", q)
	}
}

func TestSetUserClearsDeviceAndRebuilds(t *testing.T) {
	fs := deviceServer()
	s, _, cleanup := newTestSession(t, fs, Scope{}, Options{})
	defer cleanup()
	ctx := context.Background()
	s.Start(ctx)

	s.SetDevice(ctx, "dev-laptop-01")
	s.Open(ctx, folderEntry("d1", "dev-laptop-01"))

	statusBefore := countRequests(fs, "GET /status")
	if err := s.SetUser(ctx, "user-17"); err != nil {
		t.Fatal(err)
	}

	scope := s.Scope()
	if scope.UserID != "user-17" || scope.DeviceID != "" {
		t.Fatalf("scope = %+v, want user-17 with no device", scope)
	}
	if got := s.RootID(); got != "root" {
		t.Errorf("scope root = %q, want absolute root after user switch", got)
	}
	assertPath(t, s, "root")
	assertTerminalConsistent(t, s)

	// A user change refreshes the quota for the new user.
	if after := countRequests(fs, "GET /status"); after != statusBefore+1 {
		t.Errorf("user change issued %d quota refreshes, want 1", after-statusBefore)
	}
	// Old user's tree cache is gone.
	if _, ok := s.CachedChildren("d1"); ok {
		t.Error("previous scope's cache survived the user switch")
	}
}

func TestScopeChangeClearsSearch(t *testing.T) {
	fs := deviceServer()
	fs.search["notes"] = []protocol.SearchResult{{FileID: "f1", Filename: "notes.txt"}}

	s, _, cleanup := newTestSession(t, fs, Scope{}, Options{})
	defer cleanup()
	ctx := context.Background()
	s.Start(ctx)

	s.SetSearchQuery("notes")
	if !waitFor(t, time.Second, func() bool { return len(s.SearchResults()) == 1 }) {
		t.Fatal("search never completed")
	}

	if err := s.SetUser(ctx, "user-17"); err != nil {
		t.Fatal(err)
	}
	if len(s.SearchResults()) != 0 {
		t.Error("search results survived a scope change")
	}
}
