// Package explorer implements the client-held model of a remote hierarchical
// file store: a partially-loaded multi-root tree, the breadcrumb path into
// it, paginated listings, live search, mutations, a sequential upload queue,
// and the quota snapshot. One Session is instantiated per active scope and
// owns all of this state; there are no package-level caches.
package explorer

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/webszilla/work-zilla-explorer/internal/gateway"
	"github.com/webszilla/work-zilla-explorer/internal/logging"
	"github.com/webszilla/work-zilla-explorer/internal/protocol"
)

// Session is one explorer instance. All exported methods are safe for
// concurrent use; remote calls run outside the state lock and stale
// responses are dropped by generation stamping.
type Session struct {
	gw     *gateway.Client
	events *Broadcaster
	opts   Options

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	scope     Scope
	absRootID string // absolute root for the active user
	rootID    string // scope root (device-derived, falls back to absolute)
	rootName  string
	path      []protocol.PathSegment
	tree      map[string][]protocol.Entry
	expanded  map[string]struct{}
	parents   map[string]string // child id -> parent folder id, from cached listings
	names     map[string]string // folder id -> display name
	listing   ListingPage
	loadGen   uint64

	searchGen     uint64
	searchTimer   *time.Timer
	searchQuery   string
	searchResults []protocol.SearchResult

	inflight map[string]struct{} // entry ids with a pending mutation

	quota       Quota
	limitBanner bool

	uploads      []*UploadTask
	uploadJobs   chan uploadJob
	uploadNextID int64
	workerDone   chan struct{}
	closed       bool
}

// NewSession creates a session rooted at the given scope. Call Start to load
// the initial root listing.
func NewSession(gw *gateway.Client, scope Scope, opts Options) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		gw:         gw,
		events:     NewBroadcaster(),
		opts:       opts.withDefaults(),
		ctx:        ctx,
		cancel:     cancel,
		scope:      scope,
		tree:       make(map[string][]protocol.Entry),
		expanded:   make(map[string]struct{}),
		parents:    make(map[string]string),
		names:      make(map[string]string),
		inflight:   make(map[string]struct{}),
		uploadJobs: make(chan uploadJob, 256),
		workerDone: make(chan struct{}),
	}
	go s.uploadWorker()
	return s
}

// Start loads the root listing for the current scope.
func (s *Session) Start(ctx context.Context) error {
	if err := s.loadScopeRoot(ctx); err != nil {
		return err
	}
	return s.RefreshQuota(ctx)
}

// Close discards all in-memory state and stops the upload worker. Nothing is
// persisted client-side.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.searchTimer != nil {
		s.searchTimer.Stop()
	}
	s.mu.Unlock()

	s.cancel()
	close(s.uploadJobs)
	<-s.workerDone

	s.mu.Lock()
	s.tree = make(map[string][]protocol.Entry)
	s.expanded = make(map[string]struct{})
	s.path = nil
	s.listing = ListingPage{}
	s.searchResults = nil
	s.uploads = nil
	s.mu.Unlock()
}

// Events returns the session's event broadcaster.
func (s *Session) Events() *Broadcaster {
	return s.events
}

// Scope returns the active scope.
func (s *Session) Scope() Scope {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scope
}

// RootID returns the scope root folder id.
func (s *Session) RootID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rootID
}

// Path returns a copy of the breadcrumb path, scope root first.
func (s *Session) Path() []protocol.PathSegment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]protocol.PathSegment(nil), s.path...)
}

// CurrentFolderID returns the id of the folder the view is in.
func (s *Session) CurrentFolderID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentFolderLocked()
}

func (s *Session) currentFolderLocked() string {
	if len(s.path) == 0 {
		return ""
	}
	return s.path[len(s.path)-1].ID
}

// Listing returns a copy of the current listing page.
func (s *Session) Listing() ListingPage {
	s.mu.Lock()
	defer s.mu.Unlock()
	page := s.listing
	page.Items = append([]protocol.Entry(nil), s.listing.Items...)
	return page
}

func (s *Session) publish(evt Event) {
	s.events.Publish(evt)
}

func (s *Session) publishError(err error) {
	logging.Warn("operation failed", zap.Error(err))
	s.publish(Event{Type: EventError, Message: err.Error()})
}
