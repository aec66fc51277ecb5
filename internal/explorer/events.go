package explorer

import "sync"

// EventType identifies which part of the session state changed.
type EventType string

const (
	EventScope   EventType = "scope"
	EventPath    EventType = "path"
	EventListing EventType = "listing"
	EventTree    EventType = "tree"
	EventSearch  EventType = "search"
	EventUploads EventType = "uploads"
	EventQuota   EventType = "quota"
	EventError   EventType = "error"
)

// Event is a state-change notification. The session publishes one event after
// each settled state transition; consumers re-read the snapshot they care
// about. Events carry no payload beyond identity on purpose.
type Event struct {
	Type     EventType
	FolderID string
	Message  string
}

// Broadcaster fans session events out to subscribers.
type Broadcaster struct {
	mu          sync.RWMutex
	subscribers map[chan Event]struct{}
}

// NewBroadcaster creates a new event broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[chan Event]struct{}),
	}
}

// Subscribe adds a new subscriber and returns its event channel.
// The caller must call Unsubscribe when done.
func (b *Broadcaster) Subscribe() chan Event {
	ch := make(chan Event, 64)
	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Broadcaster) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	delete(b.subscribers, ch)
	close(ch)
	b.mu.Unlock()
}

// Publish sends an event to all subscribers. Non-blocking: drops events
// for slow consumers.
func (b *Broadcaster) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subscribers {
		select {
		case ch <- event:
		default:
			// Drop event for slow consumer
		}
	}
}

// Count returns the current number of subscribers.
func (b *Broadcaster) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
