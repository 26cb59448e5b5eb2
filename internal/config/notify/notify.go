// Package notify delivers directory settings changes to observers.
//
// Every key the applicator sets or erases on a session is published as a
// Change, as are cache invalidations and reloads. Delivery is synchronous,
// on the caller's goroutine, after the notifier's lock is released.
package notify

import (
	"sync"
)

// ChangeType represents the type of settings change.
type ChangeType int

const (
	// ChangeSet indicates a key was set on a session.
	ChangeSet ChangeType = iota

	// ChangeErase indicates a key was erased from a session.
	ChangeErase

	// ChangeInvalidate indicates the resolved settings cache was cleared.
	ChangeInvalidate

	// ChangeReload indicates every open session was re-applied.
	ChangeReload
)

// String returns the change type name.
func (c ChangeType) String() string {
	switch c {
	case ChangeSet:
		return "set"
	case ChangeErase:
		return "erase"
	case ChangeInvalidate:
		return "invalidate"
	case ChangeReload:
		return "reload"
	default:
		return "unknown"
	}
}

// Change represents a settings change event.
type Change struct {
	// Type is the type of change.
	Type ChangeType

	// Target is the file path of the affected session.
	// Empty for invalidate and reload events.
	Target string

	// Key is the settings key. Empty for invalidate and reload events.
	Key string

	// OldValue is the session's previous value (nil if unset).
	OldValue any

	// NewValue is the applied value (nil for erases).
	NewValue any
}

// Observer is called when a change occurs.
type Observer func(change Change)

// Subscription represents an active observer subscription.
type Subscription struct {
	id       uint64
	notifier *Notifier
}

// Unsubscribe removes this subscription.
func (s *Subscription) Unsubscribe() {
	if s.notifier != nil {
		s.notifier.unsubscribe(s.id)
	}
}

// Notifier manages change subscriptions.
type Notifier struct {
	mu sync.RWMutex

	// Observers that receive all changes
	globalObservers map[uint64]Observer

	// Observers keyed by session file path
	targetObservers map[string]map[uint64]Observer

	nextID uint64
	closed bool
}

// New creates a new Notifier.
func New() *Notifier {
	return &Notifier{
		globalObservers: make(map[uint64]Observer),
		targetObservers: make(map[string]map[uint64]Observer),
	}
}

// Subscribe registers an observer for all changes.
func (n *Notifier) Subscribe(observer Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.globalObservers[id] = observer

	return &Subscription{id: id, notifier: n}
}

// SubscribeTarget registers an observer for changes applied to one file.
// Invalidate and reload events are delivered too.
func (n *Notifier) SubscribeTarget(path string, observer Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++

	if n.targetObservers[path] == nil {
		n.targetObservers[path] = make(map[uint64]Observer)
	}
	n.targetObservers[path][id] = observer

	return &Subscription{id: id, notifier: n}
}

// Notify sends a change notification to all relevant observers.
func (n *Notifier) Notify(change Change) {
	n.mu.RLock()
	if n.closed {
		n.mu.RUnlock()
		return
	}

	var observers []Observer
	for _, obs := range n.globalObservers {
		observers = append(observers, obs)
	}

	if change.Type == ChangeInvalidate || change.Type == ChangeReload {
		// Broadcast events reach every target observer.
		for _, obs := range n.targetObservers {
			for _, o := range obs {
				observers = append(observers, o)
			}
		}
	} else {
		for _, o := range n.targetObservers[change.Target] {
			observers = append(observers, o)
		}
	}
	n.mu.RUnlock()

	// Call observers outside the lock
	for _, obs := range observers {
		obs(change)
	}
}

// NotifyInvalidate is a convenience method for cache invalidation.
func (n *Notifier) NotifyInvalidate() {
	n.Notify(Change{Type: ChangeInvalidate})
}

// NotifyReload is a convenience method for reload events.
func (n *Notifier) NotifyReload() {
	n.Notify(Change{Type: ChangeReload})
}

// Close stops delivery. It is safe to call Close multiple times.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = true
}

// unsubscribe removes an observer by ID.
func (n *Notifier) unsubscribe(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	delete(n.globalObservers, id)

	for path, observers := range n.targetObservers {
		delete(observers, id)
		if len(observers) == 0 {
			delete(n.targetObservers, path)
		}
	}
}

// Batch collects changes and delivers them together on Commit.
type Batch struct {
	notifier *Notifier
	changes  []Change
	mu       sync.Mutex
}

// NewBatch creates a new batch for collecting changes.
func (n *Notifier) NewBatch() *Batch {
	return &Batch{notifier: n}
}

// Add adds a change to the batch.
func (b *Batch) Add(change Change) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.changes = append(b.changes, change)
}

// Commit sends all batched changes to observers in the order they were added.
func (b *Batch) Commit() {
	b.mu.Lock()
	changes := b.changes
	b.changes = nil
	b.mu.Unlock()

	for _, change := range changes {
		b.notifier.Notify(change)
	}
}
