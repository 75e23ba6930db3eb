// Package notify delivers option change notifications.
//
// Observers subscribe either to every change or to a section/field path.
// A path subscription also receives changes to fields below it, so
// subscribing to "headingGaps" observes "headingGaps.beforeSubHeadings".
package notify

import (
	"strings"
	"sync"
)

// Kind is the kind of change.
type Kind int

const (
	// KindSet indicates a field was assigned.
	KindSet Kind = iota

	// KindReset indicates a field was returned to its default.
	KindReset

	// KindReload indicates the whole option set was reloaded.
	KindReload
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindSet:
		return "set"
	case KindReset:
		return "reset"
	case KindReload:
		return "reload"
	default:
		return "unknown"
	}
}

// Change describes one option change.
type Change struct {
	// Path is the dot-separated field path. Empty for reloads.
	Path string

	Kind Kind

	// Old and New are the raw string values before and after the change.
	Old string
	New string

	// Source names who made the change, e.g. "settings" or "cli".
	Source string
}

// Observer receives changes.
type Observer func(change Change)

// Subscription is an active observer registration.
type Subscription struct {
	id       uint64
	notifier *Notifier
}

// Unsubscribe removes the observer. It is safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.notifier == nil {
		return
	}
	s.notifier.remove(s.id)
	s.notifier = nil
}

type entry struct {
	path     string
	observer Observer
}

// Notifier fans changes out to observers.
type Notifier struct {
	mu      sync.RWMutex
	entries map[uint64]entry
	nextID  uint64
	closed  bool

	async  bool
	queue  chan Change
	done   chan struct{}
	wg     sync.WaitGroup
	closer sync.Once
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithAsync delivers changes from a background goroutine through a buffer
// of the given size. Non-positive sizes keep delivery synchronous.
func WithAsync(size int) Option {
	return func(n *Notifier) {
		if size > 0 {
			n.async = true
			n.queue = make(chan Change, size)
		}
	}
}

// New creates a Notifier.
func New(opts ...Option) *Notifier {
	n := &Notifier{
		entries: make(map[uint64]entry),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.async {
		n.wg.Add(1)
		go n.run()
	}
	return n
}

// Subscribe observes every change.
func (n *Notifier) Subscribe(observer Observer) *Subscription {
	return n.SubscribePath("", observer)
}

// SubscribePath observes changes at path and below it.
func (n *Notifier) SubscribePath(path string, observer Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.entries[id] = entry{path: path, observer: observer}
	return &Subscription{id: id, notifier: n}
}

// Notify delivers a change. Changes sent after Close are dropped.
func (n *Notifier) Notify(change Change) {
	n.mu.RLock()
	closed := n.closed
	n.mu.RUnlock()
	if closed {
		return
	}

	if n.async {
		select {
		case n.queue <- change:
		case <-n.done:
		}
		return
	}
	n.deliver(change)
}

// Close stops delivery and waits for queued changes to drain.
func (n *Notifier) Close() {
	n.closer.Do(func() {
		n.mu.Lock()
		n.closed = true
		n.mu.Unlock()

		close(n.done)
		n.wg.Wait()
	})
}

func (n *Notifier) remove(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.entries, id)
}

func (n *Notifier) deliver(change Change) {
	n.mu.RLock()
	var observers []Observer
	for _, e := range n.entries {
		if matches(e.path, change.Path) {
			observers = append(observers, e.observer)
		}
	}
	n.mu.RUnlock()

	// Observers run outside the lock so they may subscribe or unsubscribe.
	for _, obs := range observers {
		obs(change)
	}
}

func (n *Notifier) run() {
	defer n.wg.Done()
	for {
		select {
		case change := <-n.queue:
			n.deliver(change)
		case <-n.done:
			for {
				select {
				case change := <-n.queue:
					n.deliver(change)
				default:
					return
				}
			}
		}
	}
}

// matches reports whether a subscription at sub observes a change at path.
// Reloads (empty path) reach every subscriber.
func matches(sub, path string) bool {
	if sub == "" || path == "" || sub == path {
		return true
	}
	return strings.HasPrefix(path, sub+".")
}
