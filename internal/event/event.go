// Package event carries host notifications to the components that react
// to them.
//
// The host publishes typed events (a file was modified on disk, the user
// edited a document live) onto a Bus. Consumers subscribe to the kinds they
// care about and receive them on a channel, so they can be driven by a real
// host or by a test without either knowing about the other.
package event

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// ErrBusClosed is returned when publishing to a closed bus.
var ErrBusClosed = errors.New("event bus is closed")

// Kind identifies an event type.
type Kind uint8

const (
	// FileModified is published when a document's content changed on disk.
	FileModified Kind = iota + 1

	// LiveEdit is published when the user types into an open document.
	LiveEdit
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case FileModified:
		return "file-modified"
	case LiveEdit:
		return "live-edit"
	default:
		return "unknown"
	}
}

// Event is one host notification.
type Event struct {
	Kind Kind

	// Path identifies the document. A LiveEdit may leave it empty when the
	// host cannot tell which document changed.
	Path string

	Time time.Time
}

// Modified builds a FileModified event.
func Modified(path string) Event {
	return Event{Kind: FileModified, Path: path, Time: time.Now()}
}

// Edited builds a LiveEdit event.
func Edited(path string) Event {
	return Event{Kind: LiveEdit, Path: path, Time: time.Now()}
}

// Stats counts bus traffic.
type Stats struct {
	Published uint64
	Delivered uint64
	Dropped   uint64
}

// Subscription receives events of selected kinds.
type Subscription struct {
	bus   *Bus
	id    uint64
	kinds map[Kind]bool
	ch    chan Event
	once  sync.Once
}

// C returns the delivery channel. It is closed on Unsubscribe or bus Close.
func (s *Subscription) C() <-chan Event {
	return s.ch
}

// Unsubscribe stops delivery and closes the channel.
func (s *Subscription) Unsubscribe() {
	s.bus.remove(s.id)
}

func (s *Subscription) close() {
	s.once.Do(func() { close(s.ch) })
}

func (s *Subscription) wants(k Kind) bool {
	return len(s.kinds) == 0 || s.kinds[k]
}

// Bus fans events out to subscriptions. Delivery never blocks the
// publisher: an event that does not fit a subscriber's buffer is dropped
// for that subscriber and counted.
type Bus struct {
	mu     sync.RWMutex
	subs   map[uint64]*Subscription
	nextID uint64
	closed bool

	published atomic.Uint64
	delivered atomic.Uint64
	dropped   atomic.Uint64
}

// NewBus creates an open bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[uint64]*Subscription)}
}

// Subscribe returns a subscription with the given buffer size for the listed
// kinds. No kinds means every kind.
func (b *Bus) Subscribe(buffer int, kinds ...Kind) *Subscription {
	if buffer < 1 {
		buffer = 1
	}
	sub := &Subscription{
		bus:   b,
		kinds: make(map[Kind]bool, len(kinds)),
		ch:    make(chan Event, buffer),
	}
	for _, k := range kinds {
		sub.kinds[k] = true
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		sub.close()
		return sub
	}
	sub.id = b.nextID
	b.nextID++
	b.subs[sub.id] = sub
	return sub
}

// Publish delivers ev to every matching subscription.
func (b *Bus) Publish(ev Event) error {
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrBusClosed
	}
	b.published.Add(1)

	for _, sub := range b.subs {
		if !sub.wants(ev.Kind) {
			continue
		}
		select {
		case sub.ch <- ev:
			b.delivered.Add(1)
		default:
			b.dropped.Add(1)
		}
	}
	return nil
}

// Close closes every subscription channel. Further publishes fail.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subs {
		sub.close()
		delete(b.subs, id)
	}
}

// Stats returns traffic counters.
func (b *Bus) Stats() Stats {
	return Stats{
		Published: b.published.Load(),
		Delivered: b.delivered.Load(),
		Dropped:   b.dropped.Load(),
	}
}

// Subscribers returns the number of open subscriptions.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if sub, ok := b.subs[id]; ok {
		sub.close()
		delete(b.subs, id)
	}
}
