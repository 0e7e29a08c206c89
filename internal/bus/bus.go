package bus

import (
	"strings"
	"sync"
	"time"
)

// Bus is an in-process publish/subscribe event bus with namespace filtering.
//
// Two subscription modes exist: lossless subscribers (the dispatcher) apply
// backpressure to publishers so realtime events are never dropped, while
// lossy subscribers (UI change notifications) drop when their buffer is full.
type Bus struct {
	mu   sync.RWMutex
	subs map[int]*subscription
	next int
}

type subscription struct {
	namespace string
	ch        chan Event
	lossy     bool
	closed    chan struct{}
	once      sync.Once
}

// New creates a new event bus.
func New() *Bus {
	return &Bus{
		subs: make(map[int]*subscription),
	}
}

// Publish sends an event to all subscribers whose namespace is a prefix of
// event.Kind. Blocks on full lossless subscribers; drops on full lossy ones.
func (b *Bus) Publish(evt Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		if !strings.HasPrefix(evt.Kind, sub.namespace) {
			continue
		}
		if sub.lossy {
			select {
			case sub.ch <- evt:
			default:
			}
			continue
		}
		// Unsubscribing closes sub.closed before taking the bus lock, so a
		// publisher parked here can never deadlock against the cancel func.
		select {
		case sub.ch <- evt:
		case <-sub.closed:
		}
	}
}

// Emit publishes kind/payload stamped with the current time.
func (b *Bus) Emit(kind string, payload any) {
	b.Publish(Event{Kind: kind, At: time.Now(), Payload: payload})
}

// Subscribe returns a lossless channel receiving events whose kind starts
// with namespace, plus an unsubscribe function. Publishers block when the
// buffer is full, so delivery order and completeness are preserved.
func (b *Bus) Subscribe(namespace string, bufSize int) (<-chan Event, func()) {
	return b.subscribe(namespace, bufSize, false)
}

// SubscribeLossy is like Subscribe but drops events when the buffer is full.
// Intended for observers that only need "something changed" signals.
func (b *Bus) SubscribeLossy(namespace string, bufSize int) (<-chan Event, func()) {
	return b.subscribe(namespace, bufSize, true)
}

func (b *Bus) subscribe(namespace string, bufSize int, lossy bool) (<-chan Event, func()) {
	ch := make(chan Event, bufSize)
	sub := &subscription{namespace: namespace, ch: ch, lossy: lossy, closed: make(chan struct{})}
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = sub
	b.mu.Unlock()

	return ch, func() {
		sub.once.Do(func() { close(sub.closed) })
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}
