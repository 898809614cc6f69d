package service

import (
	"sync"
	"sync/atomic"
)

// subscriberBuffer is how many events a subscriber may lag before drops.
const subscriberBuffer = 16

// Event is a change to one session's map state.
type Event struct {
	Session string // session id
	Action  string // "click", "hover", "leave", "resize", "zoom", "groups", "clear"
	ID      int    // prefecture id, when the action has one
}

// Subscription receives the events published for one session.
type Subscription struct {
	C <-chan Event

	ch      chan Event
	session string
	bus     *EventBus
	once    sync.Once
	dropped atomic.Int64
}

// Dropped counts events discarded because C was full.
func (s *Subscription) Dropped() int64 { return s.dropped.Load() }

// Close detaches the subscription and closes C. Safe to call twice.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.bus.remove(s)
		close(s.ch)
	})
}

// EventBus fans map events out to the subscriptions of the same session.
// Publish never blocks: a full subscriber misses the event.
type EventBus struct {
	mu   sync.RWMutex
	subs map[string]map[*Subscription]struct{}
}

// NewEventBus creates an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[string]map[*Subscription]struct{})}
}

// Subscribe starts receiving events for session.
func (b *EventBus) Subscribe(session string) *Subscription {
	ch := make(chan Event, subscriberBuffer)
	s := &Subscription{C: ch, ch: ch, session: session, bus: b}

	b.mu.Lock()
	set, ok := b.subs[session]
	if !ok {
		set = make(map[*Subscription]struct{})
		b.subs[session] = set
	}
	set[s] = struct{}{}
	b.mu.Unlock()
	return s
}

// Publish delivers e to every subscription of e.Session.
func (b *EventBus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for s := range b.subs[e.Session] {
		select {
		case s.ch <- e:
		default:
			s.dropped.Add(1)
		}
	}
}

// Subscribers returns the number of open subscriptions for session.
func (b *EventBus) Subscribers(session string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[session])
}

func (b *EventBus) remove(s *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	set := b.subs[s.session]
	delete(set, s)
	if len(set) == 0 {
		delete(b.subs, s.session)
	}
}
