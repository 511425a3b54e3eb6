package auth

import (
	"sync"
	"time"
)

// Event types published on auth state changes.
const (
	EventRegistered = "registered"
	EventLoggedIn   = "logged_in"
)

type Event struct {
	Type     string
	Username string
	At       time.Time
}

// Broadcaster is an explicit auth-change subscription surface: callers
// subscribe and get back an unsubscribe func. It replaces a process-wide
// handler registry.
type Broadcaster struct {
	mu   sync.RWMutex
	next int
	subs map[int]func(Event)
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]func(Event))}
}

func (b *Broadcaster) Subscribe(fn func(Event)) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	b.subs[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

func (b *Broadcaster) Publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, fn := range b.subs {
		fn(ev)
	}
}
