// Package events fans ledger activity out to any number of subscribers.
package events

import (
	"fmt"
	"strings"
	"sync"
)

// Prefix marks the event handler messages that are published to
// subscribers. Everything else is only logged.
const Prefix = "viewer:"

// messageBuffer is how many messages a slow subscriber can fall behind
// before messages to it are dropped.
const messageBuffer = 100

// Events maintains a mapping of unique id and channels so goroutines
// can subscribe and receive events.
type Events struct {
	m  map[string]chan string
	mu sync.RWMutex
}

// New constructs an events for subscribing and receiving events.
func New() *Events {
	return &Events{
		m: make(map[string]chan string),
	}
}

// Shutdown closes and removes all channels that were provided by
// the call to Subscribe.
func (evt *Events) Shutdown() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, ch := range evt.m {
		delete(evt.m, id)
		close(ch)
	}
}

// Subscribe takes a unique id and returns a channel that can be used
// to receive events.
func (evt *Events) Subscribe(id string) <-chan string {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	ch, exists := evt.m[id]
	if exists {
		return ch
	}

	ch = make(chan string, messageBuffer)
	evt.m[id] = ch

	return ch
}

// Unsubscribe closes and removes the channel that was provided by
// the call to Subscribe.
func (evt *Events) Unsubscribe(id string) error {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	ch, exists := evt.m[id]
	if !exists {
		return fmt.Errorf("id %q does not exist", id)
	}

	delete(evt.m, id)
	close(ch)

	return nil
}

// Subscribers returns the number of open subscriptions.
func (evt *Events) Subscribers() int {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	return len(evt.m)
}

// Send signals a message to every subscribed channel. Send will not block
// waiting for a receiver on any given channel.
func (evt *Events) Send(s string) {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	for _, ch := range evt.m {
		select {
		case ch <- s:
		default:
		}
	}
}

// Handler has the shape of the ledger event handler. Messages carrying the
// prefix are formatted and sent to subscribers with the prefix removed.
func (evt *Events) Handler(v string, args ...any) {
	if !strings.HasPrefix(v, Prefix) {
		return
	}

	s := fmt.Sprintf(v, args...)
	evt.Send(strings.TrimSpace(strings.TrimPrefix(s, Prefix)))
}
