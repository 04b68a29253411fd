// Package events fans desktop events out to subscribers such as the
// WebSocket stream.
package events

import (
	"sort"
	"sync"
	"time"

	"github.com/GriffinCanCode/retrodesk/internal/shared/types"
)

// Handler receives published events. Handlers run on the publisher's
// goroutine and must not block.
type Handler func(types.Event)

// Bus is a synchronous publish/subscribe hub. A nil *Bus drops everything.
type Bus struct {
	mu   sync.RWMutex
	next int
	subs map[int]Handler
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{subs: make(map[int]Handler)}
}

// Subscribe registers h and returns a function that removes it
func (b *Bus) Subscribe(h Handler) func() {
	if b == nil || h == nil {
		return func() {}
	}

	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = h
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// Publish stamps the event time if missing and delivers it to every
// subscriber in subscription order
func (b *Bus) Publish(evt types.Event) {
	if b == nil {
		return
	}
	if evt.Time.IsZero() {
		evt.Time = time.Now()
	}

	b.mu.RLock()
	ids := make([]int, 0, len(b.subs))
	for id := range b.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	handlers := make([]Handler, 0, len(ids))
	for _, id := range ids {
		handlers = append(handlers, b.subs[id])
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(evt)
	}
}

// Len returns the number of subscribers
func (b *Bus) Len() int {
	if b == nil {
		return 0
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
