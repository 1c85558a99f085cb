package events

import (
	"context"
	"log/slog"
	"sync"
)

const subscriberBuffer = 16

// MemoryBus delivers events to subscribers in the same process
type MemoryBus struct {
	mu          sync.RWMutex
	subscribers map[int]chan Event
	nextID      int
	closed      bool
}

// NewMemoryBus creates a new in-process bus
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		subscribers: make(map[int]chan Event),
	}
}

// Publish sends the event to every subscriber without blocking.
// A subscriber whose buffer is full misses the event.
func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.subscribers {
		select {
		case ch <- event:
		default:
			slog.Warn("dropping event for slow subscriber", "subscriber", id, "type", event.Type)
		}
	}
	return nil
}

// Subscribe registers a subscriber until ctx is done
func (b *MemoryBus) Subscribe(ctx context.Context) (<-chan Event, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	if b.closed {
		close(ch)
		return ch, nil
	}

	id := b.nextID
	b.nextID++
	b.subscribers[id] = ch

	go func() {
		<-ctx.Done()
		b.unsubscribe(id)
	}()

	return ch, nil
}

// Subscribers returns the number of active subscribers
func (b *MemoryBus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// HealthCheck always succeeds for the in-process bus
func (b *MemoryBus) HealthCheck(ctx context.Context) error {
	return nil
}

// Close closes every subscriber channel
func (b *MemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
	}
	return nil
}

func (b *MemoryBus) unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subscribers[id]; ok {
		close(ch)
		delete(b.subscribers, id)
	}
}
