// Package eventbus provides an in-process pub/sub event bus for domain events.
// The engine publishes after each effective change; subscribers process the
// events on a single consumer goroutine, in publish order.
package eventbus

import (
	"context"
	"log"
	"sync"

	"github.com/matthewbaird/lensgrid/internal/event"
)

// Handler processes a domain event. Implementations must be safe for
// concurrent calls from different goroutines.
type Handler interface {
	HandleEvent(ctx context.Context, evt event.DomainEvent) error
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(ctx context.Context, evt event.DomainEvent) error

func (f HandlerFunc) HandleEvent(ctx context.Context, evt event.DomainEvent) error {
	return f(ctx, evt)
}

// Bus is a simple in-process event bus. Events are published to a buffered
// channel and dispatched to all subscribers in a single consumer goroutine.
// Serial dispatch keeps blob writes ordered and avoids concurrent writes
// against SQLite.
type Bus struct {
	mu          sync.RWMutex
	subscribers []namedHandler
	events      chan event.DomainEvent
	done        chan struct{}
	closing     chan struct{}
	stopOnce    sync.Once

	// sendMu is held shared by publishers across the closing check and the
	// send, and exclusively by Stop once closing is closed.
	sendMu sync.RWMutex
}

type namedHandler struct {
	name    string
	handler Handler
}

// New creates a new Bus with the given channel buffer size.
func New(bufSize int) *Bus {
	if bufSize < 1 {
		bufSize = 256
	}
	return &Bus{
		events:  make(chan event.DomainEvent, bufSize),
		done:    make(chan struct{}),
		closing: make(chan struct{}),
	}
}

// Subscribe registers a named handler. Must be called before Start.
func (b *Bus) Subscribe(name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, namedHandler{name: name, handler: h})
}

// Publish enqueues an event. It blocks while the buffer is full, until ctx is
// done or the bus is stopping; in those cases the event is dropped and a
// warning is logged. An event enqueued before Stop returns is always handled.
func (b *Bus) Publish(ctx context.Context, evt event.DomainEvent) {
	b.publish(ctx, evt)
}

// publish reports whether evt was enqueued.
func (b *Bus) publish(ctx context.Context, evt event.DomainEvent) bool {
	b.sendMu.RLock()
	defer b.sendMu.RUnlock()

	select {
	case <-b.closing:
		log.Printf("eventbus: stopped, dropping event %s (%s)", evt.EventType, evt.ID)
		return false
	default:
	}
	select {
	case b.events <- evt:
		return true
	case <-ctx.Done():
		log.Printf("eventbus: %v, dropping event %s (%s)", ctx.Err(), evt.EventType, evt.ID)
	case <-b.closing:
		log.Printf("eventbus: stopped, dropping event %s (%s)", evt.EventType, evt.ID)
	}
	return false
}

// Start begins the consumer goroutine. It processes events until the
// context is cancelled or Stop is called, then drains what is buffered.
func (b *Bus) Start(ctx context.Context) {
	go func() {
		defer close(b.done)
		for {
			select {
			case evt := <-b.events:
				b.dispatch(ctx, evt)
			case <-ctx.Done():
				b.drain(context.WithoutCancel(ctx))
				return
			case <-b.closing:
				b.drain(ctx)
				return
			}
		}
	}()
}

func (b *Bus) drain(ctx context.Context) {
	for {
		select {
		case evt := <-b.events:
			b.dispatch(ctx, evt)
		default:
			return
		}
	}
}

// Stop signals the consumer to drain and waits for it to finish. It must
// follow Start and is safe to call more than once. Publishers that were
// mid-send when Stop began are waited for, and anything they enqueued after
// the consumer exited is dispatched here.
func (b *Bus) Stop() {
	b.stopOnce.Do(func() { close(b.closing) })
	b.sendMu.Lock() // wait for in-flight publishers
	b.sendMu.Unlock()
	<-b.done
	b.drain(context.Background())
}

func (b *Bus) dispatch(ctx context.Context, evt event.DomainEvent) {
	b.mu.RLock()
	subs := b.subscribers
	b.mu.RUnlock()

	for _, s := range subs {
		if err := s.handler.HandleEvent(ctx, evt); err != nil {
			log.Printf("eventbus: %s handler error for %s: %v", s.name, evt.EventType, err)
		}
	}
}
