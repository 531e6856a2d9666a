package eventbus

import (
	"context"
	"log"

	"github.com/matthewbaird/lensgrid/internal/event"
)

// LogConsumer logs all domain events for observability.
type LogConsumer struct{}

func NewLogConsumer() *LogConsumer { return &LogConsumer{} }

func (c *LogConsumer) HandleEvent(_ context.Context, evt event.DomainEvent) error {
	id := evt.ID
	if len(id) > 8 {
		id = id[:8]
	}
	log.Printf("event: %s [%s] %s id=%s", evt.EventType, evt.Blob, evt.Summary, id)
	return nil
}
