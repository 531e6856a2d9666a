package eventbus

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/matthewbaird/lensgrid/internal/event"
)

type recorder struct {
	mu   sync.Mutex
	seen []string
}

func (r *recorder) HandleEvent(_ context.Context, evt event.DomainEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, evt.EventType)
	return nil
}

func (r *recorder) events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.seen...)
}

func TestBus_DispatchesInOrder(t *testing.T) {
	bus := New(4)
	rec := &recorder{}
	bus.Subscribe("rec", rec)
	bus.Subscribe("failing", HandlerFunc(func(context.Context, event.DomainEvent) error {
		return errors.New("boom")
	}))
	bus.Start(context.Background())

	ctx := context.Background()
	bus.Publish(ctx, event.NewColorAdded(event.ColorPayload{Name: "Rojo", Value: "#ff0000"}))
	bus.Publish(ctx, event.NewOptionAdded(event.OptionPayload{Attribute: "foco", Value: "Ocupacional"}))
	bus.Publish(ctx, event.NewStockSet(event.CellPayload{Sph: "1.00", Cyl: "0.00", Stock: 3}))
	bus.Stop()

	got := rec.events()
	want := []string{"color_added", "option_added", "stock_set"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestBus_StopIsIdempotentAndDropsLatePublishes(t *testing.T) {
	bus := New(1)
	rec := &recorder{}
	bus.Subscribe("rec", rec)
	bus.Start(context.Background())
	bus.Stop()
	bus.Stop()

	bus.Publish(context.Background(), event.NewColorAdded(event.ColorPayload{Name: "x"}))
	if n := len(rec.events()); n != 0 {
		t.Errorf("got %d events after stop, want 0", n)
	}
}

func TestBus_PublishRespectsContext(t *testing.T) {
	bus := New(1)
	ctx, cancel := context.WithCancel(context.Background())
	bus.Publish(ctx, event.NewColorAdded(event.ColorPayload{Name: "a"}))
	cancel()

	done := make(chan struct{})
	go func() {
		bus.Publish(ctx, event.NewColorAdded(event.ColorPayload{Name: "b"}))
		close(done)
	}()
	<-done
}

func TestBus_EnqueuedEventsSurviveConcurrentStop(t *testing.T) {
	for round := 0; round < 50; round++ {
		bus := New(2)
		rec := &recorder{}
		bus.Subscribe("rec", rec)
		bus.Start(context.Background())

		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			enqueued int
		)
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 20; j++ {
					if bus.publish(context.Background(), event.NewColorAdded(event.ColorPayload{Name: "Rojo"})) {
						mu.Lock()
						enqueued++
						mu.Unlock()
					}
				}
			}()
		}
		bus.Stop()
		wg.Wait()

		mu.Lock()
		want := enqueued
		mu.Unlock()
		if got := len(rec.events()); got != want {
			t.Fatalf("round %d: handled %d events, enqueued %d", round, got, want)
		}
	}
}
