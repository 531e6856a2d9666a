// Package app wires the blob store, loader, engine and event bus the same
// way for every binary.
package app

import (
	"context"
	"fmt"

	"github.com/matthewbaird/lensgrid/internal/activity"
	"github.com/matthewbaird/lensgrid/internal/blob"
	"github.com/matthewbaird/lensgrid/internal/config"
	"github.com/matthewbaird/lensgrid/internal/engine"
	"github.com/matthewbaird/lensgrid/internal/eventbus"
	"github.com/matthewbaird/lensgrid/internal/persist"
)

// App is a loaded engine whose changes are persisted in the background.
type App struct {
	Engine   *engine.Engine
	Saver    *persist.Saver
	Activity activity.Store

	store blob.Store
	bus   *eventbus.Bus
}

// Options tunes Open.
type Options struct {
	// LogEvents subscribes the log consumer to the bus.
	LogEvents bool
}

// Open opens the configured store, loads the state and starts the bus.
// Close must be called to flush pending saves.
func Open(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	store, err := blob.Open(ctx, cfg.BlobOptions())
	if err != nil {
		return nil, fmt.Errorf("opening blob store: %w", err)
	}
	return New(ctx, store, cfg.EventBuffer, opts)
}

// New builds an App on an already open store. The App owns the store.
func New(ctx context.Context, store blob.Store, eventBuffer int, opts Options) (*App, error) {
	loader, err := persist.NewLoader(store)
	if err != nil {
		store.Close()
		return nil, err
	}
	st, err := loader.Load(ctx)
	if err != nil {
		store.Close()
		return nil, err
	}

	changes, err := openActivity(ctx, store)
	if err != nil {
		store.Close()
		return nil, err
	}

	bus := eventbus.New(eventBuffer)
	eng := engine.New(st, bus)
	saver := persist.NewSaver(store, eng)
	if opts.LogEvents {
		bus.Subscribe("log", eventbus.NewLogConsumer())
	}
	bus.Subscribe("persist", saver)
	bus.Subscribe("activity", activity.NewIndexer(changes))
	// The bus outlives request contexts; Close drains it.
	bus.Start(context.WithoutCancel(ctx))

	return &App{Engine: eng, Saver: saver, Activity: changes, store: store, bus: bus}, nil
}

// openActivity keeps the change log in the blob database when the store is
// SQL-backed, and in memory otherwise.
func openActivity(ctx context.Context, store blob.Store) (activity.Store, error) {
	sqlStore, ok := store.(*blob.SQLStore)
	if !ok {
		return activity.NewMemoryStore(), nil
	}
	s := activity.NewSQLStore(sqlStore.DB(), sqlStore.Dialect())
	if err := s.Migrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Close drains pending events, so every change is saved, then closes the
// store.
func (a *App) Close() error {
	a.bus.Stop()
	a.Activity.Close()
	return a.store.Close()
}
