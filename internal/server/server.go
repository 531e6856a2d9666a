// Package server assembles all HTTP handlers and starts the server.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matthewbaird/lensgrid/internal/activity"
	"github.com/matthewbaird/lensgrid/internal/engine"
	"github.com/matthewbaird/lensgrid/internal/handler"
	"github.com/matthewbaird/lensgrid/internal/session"
	"github.com/matthewbaird/lensgrid/internal/wire"
)

// Config holds server configuration.
type Config struct {
	Port     int
	Engine   *engine.Engine
	Sessions *session.Manager
	Activity activity.Store
}

// NewRouter registers every route on a chi router wrapped with the logging
// and recovery middleware.
func NewRouter(eng *engine.Engine, sessions *session.Manager, changes activity.Store) http.Handler {
	r := chi.NewRouter()

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	ih := handler.NewInventoryHandler(eng)
	ch := handler.NewCatalogHandler(eng)
	ah := handler.NewActivityHandler(changes)
	ws := wire.NewHandler(sessions)

	r.Route("/v1", func(r chi.Router) {
		// --- Catalog ---
		r.Get("/options", ch.ListOptions)
		r.Post("/options/{attribute}", ch.AddOption)
		r.Get("/colors", ch.ListColors)
		r.Post("/colors", ch.AddColor)
		r.Put("/colors/price", ch.SetPrice)

		// --- Inventory ---
		r.Get("/grid", ih.GetGrid)
		r.Post("/cells/paint", ih.PaintCell)
		r.Post("/cells/stock", ih.SetStock)
		r.Get("/export", ih.Export)
		r.Post("/import", ih.Import)
		r.Get("/stats", ih.Stats)

		// --- Activity ---
		r.Get("/activity", ah.List)

		// --- Gestures ---
		r.Get("/ws", ws.ServeHTTP)
	})

	return handler.Recovery(handler.Logging(r))
}

// Run starts the HTTP server and shuts it down when ctx is done.
func Run(ctx context.Context, cfg Config) error {
	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("starting server on %s", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(cfg.Engine, cfg.Sessions, cfg.Activity),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
