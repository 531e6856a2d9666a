package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/matthewbaird/lensgrid/internal/app"
	"github.com/matthewbaird/lensgrid/internal/config"
	"github.com/matthewbaird/lensgrid/internal/server"
	"github.com/matthewbaird/lensgrid/internal/session"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	config.LoadDotEnv()
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("reading config: %v", err)
	}

	a, err := app.Open(ctx, cfg, app.Options{LogEvents: true})
	if err != nil {
		log.Fatalf("loading inventory: %v", err)
	}
	log.Printf("inventory loaded from %s store", cfg.BlobBackend)

	sessions := session.NewManager(a.Engine, cfg.SessionMaxAge, cfg.SessionIdleTimeout)
	go sessions.RunCleanup(ctx, time.Minute)

	runErr := server.Run(ctx, server.Config{
		Port:     cfg.Port,
		Engine:   a.Engine,
		Sessions: sessions,
		Activity: a.Activity,
	})

	// Stop the bus after the server so in-flight changes are saved.
	if err := a.Close(); err != nil {
		log.Printf("closing store: %v", err)
	}
	if runErr != nil {
		log.Fatalf("server error: %v", runErr)
	}
}
