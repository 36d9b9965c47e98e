package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resume-matcher/internal/bootstrap"
	"resume-matcher/internal/shared/config"
	"resume-matcher/internal/shared/server"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap build: %v", err)
	}

	// Without an SQS queue the worker runs in-process so dev submissions
	// still complete end to end.
	if app.LocalQueue != nil {
		go func() {
			if err := app.LocalQueue.Consume(ctx, app.Task.Run); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("local queue consumer stopped: %v", err)
			}
		}()
	}

	addr := server.Addr(cfg.Port)
	srv := &http.Server{Addr: addr, Handler: app.Router}

	go func() {
		log.Printf("Starting API server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutdown requested")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
	if app.DB != nil {
		app.DB.Close()
	}
}
