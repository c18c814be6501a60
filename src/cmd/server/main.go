// Package main provides the HTTP relay server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"kafka-relay/src/config"
	"kafka-relay/src/fanout"
	"kafka-relay/src/logger"
	"kafka-relay/src/pipeline"
	"kafka-relay/src/server"
	"kafka-relay/src/service"
	"kafka-relay/src/store"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Relay terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run owns every resource, so deferred cleanup completes before main exits.
func run() (int, error) {
	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return exitConfig, fmt.Errorf("configuration error: %w", err)
	}

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		return exitConfig, err
	}
	defer log.Sync()

	brk, mode, err := pipeline.OpenBroker(cfg, log)
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to open broker: %w", err)
	}
	defer brk.Close()

	st := store.NewMemoryStore()
	defer st.Close()

	svc := service.New(brk, st, fanout.NewHub(cfg.SubscriberBuffer), cfg.Topic, log)

	handler := server.NewHandler(svc, &server.Config{
		HeartbeatInterval: cfg.HeartbeatInterval,
		Logger:            log,
	})
	srv := server.New(cfg.HTTPAddr, handler, log, svc.Close)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Starting relay in %s mode, topic '%s'", mode, cfg.Topic)
	if err := srv.Run(ctx); err != nil {
		return exitRuntime, fmt.Errorf("server error: %w", err)
	}

	log.Info("Relay stopped")
	return exitOK, nil
}
