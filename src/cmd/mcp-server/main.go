// Package main provides the MCP server entry point for the relay.
// Tools are served over stdio, so all logging goes to stderr.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"kafka-relay/src/config"
	"kafka-relay/src/fanout"
	"kafka-relay/src/logger"
	"kafka-relay/src/mcp"
	"kafka-relay/src/pipeline"
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
		fmt.Fprintf(os.Stderr, "MCP server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

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

	brk, _, err := pipeline.OpenBroker(cfg, log)
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to open broker: %w", err)
	}
	defer brk.Close()

	svc := service.New(brk, store.NewMemoryStore(), fanout.NewHub(cfg.SubscriberBuffer), cfg.Topic, log)
	defer svc.Close()

	if err := mcp.NewServer(svc, log).Run(); err != nil {
		return exitRuntime, fmt.Errorf("MCP server error: %w", err)
	}
	return exitOK, nil
}
