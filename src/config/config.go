// Package config provides configuration management for the relay binaries.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"kafka-relay/src/contracts"
)

// Config holds the application configuration.
type Config struct {
	// KafkaBrokers lists seed broker addresses. Empty selects local (in-memory) mode.
	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`
	// Topic is the topic produced to and consumed from.
	Topic string `envconfig:"KAFKA_TOPIC"`
	// ConsumerGroup is the group joined by the consumer binary.
	ConsumerGroup string `envconfig:"KAFKA_CONSUMER_GROUP"`
	// SessionTimeout is the consumer group session timeout.
	SessionTimeout time.Duration `envconfig:"KAFKA_SESSION_TIMEOUT" default:"6s"`
	// AutoCommit enables periodic offset commits for the consumer.
	AutoCommit bool `envconfig:"KAFKA_AUTO_COMMIT" default:"true"`
	// FromStart makes a new consumer group start at the earliest offset.
	FromStart bool `envconfig:"KAFKA_FROM_START" default:"false"`
	// SendTimeout bounds a single delivery. Zero means wait indefinitely.
	SendTimeout time.Duration `envconfig:"SEND_TIMEOUT" default:"0s"`

	HTTPAddr          string        `envconfig:"HTTP_ADDR" default:"127.0.0.1:8080"`
	SubscriberBuffer  int           `envconfig:"SUBSCRIBER_BUFFER" default:"100"`
	HeartbeatInterval time.Duration `envconfig:"SSE_HEARTBEAT" default:"15s"`

	// PostgresDSN enables the consumer journal when set.
	PostgresDSN string `envconfig:"POSTGRES_DSN"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"console"`
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	cfg.KafkaBrokers = trimList(cfg.KafkaBrokers)

	// An explicitly empty variable still falls back to the contract defaults.
	if cfg.Topic == "" {
		cfg.Topic = contracts.DefaultTopic
	}
	if cfg.ConsumerGroup == "" {
		cfg.ConsumerGroup = contracts.DefaultConsumerGroup
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// trimList drops surrounding spaces and empty entries, so "a:9092, b:9092," yields two seeds.
func trimList(items []string) []string {
	out := items[:0]
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// MustLoadFromEnv loads configuration from environment variables and panics on error.
// This is useful for initialization in main() where configuration errors should be fatal.
func MustLoadFromEnv() *Config {
	cfg, err := LoadFromEnv()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// Validate checks values envconfig cannot constrain by itself.
func (c *Config) Validate() error {
	if c.SubscriberBuffer <= 0 {
		return fmt.Errorf("SUBSCRIBER_BUFFER must be positive, got %d", c.SubscriberBuffer)
	}
	if c.SendTimeout < 0 {
		return fmt.Errorf("SEND_TIMEOUT must not be negative, got %s", c.SendTimeout)
	}
	if c.HeartbeatInterval <= 0 {
		return fmt.Errorf("SSE_HEARTBEAT must be positive, got %s", c.HeartbeatInterval)
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be console or json, got %q", c.LogFormat)
	}
	return nil
}
