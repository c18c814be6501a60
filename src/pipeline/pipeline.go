// Package pipeline selects and opens the broker the binaries run against.
// Without configured brokers everything runs in one process on an in-memory broker.
package pipeline

import (
	"fmt"

	"kafka-relay/src/broker"
	"kafka-relay/src/config"
	"kafka-relay/src/logger"
)

// Mode is the broker backend in use.
type Mode int

const (
	// LocalMode uses the in-memory broker. Nothing leaves the process.
	LocalMode Mode = iota
	// KafkaMode uses franz-go against KAFKA_BROKERS.
	KafkaMode
)

func (m Mode) String() string {
	switch m {
	case LocalMode:
		return "local"
	case KafkaMode:
		return "kafka"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// DetectMode picks KafkaMode when at least one broker address is configured.
func DetectMode(cfg *config.Config) Mode {
	if len(cfg.KafkaBrokers) > 0 {
		return KafkaMode
	}
	return LocalMode
}

// OpenBroker builds the broker for the detected mode. The caller closes it.
func OpenBroker(cfg *config.Config, log logger.Logger) (broker.Broker, Mode, error) {
	mode := DetectMode(cfg)

	switch mode {
	case KafkaMode:
		b, err := broker.NewKafkaBroker(broker.KafkaConfig{
			Brokers:        cfg.KafkaBrokers,
			SendTimeout:    cfg.SendTimeout,
			SessionTimeout: cfg.SessionTimeout,
			AutoCommit:     cfg.AutoCommit,
			FromStart:      cfg.FromStart,
		})
		if err != nil {
			return nil, mode, fmt.Errorf("failed to create Kafka broker: %w", err)
		}
		log.Info("[Pipeline] Using Kafka at %v (franz-go %s)", cfg.KafkaBrokers, broker.ClientVersion())
		return b, mode, nil
	default:
		log.Info("[Pipeline] KAFKA_BROKERS not set, using in-memory broker")
		return broker.NewInMemoryBroker(), mode, nil
	}
}
