// Package broker provides the Kafka-compatible broker implementation.
package broker

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

const franzModule = "github.com/twmb/franz-go"

// KafkaConfig configures a KafkaBroker.
type KafkaConfig struct {
	// Brokers is a slice of seed broker addresses (e.g., ["localhost:9092"]).
	Brokers []string
	// SendTimeout bounds how long a record may wait for delivery. Zero disables the bound.
	SendTimeout time.Duration
	// SessionTimeout is the consumer group session timeout. Zero keeps the client default.
	SessionTimeout time.Duration
	// AutoCommit commits consumed offsets periodically.
	AutoCommit bool
	// FromStart starts groups without committed offsets at the earliest offset instead of the latest.
	FromStart bool
}

// KafkaBroker is a Kafka-compatible broker implementation using franz-go.
type KafkaBroker struct {
	client    *kgo.Client
	cfg       KafkaConfig
	mu        sync.RWMutex
	consumers map[string]*kgo.Client // topic+groupID -> consumer client
	closed    bool
}

// NewKafkaBroker creates a new KafkaBroker instance.
func NewKafkaBroker(cfg KafkaConfig) (*KafkaBroker, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one broker address is required")
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.AllowAutoTopicCreation(),
	}
	if cfg.SendTimeout > 0 {
		opts = append(opts, kgo.RecordDeliveryTimeout(cfg.SendTimeout))
	}

	// Create producer client
	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka client: %w", err)
	}

	return &KafkaBroker{
		client:    client,
		cfg:       cfg,
		consumers: make(map[string]*kgo.Client),
	}, nil
}

// Publish sends a message to a topic with the specified key and waits for the ack.
// The lock is not held during delivery, so Close can end a send that is still waiting.
// Implements the Broker interface.
func (b *KafkaBroker) Publish(ctx context.Context, topic string, key string, value []byte) (DeliveryAck, error) {
	b.mu.RLock()
	closed := b.closed
	b.mu.RUnlock()

	if closed {
		return DeliveryAck{}, ErrClosed
	}

	if b.cfg.SendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.cfg.SendTimeout)
		defer cancel()
	}

	record := &kgo.Record{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
	}

	produced, err := b.client.ProduceSync(ctx, record).First()
	if errors.Is(err, kgo.ErrClientClosed) {
		return DeliveryAck{}, ErrClosed
	}
	if err != nil {
		return DeliveryAck{}, fmt.Errorf("failed to produce message: %w", err)
	}

	return DeliveryAck{
		Topic:     produced.Topic,
		Partition: produced.Partition,
		Offset:    produced.Offset,
		Timestamp: produced.Timestamp.UnixMilli(),
	}, nil
}

// Subscribe creates a consumer for the specified topic and consumer group.
// Returns a channel that will receive messages.
// Implements the Broker interface.
func (b *KafkaBroker) Subscribe(ctx context.Context, topic string, groupID string) (<-chan Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrClosed
	}

	consumerKey := fmt.Sprintf("%s:%s", topic, groupID)

	// Check if consumer already exists
	if _, exists := b.consumers[consumerKey]; exists {
		return nil, fmt.Errorf("consumer already exists for topic %s and group %s", topic, groupID)
	}

	offset := kgo.NewOffset().AtEnd()
	if b.cfg.FromStart {
		offset = kgo.NewOffset().AtStart()
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(b.cfg.Brokers...),
		kgo.ConsumerGroup(groupID),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(offset),
	}
	if b.cfg.SessionTimeout > 0 {
		opts = append(opts, kgo.SessionTimeout(b.cfg.SessionTimeout))
	}
	if !b.cfg.AutoCommit {
		opts = append(opts, kgo.DisableAutoCommit())
	}

	consumer, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}

	b.consumers[consumerKey] = consumer

	msgChan := make(chan Message, 100)

	go b.consumeLoop(ctx, consumerKey, consumer, msgChan)

	return msgChan, nil
}

// consumeLoop continuously polls for messages and sends them to the channel.
// Fetch errors are forwarded as messages with Err set and consumption continues.
func (b *KafkaBroker) consumeLoop(ctx context.Context, consumerKey string, consumer *kgo.Client, msgChan chan<- Message) {
	defer close(msgChan)
	defer b.releaseConsumer(consumerKey, consumer)

	for {
		fetches := consumer.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			return
		}

		for _, fetchErr := range fetches.Errors() {
			if errors.Is(fetchErr.Err, context.Canceled) {
				return
			}
			err := fmt.Errorf("fetch %s[%d]: %w", fetchErr.Topic, fetchErr.Partition, fetchErr.Err)
			select {
			case msgChan <- Message{Topic: fetchErr.Topic, Partition: fetchErr.Partition, Err: err}:
			case <-ctx.Done():
				return
			}
		}

		iter := fetches.RecordIter()
		for !iter.Done() {
			record := iter.Next()
			msg := Message{
				Topic:     record.Topic,
				Key:       record.Key,
				Value:     record.Value,
				Offset:    record.Offset,
				Partition: record.Partition,
				Timestamp: record.Timestamp.UnixMilli(),
			}

			select {
			case msgChan <- msg:
			case <-ctx.Done():
				return
			}
		}
	}
}

// releaseConsumer closes a consumer that is still registered.
// Consumers already closed by Close are left alone.
func (b *KafkaBroker) releaseConsumer(consumerKey string, consumer *kgo.Client) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if current, ok := b.consumers[consumerKey]; ok && current == consumer {
		delete(b.consumers, consumerKey)
		consumer.Close()
	}
}

// Close shuts down the broker and all consumer connections.
func (b *KafkaBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}

	b.closed = true

	// Close all consumers
	for _, consumer := range b.consumers {
		consumer.Close()
	}
	b.consumers = make(map[string]*kgo.Client)

	// Close producer client
	b.client.Close()

	return nil
}

// ClientVersion reports the franz-go module version linked into the binary.
func ClientVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	for _, dep := range info.Deps {
		if dep.Path == franzModule {
			return dep.Version
		}
	}
	return "unknown"
}
