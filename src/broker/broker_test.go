package broker

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestInMemoryBroker_PublishSubscribe(t *testing.T) {
	broker := NewInMemoryBroker()
	defer broker.Close()

	ctx := context.Background()
	topic := "test-topic"
	key := "test-key"
	value := []byte("test message")

	// Subscribe before publishing
	msgChan, err := broker.Subscribe(ctx, topic, "test-group")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	ack, err := broker.Publish(ctx, topic, key, value)
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if ack.Topic != topic || ack.Offset != 0 {
		t.Errorf("Expected ack for %s at offset 0, got %+v", topic, ack)
	}

	select {
	case msg := <-msgChan:
		if msg.Topic != topic {
			t.Errorf("Expected topic %s, got %s", topic, msg.Topic)
		}
		if string(msg.Key) != key {
			t.Errorf("Expected key %s, got %s", key, msg.Key)
		}
		if string(msg.Value) != string(value) {
			t.Errorf("Expected value %s, got %s", string(value), string(msg.Value))
		}
	case <-time.After(1 * time.Second):
		t.Fatal("Timeout waiting for message")
	}
}

func TestInMemoryBroker_OffsetsIncreasePerTopic(t *testing.T) {
	broker := NewInMemoryBroker()
	defer broker.Close()

	ctx := context.Background()
	for i := int64(0); i < 3; i++ {
		ack, err := broker.Publish(ctx, "a", "k", []byte("v"))
		if err != nil {
			t.Fatalf("Publish failed: %v", err)
		}
		if ack.Offset != i {
			t.Errorf("Expected offset %d, got %d", i, ack.Offset)
		}
	}

	ack, err := broker.Publish(ctx, "b", "k", []byte("v"))
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if ack.Offset != 0 {
		t.Errorf("Expected independent offset 0 for topic b, got %d", ack.Offset)
	}
}

func TestInMemoryBroker_MultipleSubscribers(t *testing.T) {
	broker := NewInMemoryBroker()
	defer broker.Close()

	ctx := context.Background()
	topic := "test-topic"

	sub1, err := broker.Subscribe(ctx, topic, "group1")
	if err != nil {
		t.Fatalf("Subscribe 1 failed: %v", err)
	}

	sub2, err := broker.Subscribe(ctx, topic, "group2")
	if err != nil {
		t.Fatalf("Subscribe 2 failed: %v", err)
	}

	value := []byte("broadcast message")
	if _, err := broker.Publish(ctx, topic, "key", value); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	// Both subscribers should receive the message
	for i, sub := range []<-chan Message{sub1, sub2} {
		select {
		case msg := <-sub:
			if string(msg.Value) != string(value) {
				t.Errorf("Subscriber %d: expected value %s, got %s", i+1, string(value), string(msg.Value))
			}
		case <-time.After(1 * time.Second):
			t.Fatalf("Subscriber %d: timeout waiting for message", i+1)
		}
	}
}

func TestInMemoryBroker_TopicIsolation(t *testing.T) {
	broker := NewInMemoryBroker()
	defer broker.Close()

	ctx := context.Background()
	chB, err := broker.Subscribe(ctx, "topic-b", "group")
	if err != nil {
		t.Fatalf("Subscribe to topic-b failed: %v", err)
	}

	if _, err := broker.Publish(ctx, "topic-a", "k", []byte("message for topic-a")); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	select {
	case msg := <-chB:
		t.Errorf("Topic B should not receive message, but got: %q", msg.Value)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestInMemoryBroker_FailWith(t *testing.T) {
	broker := NewInMemoryBroker()
	defer broker.Close()

	ctx := context.Background()
	boom := errors.New("leader not available")
	broker.FailWith(boom)

	if _, err := broker.Publish(ctx, "t", "k", []byte("v")); !errors.Is(err, boom) {
		t.Fatalf("Expected injected error, got %v", err)
	}

	broker.FailWith(nil)
	if _, err := broker.Publish(ctx, "t", "k", []byte("v")); err != nil {
		t.Fatalf("Expected publish to recover, got %v", err)
	}
}

func TestInMemoryBroker_CancelledContext(t *testing.T) {
	broker := NewInMemoryBroker()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := broker.Publish(ctx, "t", "k", []byte("v")); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestInMemoryBroker_SubscriptionEndsWithContext(t *testing.T) {
	broker := NewInMemoryBroker()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := broker.Subscribe(ctx, "t", "g")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("Expected closed channel, got a message")
		}
	case <-time.After(1 * time.Second):
		t.Fatal("Timeout - channel was not closed after context cancellation")
	}
}

func TestInMemoryBroker_ClosedBroker(t *testing.T) {
	broker := NewInMemoryBroker()
	ch, err := broker.Subscribe(context.Background(), "test", "group")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	broker.Close()

	if _, ok := <-ch; ok {
		t.Error("Expected subscriber channel to be closed")
	}

	ctx := context.Background()

	if _, err := broker.Publish(ctx, "test", "key", []byte("value")); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed when publishing to closed broker, got %v", err)
	}

	if _, err := broker.Subscribe(ctx, "test", "group"); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed when subscribing to closed broker, got %v", err)
	}

	if err := broker.Close(); err != nil {
		t.Errorf("Second Close should be a no-op, got %v", err)
	}
}

func TestNewKafkaBroker_RequiresBrokers(t *testing.T) {
	if _, err := NewKafkaBroker(KafkaConfig{}); err == nil {
		t.Error("Expected error when no broker addresses are given")
	}
}

func TestClientVersion(t *testing.T) {
	if ClientVersion() == "" {
		t.Error("ClientVersion should never be empty")
	}
}

func TestKafkaBroker_CloseEndsPendingPublish(t *testing.T) {
	// Nothing listens on this port, so the record stays buffered until Close.
	broker, err := NewKafkaBroker(KafkaConfig{Brokers: []string{"127.0.0.1:1"}})
	if err != nil {
		t.Fatalf("NewKafkaBroker failed: %v", err)
	}

	published := make(chan error, 1)
	go func() {
		_, err := broker.Publish(context.Background(), "test-topic", "k", []byte("v"))
		published <- err
	}()

	time.Sleep(50 * time.Millisecond)

	closed := make(chan struct{})
	go func() {
		broker.Close()
		close(closed)
	}()

	select {
	case <-closed:
	case <-time.After(5 * time.Second):
		t.Fatal("Close blocked behind a pending publish")
	}

	select {
	case err := <-published:
		if !errors.Is(err, ErrClosed) {
			t.Errorf("Expected ErrClosed for the pending publish, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Pending publish did not return after Close")
	}

	if _, err := broker.Publish(context.Background(), "test-topic", "k", []byte("v")); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed after Close, got %v", err)
	}
}
