package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"kafka-relay/src/broker"
	"kafka-relay/src/contracts"
	"kafka-relay/src/fanout"
	"kafka-relay/src/logger"
	"kafka-relay/src/store"
)

func str(s string) *string { return &s }

func req(key, body string) contracts.ProduceRequest {
	return contracts.ProduceRequest{Key: str(key), Body: str(body)}
}

func newTestService(t *testing.T, brk broker.Broker) (*Service, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	svc := New(brk, st, fanout.NewHub(16), contracts.DefaultTopic, logger.NewSilentLogger())
	t.Cleanup(svc.Close)
	return svc, st
}

// gatedBroker blocks every Publish until release is closed.
type gatedBroker struct {
	entered chan struct{}
	release chan struct{}
	sent    []string
	mu      sync.Mutex
}

func newGatedBroker() *gatedBroker {
	return &gatedBroker{entered: make(chan struct{}, 1), release: make(chan struct{})}
}

func (g *gatedBroker) Publish(ctx context.Context, topic, key string, value []byte) (broker.DeliveryAck, error) {
	g.entered <- struct{}{}
	<-g.release
	g.mu.Lock()
	g.sent = append(g.sent, string(value))
	g.mu.Unlock()
	return broker.DeliveryAck{Topic: topic}, nil
}

func (g *gatedBroker) Subscribe(ctx context.Context, topic, groupID string) (<-chan broker.Message, error) {
	return nil, errors.New("not supported")
}

func (g *gatedBroker) Close() error { return nil }

// ackRecordingBroker notes the last acknowledged value at ack time and then
// delays returning, as a slow network path back to the producer would.
type ackRecordingBroker struct {
	mu   sync.Mutex
	last string
}

func (b *ackRecordingBroker) Publish(ctx context.Context, topic, key string, value []byte) (broker.DeliveryAck, error) {
	b.mu.Lock()
	b.last = string(value)
	b.mu.Unlock()
	time.Sleep(time.Duration(rand.Intn(50)) * time.Microsecond)
	return broker.DeliveryAck{Topic: topic}, nil
}

func (b *ackRecordingBroker) Subscribe(ctx context.Context, topic, groupID string) (<-chan broker.Message, error) {
	return nil, errors.New("not supported")
}

func (b *ackRecordingBroker) Close() error { return nil }

func (b *ackRecordingBroker) lastAcked() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last
}

func TestService_RelayScenario(t *testing.T) {
	brk := broker.NewInMemoryBroker()
	defer brk.Close()
	svc, _ := newTestService(t, brk)
	ctx := context.Background()

	records, err := brk.Subscribe(ctx, contracts.DefaultTopic, "scenario")
	if err != nil {
		t.Fatalf("Subscribe to broker failed: %v", err)
	}
	sub, err := svc.Subscribe()
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer svc.Unsubscribe(sub)

	created, err := svc.Produce(ctx, req("a", "hello"))
	if err != nil {
		t.Fatalf("Produce failed: %v", err)
	}
	if created.Key != "a" || created.Body != "hello" || created.ID == "" {
		t.Fatalf("Unexpected created message: %+v", created)
	}

	select {
	case rec := <-records:
		if string(rec.Key) != "a" || string(rec.Value) != "hello" {
			t.Errorf("Broker got key=%q value=%q", rec.Key, rec.Value)
		}
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for broker record")
	}

	evt := <-sub.Events()
	if evt.Kind != contracts.EventCreated || evt.Message != created {
		t.Errorf("Expected created event for %+v, got %+v", created, evt)
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil || got != created {
		t.Fatalf("Get = %+v, %v; want %+v", got, err, created)
	}

	updated, err := svc.Update(ctx, created.ID, req("a", "bye"))
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.ID != created.ID || updated.Body != "bye" {
		t.Errorf("Unexpected updated message: %+v", updated)
	}

	evt = <-sub.Events()
	if evt.Kind != contracts.EventUpdated || evt.Message.Body != "bye" {
		t.Errorf("Expected updated event with body bye, got %+v", evt)
	}

	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := svc.Get(ctx, created.ID); !errors.As(err, new(store.ErrNotFound)) {
		t.Errorf("Expected NotFound after delete, got %v", err)
	}
}

func TestService_SendFailureLeavesRegistryUnchanged(t *testing.T) {
	brk := broker.NewInMemoryBroker()
	defer brk.Close()
	svc, st := newTestService(t, brk)
	ctx := context.Background()

	existing, err := svc.Produce(ctx, req("a", "hello"))
	if err != nil {
		t.Fatalf("Produce failed: %v", err)
	}

	sub, _ := svc.Subscribe()
	defer svc.Unsubscribe(sub)

	brk.FailWith(errors.New("broker unavailable"))

	_, err = svc.Produce(ctx, req("b", "lost"))
	if !errors.Is(err, ErrUpstreamSend) {
		t.Fatalf("Expected ErrUpstreamSend, got %v", err)
	}
	var sendErr *SendError
	if !errors.As(err, &sendErr) || sendErr.Topic != contracts.DefaultTopic {
		t.Errorf("Expected SendError for topic %s, got %v", contracts.DefaultTopic, err)
	}

	_, err = svc.Update(ctx, existing.ID, req("a", "changed"))
	if !errors.Is(err, ErrUpstreamSend) {
		t.Fatalf("Expected ErrUpstreamSend on update, got %v", err)
	}

	if st.Len() != 1 {
		t.Errorf("Expected registry size 1, got %d", st.Len())
	}
	got, _ := svc.Get(ctx, existing.ID)
	if got.Body != "hello" {
		t.Errorf("Expected body unchanged after failed update, got %q", got.Body)
	}

	select {
	case evt := <-sub.Events():
		t.Errorf("Unexpected event after failed sends: %+v", evt)
	default:
	}
}

func TestService_UpdateMissingDoesNotSend(t *testing.T) {
	brk := broker.NewInMemoryBroker()
	defer brk.Close()
	svc, _ := newTestService(t, brk)
	ctx := context.Background()

	records, _ := brk.Subscribe(ctx, contracts.DefaultTopic, "g")

	_, err := svc.Update(ctx, "missing", req("k", "v"))
	var notFound store.ErrNotFound
	if !errors.As(err, &notFound) || notFound.ID != "missing" {
		t.Fatalf("Expected ErrNotFound for missing, got %v", err)
	}
	if errors.Is(err, ErrUpstreamSend) {
		t.Error("NotFound must not match ErrUpstreamSend")
	}

	select {
	case rec := <-records:
		t.Errorf("Broker received a record for a missing id: %+v", rec)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestService_DeleteDuringUpdateSendWins(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	created, _ := st.Create(ctx, "a", "hello")

	brk := newGatedBroker()
	svc := New(brk, st, fanout.NewHub(4), contracts.DefaultTopic, logger.NewSilentLogger())
	defer svc.Close()

	sub, _ := svc.Subscribe()

	errCh := make(chan error, 1)
	go func() {
		_, err := svc.Update(ctx, created.ID, req("a", "bye"))
		errCh <- err
	}()

	select {
	case <-brk.entered:
	case <-time.After(time.Second):
		t.Fatal("Update never reached the broker")
	}

	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete during send failed: %v", err)
	}
	close(brk.release)

	select {
	case err := <-errCh:
		if !errors.As(err, new(store.ErrNotFound)) {
			t.Fatalf("Expected ErrNotFound, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Update did not return")
	}

	if st.Len() != 0 {
		t.Errorf("Deleted record was resurrected: size %d", st.Len())
	}
	if len(brk.sent) != 1 || brk.sent[0] != "bye" {
		t.Errorf("Expected the new content to reach the broker, got %v", brk.sent)
	}
	select {
	case evt := <-sub.Events():
		t.Errorf("Unexpected event for a lost update: %+v", evt)
	default:
	}
}

func TestService_ReadsDoNotWaitForSend(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	existing, _ := st.Create(ctx, "a", "hello")

	brk := newGatedBroker()
	svc := New(brk, st, fanout.NewHub(4), contracts.DefaultTopic, logger.NewSilentLogger())
	defer svc.Close()

	done := make(chan struct{})
	go func() {
		svc.Produce(ctx, req("b", "slow"))
		close(done)
	}()
	<-brk.entered

	if _, err := svc.Get(ctx, existing.ID); err != nil {
		t.Errorf("Get blocked or failed during send: %v", err)
	}
	if list, _ := svc.List(ctx); len(list) != 1 {
		t.Errorf("Expected only the committed record, got %d", len(list))
	}

	close(brk.release)
	<-done

	if list, _ := svc.List(ctx); len(list) != 2 {
		t.Errorf("Expected 2 records after send completed, got %d", len(list))
	}
}

func TestService_CancelledContextAbortsBeforeSend(t *testing.T) {
	brk := broker.NewInMemoryBroker()
	defer brk.Close()
	svc, st := newTestService(t, brk)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := svc.Produce(ctx, req("a", "hello")); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if st.Len() != 0 {
		t.Errorf("Expected empty registry, got %d", st.Len())
	}
}

func TestService_InvalidInput(t *testing.T) {
	brk := broker.NewInMemoryBroker()
	defer brk.Close()
	svc, st := newTestService(t, brk)
	ctx := context.Background()

	tests := []struct {
		name  string
		input contracts.ProduceRequest
		field string
	}{
		{"missing key", contracts.ProduceRequest{Body: str("b")}, "key"},
		{"missing body", contracts.ProduceRequest{Key: str("k")}, "body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Produce(ctx, tt.input)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("Expected ErrInvalidInput, got %v", err)
			}
			var vErr *ValidationError
			if !errors.As(err, &vErr) || len(vErr.Fields) != 1 || vErr.Fields[0] != tt.field {
				t.Errorf("Expected field %q in validation error, got %v", tt.field, err)
			}
		})
	}

	if _, err := svc.Get(ctx, ""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty id, got %v", err)
	}
	if st.Len() != 0 {
		t.Errorf("Expected no records after invalid input, got %d", st.Len())
	}
}

func TestService_EmptyStringsAreValid(t *testing.T) {
	brk := broker.NewInMemoryBroker()
	defer brk.Close()
	svc, _ := newTestService(t, brk)

	msg, err := svc.Produce(context.Background(), req("", ""))
	if err != nil {
		t.Fatalf("Expected empty key and body to be accepted, got %v", err)
	}
	if msg.Key != "" || msg.Body != "" {
		t.Errorf("Unexpected message: %+v", msg)
	}
}

func TestService_LegacyMessageField(t *testing.T) {
	brk := broker.NewInMemoryBroker()
	defer brk.Close()
	svc, _ := newTestService(t, brk)

	msg, err := svc.Produce(context.Background(), contracts.ProduceRequest{Key: str("k"), Message: str("legacy")})
	if err != nil {
		t.Fatalf("Produce failed: %v", err)
	}
	if msg.Body != "legacy" {
		t.Errorf("Expected body from message field, got %q", msg.Body)
	}
}

func TestService_ConcurrentProducesAreDistinct(t *testing.T) {
	brk := broker.NewInMemoryBroker()
	defer brk.Close()
	svc, st := newTestService(t, brk)

	sub, _ := svc.Subscribe()
	defer svc.Unsubscribe(sub)

	const n = 10
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Produce(context.Background(), req("k", "v")); err != nil {
				t.Errorf("Produce failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if st.Len() != n {
		t.Fatalf("Expected %d records, got %d", n, st.Len())
	}

	list, _ := svc.List(context.Background())
	for i := 0; i < n; i++ {
		evt := <-sub.Events()
		if evt.Message.ID != list[i].ID {
			t.Errorf("Event %d for %s, but commit order has %s", i, evt.Message.ID, list[i].ID)
		}
	}
}

func TestService_ConcurrentUpdatesMatchLastAck(t *testing.T) {
	ctx := context.Background()

	for run := 0; run < 200; run++ {
		st := store.NewMemoryStore()
		created, _ := st.Create(ctx, "k", "initial")
		brk := &ackRecordingBroker{}
		svc := New(brk, st, fanout.NewHub(16), contracts.DefaultTopic, logger.NewSilentLogger())

		var wg sync.WaitGroup
		for j := 0; j < 8; j++ {
			wg.Add(1)
			go func(j int) {
				defer wg.Done()
				if _, err := svc.Update(ctx, created.ID, req("k", fmt.Sprintf("body-%d", j))); err != nil {
					t.Errorf("Update %d failed: %v", j, err)
				}
			}(j)
		}
		wg.Wait()
		svc.Close()

		got, err := st.Get(ctx, created.ID)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.Body != brk.lastAcked() {
			t.Fatalf("Run %d: registry body %q, last acknowledged %q", run, got.Body, brk.lastAcked())
		}
		if svc.writers.Len() != 0 {
			t.Fatalf("Run %d: %d id locks left after all updates returned", run, svc.writers.Len())
		}
	}
}

func TestService_UpdatesOfDifferentIDsDoNotWait(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	first, _ := st.Create(ctx, "a", "one")
	second, _ := st.Create(ctx, "b", "two")

	brk := newGatedBroker()
	brk.entered = make(chan struct{}, 2)
	svc := New(brk, st, fanout.NewHub(4), contracts.DefaultTopic, logger.NewSilentLogger())
	defer svc.Close()

	done := make(chan error, 2)
	go func() {
		_, err := svc.Update(ctx, first.ID, req("a", "one-2"))
		done <- err
	}()
	go func() {
		_, err := svc.Update(ctx, second.ID, req("b", "two-2"))
		done <- err
	}()

	for i := 0; i < 2; i++ {
		select {
		case <-brk.entered:
		case <-time.After(time.Second):
			t.Fatal("Update of a different id waited for an in-flight send")
		}
	}
	close(brk.release)

	for i := 0; i < 2; i++ {
		if err := <-done; err != nil {
			t.Errorf("Update failed: %v", err)
		}
	}
}
