// Package service implements the relay: every produce or update is delivered to
// the broker first and only then committed to the registry and broadcast.
package service

import (
	"context"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"kafka-relay/src/broker"
	"kafka-relay/src/contracts"
	"kafka-relay/src/fanout"
	"kafka-relay/src/logger"
	"kafka-relay/src/store"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// messageInput is a normalized ProduceRequest. Pointers distinguish a missing
// field from an intentionally empty one.
type messageInput struct {
	Key  *string `json:"key" validate:"required"`
	Body *string `json:"body" validate:"required"`
}

type idInput struct {
	ID string `json:"id" validate:"required"`
}

// Service is the relay's single shared object. It is safe for concurrent use.
type Service struct {
	broker broker.Broker
	store  store.Store
	hub    *fanout.Hub
	topic  string
	logger logger.Logger

	// commitMu orders registry commits with their broadcasts.
	commitMu sync.Mutex
	// writers serializes updates of the same id from existence check to broadcast,
	// so the registry holds the content of the last send acknowledged for that id.
	writers *idLocks
}

// New wires a Service. The caller keeps ownership of brk and st and closes them.
func New(brk broker.Broker, st store.Store, hub *fanout.Hub, topic string, log logger.Logger) *Service {
	return &Service{
		broker:  brk,
		store:   st,
		hub:     hub,
		topic:   topic,
		logger:  log,
		writers: newIDLocks(),
	}
}

// Produce sends the message to the broker and, once acknowledged, records and broadcasts it.
func (s *Service) Produce(ctx context.Context, req contracts.ProduceRequest) (contracts.Message, error) {
	key, body, err := validateMessage(req)
	if err != nil {
		return contracts.Message{}, err
	}

	if err := ctx.Err(); err != nil {
		return contracts.Message{}, err
	}

	ack, err := s.send(ctx, key, body)
	if err != nil {
		return contracts.Message{}, err
	}

	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	// The send is durable, so the commit must not be abandoned on cancellation.
	msg, err := s.store.Create(context.WithoutCancel(ctx), key, body)
	if err != nil {
		return contracts.Message{}, err
	}
	s.hub.Publish(contracts.EventCreated, msg)

	s.logger.Debug("[Service] Produced %s to %s[%d]@%d", msg.ID, ack.Topic, ack.Partition, ack.Offset)
	return msg, nil
}

// Get returns the message for id.
func (s *Service) Get(ctx context.Context, id string) (contracts.Message, error) {
	if err := validateID(id); err != nil {
		return contracts.Message{}, err
	}
	return s.store.Get(ctx, id)
}

// List returns all messages in insertion order.
func (s *Service) List(ctx context.Context) ([]contracts.Message, error) {
	return s.store.List(ctx)
}

// Update sends the new content to the broker and commits it if the record still exists.
// A missing record is reported without contacting the broker. If the record is deleted
// while the send is in flight, the update is reported as not found.
// Updates of the same id run one at a time; a delete never waits for them.
func (s *Service) Update(ctx context.Context, id string, req contracts.ProduceRequest) (contracts.Message, error) {
	if err := validateID(id); err != nil {
		return contracts.Message{}, err
	}
	key, body, err := validateMessage(req)
	if err != nil {
		return contracts.Message{}, err
	}

	unlock := s.writers.Lock(id)
	defer unlock()

	if _, err := s.store.Get(ctx, id); err != nil {
		return contracts.Message{}, err
	}

	if err := ctx.Err(); err != nil {
		return contracts.Message{}, err
	}

	ack, err := s.send(ctx, key, body)
	if err != nil {
		return contracts.Message{}, err
	}

	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	msg, err := s.store.Update(context.WithoutCancel(ctx), id, key, body)
	if err != nil {
		s.logger.Info("[Service] Update of %s sent to %s@%d but record was removed before commit", id, ack.Topic, ack.Offset)
		return contracts.Message{}, err
	}
	s.hub.Publish(contracts.EventUpdated, msg)

	s.logger.Debug("[Service] Updated %s via %s[%d]@%d", msg.ID, ack.Topic, ack.Partition, ack.Offset)
	return msg, nil
}

// Delete removes the message from the registry. The broker log is not touched.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Debug("[Service] Deleted %s", id)
	return nil
}

// Subscribe opens a live feed of created and updated messages.
func (s *Service) Subscribe() (*fanout.Subscription, error) {
	return s.hub.Subscribe()
}

// Unsubscribe ends a feed opened with Subscribe.
func (s *Service) Unsubscribe(sub *fanout.Subscription) {
	s.hub.Unsubscribe(sub)
}

// Close ends all live feeds.
func (s *Service) Close() {
	s.hub.Close()
}

func (s *Service) send(ctx context.Context, key, body string) (broker.DeliveryAck, error) {
	ack, err := s.broker.Publish(ctx, s.topic, key, []byte(body))
	if err != nil {
		s.logger.Error("[Service] Failed to send message with key %q: %v", key, err)
		return broker.DeliveryAck{}, &SendError{Topic: s.topic, Err: err}
	}
	return ack, nil
}

func validateMessage(req contracts.ProduceRequest) (string, string, error) {
	req = req.Normalize()
	in := messageInput{Key: req.Key, Body: req.Body}
	if err := validate.Struct(in); err != nil {
		return "", "", newValidationError(err)
	}
	return *in.Key, *in.Body, nil
}

func validateID(id string) error {
	if err := validate.Struct(idInput{ID: id}); err != nil {
		return newValidationError(err)
	}
	return nil
}
