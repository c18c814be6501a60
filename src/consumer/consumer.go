// Package consumer reads the relay topic as a member of a consumer group and
// hands every record to a chain of handlers.
package consumer

import (
	"context"
	"fmt"

	"kafka-relay/src/broker"
	"kafka-relay/src/logger"
)

// Handler processes one consumed record. A handler error is logged and
// consumption continues.
type Handler interface {
	Handle(ctx context.Context, msg broker.Message) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, msg broker.Message) error

func (f HandlerFunc) Handle(ctx context.Context, msg broker.Message) error {
	return f(ctx, msg)
}

// Consumer subscribes to one topic under one group.
type Consumer struct {
	broker   broker.Broker
	topic    string
	group    string
	handlers []Handler
	logger   logger.Logger
}

// New creates a consumer. Handlers run in order for each record.
func New(brk broker.Broker, topic, group string, log logger.Logger, handlers ...Handler) *Consumer {
	return &Consumer{
		broker:   brk,
		topic:    topic,
		group:    group,
		handlers: handlers,
		logger:   log,
	}
}

// Run consumes until ctx is cancelled or the broker closes the subscription.
// Fetch errors are reported and do not stop consumption.
func (c *Consumer) Run(ctx context.Context) error {
	msgChan, err := c.broker.Subscribe(ctx, c.topic, c.group)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", c.topic, err)
	}

	c.logger.Info("[Consumer] Listening on topic '%s' as group '%s'", c.topic, c.group)

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgChan:
			if !ok {
				c.logger.Info("[Consumer] Subscription closed")
				return nil
			}
			if msg.Err != nil {
				c.logger.Error("[Consumer] Kafka error: %v", msg.Err)
				continue
			}
			c.handle(ctx, msg)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, msg broker.Message) {
	for _, h := range c.handlers {
		if err := h.Handle(ctx, msg); err != nil {
			c.logger.Error("[Consumer] Failed to handle %s[%d]@%d: %v", msg.Topic, msg.Partition, msg.Offset, err)
		}
	}
}
