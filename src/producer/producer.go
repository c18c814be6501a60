// Package producer sends standalone messages to the relay topic and reports
// each delivery.
package producer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"kafka-relay/src/broker"
)

// Message is one record to send.
type Message struct {
	Key  string
	Body string
}

// DemoMessages are sent when no message is given on the command line.
var DemoMessages = []Message{
	{Key: "some_key", Body: "Hello, Kafka!"},
	{Key: "some_key", Body: "Yo, Kafka!"},
	{Key: "another_kafka", Body: "Another Kafka!"},
	{Key: "another_kafka", Body: "Bye, Kafka!"},
}

// Producer sends messages one at a time, waiting for each acknowledgement.
type Producer struct {
	broker broker.Broker
	topic  string
	out    io.Writer
}

func New(brk broker.Broker, topic string, out io.Writer) *Producer {
	return &Producer{broker: brk, topic: topic, out: out}
}

// Send delivers msgs in order and prints one status line per message.
// A failed delivery does not stop the remaining sends; all failures are returned together.
func (p *Producer) Send(ctx context.Context, msgs []Message) error {
	var errs []error
	for _, msg := range msgs {
		ack, err := p.broker.Publish(ctx, p.topic, msg.Key, []byte(msg.Body))
		fmt.Fprintln(p.out, DeliveryStatus(ack, err))
		if err != nil {
			errs = append(errs, fmt.Errorf("send %q: %w", msg.Body, err))
		}
	}
	return errors.Join(errs...)
}

// DeliveryStatus describes the outcome of one send.
func DeliveryStatus(ack broker.DeliveryAck, err error) string {
	if err != nil {
		return fmt.Sprintf("Delivery status: Err(%v)", err)
	}
	return fmt.Sprintf("Delivery status: Ok(topic=%s, partition=%d, offset=%d)", ack.Topic, ack.Partition, ack.Offset)
}
