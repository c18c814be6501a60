// Package contracts defines the message types shared by the relay service, its
// HTTP and MCP handlers, and the standalone producer and consumer binaries.
package contracts

// Message is a record the relay has successfully sent to the broker.
type Message struct {
	// Unique identifier, generated at creation and never reused.
	ID string `json:"id"`
	// Partitioning key sent alongside the body.
	Key string `json:"key"`
	// Payload sent to the broker.
	Body string `json:"body"`
}

// ProduceRequest is the inbound payload for produce and update calls.
// Message is the legacy name of Body and is only read when Body is absent.
type ProduceRequest struct {
	Key     *string `json:"key"`
	Body    *string `json:"body"`
	Message *string `json:"message,omitempty"`
}

// Normalize resolves the legacy Message field into Body.
func (r ProduceRequest) Normalize() ProduceRequest {
	if r.Body == nil && r.Message != nil {
		r.Body = r.Message
	}
	r.Message = nil
	return r
}

// Event is a published registry change as delivered to live subscribers.
type Event struct {
	// Monotonic publish sequence number, shared by all subscribers.
	Seq uint64 `json:"seq"`
	// Kind is EventCreated or EventUpdated.
	Kind    string  `json:"kind"`
	Message Message `json:"message"`
}

// Event kinds.
const (
	EventCreated = "created"
	EventUpdated = "updated"
)

// Defaults matching the topic and group used by the relay binaries.
const (
	// DefaultTopic is the topic every binary produces to and consumes from.
	DefaultTopic = "test-topic"

	// DefaultConsumerGroup is the consumer group joined by the consumer binary.
	DefaultConsumerGroup = "test_group"
)
