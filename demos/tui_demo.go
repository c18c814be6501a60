// Demo program to showcase the consumer TUI with a steady stream of synthetic records.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"kafka-relay/src/broker"
	"kafka-relay/src/contracts"
	"kafka-relay/src/tui"
)

func main() {
	records := generateSampleData()
	fmt.Printf("Streaming %d sample records across %d partitions...\n", len(records), countPartitions(records))
	time.Sleep(500 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	feed := tui.NewFeed(16, true)
	go func() {
		defer feed.Close()
		ticker := time.NewTicker(300 * time.Millisecond)
		defer ticker.Stop()
		for _, msg := range records {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			msg.Timestamp = time.Now().UnixMilli()
			if err := feed.Handle(ctx, msg); err != nil {
				return
			}
		}
	}()

	if err := tui.Start(feed, contracts.DefaultTopic, contracts.DefaultConsumerGroup); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

func countPartitions(records []broker.Message) int {
	parts := make(map[int32]bool)
	for _, r := range records {
		parts[r.Partition] = true
	}
	return len(parts)
}

func generateSampleData() []broker.Message {
	payloads := []struct {
		key   string
		value string
	}{
		{"some_key", "Hello, Kafka!"},
		{"some_key", "Yo, Kafka!"},
		{"another_kafka", "Another Kafka!"},
		{"another_kafka", "Bye, Kafka!"},
		{"order-1042", `{"order_id":1042,"status":"created","items":[{"sku":"A-17","qty":2},{"sku":"C-3","qty":1}]}`},
		{"order-1042", `{"order_id":1042,"status":"paid","amount":"49.90","currency":"EUR"}`},
		{"audit", "user=alice action=login\nip=10.0.3.17\nagent=curl/8.4.0"},
		{"", "record without a key"},
		{"colors", "\x1b[31mred\x1b[0m text with escapes stripped"},
		{"unicode", "naïve café 日本語 ✓"},
		{"binary", string([]byte{0xff, 0xfe, 'o', 'k'})},
		{"order-1043", `{"order_id":1043,"status":"created","note":"` + longNote() + `"}`},
	}

	var out []broker.Message
	offsets := make(map[int32]int64)
	for round := 0; round < 5; round++ {
		for i, p := range payloads {
			part := int32((i + round) % 3)
			out = append(out, broker.Message{
				Topic:     contracts.DefaultTopic,
				Key:       []byte(p.key),
				Value:     []byte(p.value),
				Partition: part,
				Offset:    offsets[part],
			})
			offsets[part]++
		}
	}
	return out
}

func longNote() string {
	note := ""
	for i := 0; i < 12; i++ {
		note += fmt.Sprintf("line item %d shipped from warehouse %c; ", i, 'A'+i%4)
	}
	return note
}
