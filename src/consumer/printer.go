package consumer

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/x/ansi"

	"kafka-relay/src/broker"
)

// Printer writes one line per consumed record.
type Printer struct {
	mu    sync.Mutex
	w     io.Writer
	human bool
}

// NewPrinter creates a printer. In human mode keys and payloads are decoded as
// UTF-8 (invalid sequences replaced); otherwise their raw bytes are printed.
func NewPrinter(w io.Writer, human bool) *Printer {
	return &Printer{w: w, human: human}
}

// Format renders msg without a trailing newline.
func (p *Printer) Format(msg broker.Message) string {
	return fmt.Sprintf("key: '%s', payload: '%s', topic: %s, partition: %d, offset: %d, timestamp: CreateTime(%d)",
		Render(msg.Key, p.human), Render(msg.Value, p.human), msg.Topic, msg.Partition, msg.Offset, msg.Timestamp)
}

// Handle implements Handler.
func (p *Printer) Handle(ctx context.Context, msg broker.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := fmt.Fprintln(p.w, p.Format(msg))
	return err
}

// Decode converts b to printable text: invalid UTF-8 becomes U+FFFD and
// terminal escape sequences are removed.
func Decode(b []byte) string {
	return ansi.Strip(strings.ToValidUTF8(string(b), "�"))
}

// Render shows b as decoded text in human mode and as a byte list otherwise.
func Render(b []byte, human bool) string {
	if human {
		return Decode(b)
	}
	if b == nil {
		b = []byte{}
	}
	return fmt.Sprint(b)
}
