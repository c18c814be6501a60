package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"kafka-relay/src/contracts"
)

const keepalive = ": keepalive\n\n"

func writeEvent(w io.Writer, evt contracts.Event) error {
	data, err := json.Marshal(evt.Message)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "id: %d\ndata: %s\n\n", evt.Seq, data)
	return err
}

// events streams every created or updated message to the client until it disconnects.
func (e endpoints) events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported.", http.StatusInternalServerError)
		return
	}

	sub, err := e.svc.Subscribe()
	if err != nil {
		http.Error(w, "Server is shutting down.", http.StatusServiceUnavailable)
		return
	}
	defer e.svc.Unsubscribe(sub)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticker := time.NewTicker(e.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case evt, ok := <-sub.Events():
			if !ok {
				return
			}
			if err := writeEvent(w, evt); err != nil {
				e.logger.Debug("[HTTP] SSE client write failed: %v", err)
				return
			}
			flusher.Flush()
		case <-ticker.C:
			if _, err := io.WriteString(w, keepalive); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
