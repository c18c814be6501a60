package server

import (
	"net/http"
	"time"

	"kafka-relay/src/logger"
)

func newResponseLogger(w http.ResponseWriter) *responseLogger {
	return &responseLogger{ResponseWriter: w, status: http.StatusOK}
}

type responseLogger struct {
	http.ResponseWriter
	status int
}

func (l *responseLogger) WriteHeader(s int) {
	l.ResponseWriter.WriteHeader(s)
	l.status = s
}

func (l *responseLogger) Flush() {
	if f, ok := l.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (l *responseLogger) Unwrap() http.ResponseWriter {
	return l.ResponseWriter
}

func logRequest(log logger.Logger, fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rl := newResponseLogger(w)
		fn(rl, r)
		log.Info("[HTTP] method=%s path=%q status=%d duration=%s", r.Method, r.URL.Path, rl.status, time.Since(start))
	}
}
