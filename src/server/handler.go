// Package server exposes the relay over HTTP.
package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"kafka-relay/src/logger"
	"kafka-relay/src/service"
)

// maxBodyBytes bounds request bodies. Kafka's default message.max.bytes is 1MiB.
const maxBodyBytes = 1 << 20

// Config carries what the handler needs besides the service.
type Config struct {
	HeartbeatInterval time.Duration
	Logger            logger.Logger
}

// Handler is an http.Handler serving the relay API.
type Handler struct {
	*Config
	*mux.Router
	svc *service.Service
}

// NewHandler creates and configures a new handler instance.
func NewHandler(svc *service.Service, config *Config) *Handler {
	if config.Logger == nil {
		config.Logger = logger.NewSilentLogger()
	}
	if config.HeartbeatInterval <= 0 {
		config.HeartbeatInterval = 15 * time.Second
	}
	h := &Handler{Config: config, Router: mux.NewRouter(), svc: svc}
	h.routes()
	return h
}

// ServeHTTP responds to HTTP requests with the right endpoint and middlewares.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logRequest(h.Logger, h.Router.ServeHTTP)(w, r)
}

func (h *Handler) routes() {
	e := endpoints{svc: h.svc, heartbeat: h.HeartbeatInterval, logger: h.Logger}

	h.Router.HandleFunc("/health", e.health).Methods("GET")

	h.Router.HandleFunc("/produce", e.produce).Methods("POST")
	h.Router.HandleFunc("/messages", e.list).Methods("GET")
	h.Router.HandleFunc("/messages/{id}", e.get).Methods("GET")
	h.Router.HandleFunc("/messages/{id}", e.update).Methods("PUT")
	h.Router.HandleFunc("/messages/{id}", e.delete).Methods("DELETE")

	h.Router.HandleFunc("/events", e.events).Methods("GET")
}
