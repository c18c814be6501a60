package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"kafka-relay/src/service"
	"kafka-relay/src/store"
)

type errorResponse struct {
	Error string `json:"error"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.As(err, new(store.ErrNotFound)):
		return http.StatusNotFound
	case errors.Is(err, service.ErrUpstreamSend):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (e endpoints) handleError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		e.logger.Error("[HTTP] %s %s failed: %v", r.Method, r.URL.Path, err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
