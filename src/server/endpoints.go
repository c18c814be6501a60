package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"kafka-relay/src/contracts"
	"kafka-relay/src/logger"
	"kafka-relay/src/service"
)

type endpoints struct {
	svc       *service.Service
	heartbeat time.Duration
	logger    logger.Logger
}

func id(r *http.Request) string {
	return mux.Vars(r)["id"]
}

func (e endpoints) health(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintf(w, "OK")
}

func (e endpoints) produce(w http.ResponseWriter, r *http.Request) {
	req, ok := e.decode(w, r)
	if !ok {
		return
	}

	msg, err := e.svc.Produce(r.Context(), req)
	if err != nil {
		e.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

func (e endpoints) list(w http.ResponseWriter, r *http.Request) {
	msgs, err := e.svc.List(r.Context())
	if err != nil {
		e.handleError(w, r, err)
		return
	}
	if msgs == nil {
		msgs = []contracts.Message{}
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (e endpoints) get(w http.ResponseWriter, r *http.Request) {
	msg, err := e.svc.Get(r.Context(), id(r))
	if err != nil {
		e.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

func (e endpoints) update(w http.ResponseWriter, r *http.Request) {
	req, ok := e.decode(w, r)
	if !ok {
		return
	}

	msg, err := e.svc.Update(r.Context(), id(r), req)
	if err != nil {
		e.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

func (e endpoints) delete(w http.ResponseWriter, r *http.Request) {
	if err := e.svc.Delete(r.Context(), id(r)); err != nil {
		e.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (e endpoints) decode(w http.ResponseWriter, r *http.Request) (contracts.ProduceRequest, bool) {
	var req contracts.ProduceRequest

	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer body.Close()

	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("%v: malformed JSON body: %v", service.ErrInvalidInput, err)})
		return req, false
	}
	return req, true
}
