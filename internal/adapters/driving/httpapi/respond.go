package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"taxi-fleet-service/internal/core/domain"
)

const agentHeader = "X-Agent-Guid"

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// writeError maps the domain error kinds onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrAccessDenied):
		status = http.StatusForbidden
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// actingAgent extracts the caller's agent GUID from the request header. A
// missing header yields uuid.Nil, which every service rejects as an invalid
// argument.
func actingAgent(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := r.Header.Get(agentHeader)
	if raw == "" {
		return uuid.Nil, true
	}
	guid, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, fmt.Errorf("%w: malformed %s header", domain.ErrInvalidArgument, agentHeader))
		return uuid.Nil, false
	}
	return guid, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, fmt.Errorf("%w: malformed request body", domain.ErrInvalidArgument))
		return false
	}
	return true
}

func pathGUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := mux.Vars(r)[name]
	guid, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: malformed %s in path", domain.ErrInvalidArgument, name)
	}
	return guid, nil
}
