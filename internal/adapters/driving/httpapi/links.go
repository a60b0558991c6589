package httpapi

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"taxi-fleet-service/internal/core/domain"
)

type linkRequest struct {
	EntityGUID uuid.UUID `json:"entity_guid"`
	EntityType string    `json:"entity_type"`
}

func (s *Server) handleAddLink(w http.ResponseWriter, r *http.Request) {
	owner, ok := actingAgent(w, r)
	if !ok {
		return
	}
	var req linkRequest
	if !decodeBody(w, r, &req) {
		return
	}
	entityType, err := domain.ParseEntityType(req.EntityType)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.graph.AddEntity(owner, req.EntityGUID, entityType); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, nil)
}

func (s *Server) handleDeleteLink(w http.ResponseWriter, r *http.Request) {
	owner, ok := actingAgent(w, r)
	if !ok {
		return
	}
	var req linkRequest
	if !decodeBody(w, r, &req) {
		return
	}
	entityType, err := domain.ParseEntityType(req.EntityType)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.graph.DeleteEntity(owner, req.EntityGUID, entityType); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleGetLinkedEntities(w http.ResponseWriter, r *http.Request) {
	owner, ok := actingAgent(w, r)
	if !ok {
		return
	}
	entityType, err := domain.ParseEntityType(mux.Vars(r)["type"])
	if err != nil {
		writeError(w, err)
		return
	}
	guids, err := s.graph.GetEntities(owner, entityType)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]uuid.UUID{"guids": guids})
}
