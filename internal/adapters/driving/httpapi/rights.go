package httpapi

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"taxi-fleet-service/internal/core/domain"
)

type updateRightsRequest struct {
	AgentGUID  uuid.UUID `json:"agent_guid"`
	EntityType string    `json:"entity_type"`
	Operations []string  `json:"operations"`
}

func (s *Server) handleGetRights(w http.ResponseWriter, r *http.Request) {
	owner, ok := actingAgent(w, r)
	if !ok {
		return
	}
	entityType, err := domain.ParseEntityType(mux.Vars(r)["type"])
	if err != nil {
		writeError(w, err)
		return
	}
	ops, err := s.rights.GetRights(owner, entityType)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]domain.Operations{"operations": ops})
}

func (s *Server) handleUpdateRights(w http.ResponseWriter, r *http.Request) {
	owner, ok := actingAgent(w, r)
	if !ok {
		return
	}
	var req updateRightsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	entityType, err := domain.ParseEntityType(req.EntityType)
	if err != nil {
		writeError(w, err)
		return
	}
	// An omitted operations field stays nil so the service rejects it; an
	// explicit empty list is a valid revoke-all.
	var ops domain.Operations
	if req.Operations != nil {
		ops = make(domain.Operations, 0, len(req.Operations))
		for _, raw := range req.Operations {
			op, err := domain.ParseOperation(raw)
			if err != nil {
				writeError(w, err)
				return
			}
			ops = append(ops, op)
		}
	}
	if err := s.rights.UpdateRights(owner, req.AgentGUID, entityType, ops); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}
