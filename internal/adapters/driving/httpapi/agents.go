package httpapi

import (
	"net/http"

	"github.com/google/uuid"

	"taxi-fleet-service/internal/core/domain"
)

type guidsRequest struct {
	GUIDs []uuid.UUID `json:"guids"`
}

func (s *Server) handleAddOrUpdateAgent(w http.ResponseWriter, r *http.Request) {
	owner, ok := actingAgent(w, r)
	if !ok {
		return
	}
	var agent domain.Agent
	if !decodeBody(w, r, &agent) {
		return
	}
	saved, err := s.agents.AddOrUpdateAgent(owner, &agent)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteAgent(w http.ResponseWriter, r *http.Request) {
	owner, ok := actingAgent(w, r)
	if !ok {
		return
	}
	var agent domain.Agent
	if !decodeBody(w, r, &agent) {
		return
	}
	if err := s.agents.DeleteAgent(owner, &agent); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleGetAgents(w http.ResponseWriter, r *http.Request) {
	owner, ok := actingAgent(w, r)
	if !ok {
		return
	}
	var req guidsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	agents, err := s.agents.GetAgentsByGUIDs(owner, req.GUIDs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, agents)
}
