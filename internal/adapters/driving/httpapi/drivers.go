package httpapi

import (
	"net/http"

	"taxi-fleet-service/internal/core/domain"
)

func (s *Server) handleAddOrUpdateDriver(w http.ResponseWriter, r *http.Request) {
	owner, ok := actingAgent(w, r)
	if !ok {
		return
	}
	var driver domain.Driver
	if !decodeBody(w, r, &driver) {
		return
	}
	saved, err := s.drivers.AddOrUpdateDriver(owner, &driver)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteDriver(w http.ResponseWriter, r *http.Request) {
	owner, ok := actingAgent(w, r)
	if !ok {
		return
	}
	var driver domain.Driver
	if !decodeBody(w, r, &driver) {
		return
	}
	if err := s.drivers.DeleteDriver(owner, &driver); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleGetDrivers(w http.ResponseWriter, r *http.Request) {
	owner, ok := actingAgent(w, r)
	if !ok {
		return
	}
	var req guidsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	drivers, err := s.drivers.GetDriversByGUIDs(owner, req.GUIDs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, drivers)
}
