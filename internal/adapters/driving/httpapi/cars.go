package httpapi

import (
	"net/http"

	"taxi-fleet-service/internal/core/domain"
)

func (s *Server) handleAddOrUpdateCar(w http.ResponseWriter, r *http.Request) {
	owner, ok := actingAgent(w, r)
	if !ok {
		return
	}
	var car domain.Car
	if !decodeBody(w, r, &car) {
		return
	}
	saved, err := s.cars.AddOrUpdateCar(owner, &car)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteCar(w http.ResponseWriter, r *http.Request) {
	owner, ok := actingAgent(w, r)
	if !ok {
		return
	}
	var car domain.Car
	if !decodeBody(w, r, &car) {
		return
	}
	if err := s.cars.DeleteCar(owner, &car); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleGetCars(w http.ResponseWriter, r *http.Request) {
	owner, ok := actingAgent(w, r)
	if !ok {
		return
	}
	var req guidsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	cars, err := s.cars.GetCarsByGUIDs(owner, req.GUIDs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cars)
}
