package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"taxi-fleet-service/internal/core/domain"
)

type rentalRequest struct {
	CarGUID    uuid.UUID `json:"car_guid"`
	DriverGUID uuid.UUID `json:"driver_guid"`
}

func (s *Server) handleAddRental(w http.ResponseWriter, r *http.Request) {
	owner, ok := actingAgent(w, r)
	if !ok {
		return
	}
	var req rentalRequest
	if !decodeBody(w, r, &req) {
		return
	}
	rental, err := s.rentals.AddRental(owner, req.CarGUID, req.DriverGUID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rental)
}

func (s *Server) handleCloseRental(w http.ResponseWriter, r *http.Request) {
	owner, ok := actingAgent(w, r)
	if !ok {
		return
	}
	var req rentalRequest
	if !decodeBody(w, r, &req) {
		return
	}
	rental, err := s.rentals.CloseRental(owner, req.CarGUID, req.DriverGUID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rental)
}

func (s *Server) handleDeleteRental(w http.ResponseWriter, r *http.Request) {
	owner, ok := actingAgent(w, r)
	if !ok {
		return
	}
	var req rentalRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.rentals.DeleteRental(owner, req.CarGUID, req.DriverGUID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleLastRentalByCar(w http.ResponseWriter, r *http.Request) {
	s.handleLastRental(w, r, s.rentals.GetLastRentalByCar)
}

func (s *Server) handleLastRentalByDriver(w http.ResponseWriter, r *http.Request) {
	s.handleLastRental(w, r, s.rentals.GetLastRentalByDriver)
}

func (s *Server) handleLastRental(w http.ResponseWriter, r *http.Request, lookup func(uuid.UUID, uuid.UUID) (*domain.CarRental, error)) {
	owner, ok := actingAgent(w, r)
	if !ok {
		return
	}
	guid, err := pathGUID(r, "guid")
	if err != nil {
		writeError(w, err)
		return
	}
	rental, err := lookup(owner, guid)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rental)
}

func (s *Server) handleRentalsByCar(w http.ResponseWriter, r *http.Request) {
	s.handleRentalRange(w, r, s.rentals.GetRentalByCar)
}

func (s *Server) handleRentalsByDriver(w http.ResponseWriter, r *http.Request) {
	s.handleRentalRange(w, r, s.rentals.GetRentalByDriver)
}

func (s *Server) handleRentalRange(w http.ResponseWriter, r *http.Request, lookup func(uuid.UUID, uuid.UUID, time.Time, time.Time) ([]*domain.CarRental, error)) {
	owner, ok := actingAgent(w, r)
	if !ok {
		return
	}
	guid, err := pathGUID(r, "guid")
	if err != nil {
		writeError(w, err)
		return
	}
	start, err := queryTime(r, "start")
	if err != nil {
		writeError(w, err)
		return
	}
	end, err := queryTime(r, "end")
	if err != nil {
		writeError(w, err)
		return
	}
	rentals, err := lookup(owner, guid, start, end)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rentals)
}

func queryTime(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: %s query parameter is required", domain.ErrInvalidArgument, name)
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be RFC 3339", domain.ErrInvalidArgument, name)
	}
	return t, nil
}
