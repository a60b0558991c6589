package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"taxi-fleet-service/internal/core/ports/driving"
)

// Server exposes the fleet services over HTTP. The acting agent is conveyed
// in the X-Agent-Guid header on every authenticated route.
type Server struct {
	logger  *zap.Logger
	graph   driving.EntityGraph
	rights  driving.RightsIndex
	agents  driving.AgentRepository
	cars    driving.CarRepository
	drivers driving.DriverRepository
	rentals driving.CarRentalRepository
}

// NewServer creates a Server over the given services.
func NewServer(
	logger *zap.Logger,
	graph driving.EntityGraph,
	rights driving.RightsIndex,
	agents driving.AgentRepository,
	cars driving.CarRepository,
	drivers driving.DriverRepository,
	rentals driving.CarRentalRepository,
) *Server {
	return &Server{
		logger:  logger,
		graph:   graph,
		rights:  rights,
		agents:  agents,
		cars:    cars,
		drivers: drivers,
		rentals: rentals,
	}
}

// Router builds the HTTP route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/agents", s.handleAddOrUpdateAgent).Methods(http.MethodPost)
	api.HandleFunc("/agents", s.handleDeleteAgent).Methods(http.MethodDelete)
	api.HandleFunc("/agents/query", s.handleGetAgents).Methods(http.MethodPost)

	api.HandleFunc("/cars", s.handleAddOrUpdateCar).Methods(http.MethodPost)
	api.HandleFunc("/cars", s.handleDeleteCar).Methods(http.MethodDelete)
	api.HandleFunc("/cars/query", s.handleGetCars).Methods(http.MethodPost)

	api.HandleFunc("/drivers", s.handleAddOrUpdateDriver).Methods(http.MethodPost)
	api.HandleFunc("/drivers", s.handleDeleteDriver).Methods(http.MethodDelete)
	api.HandleFunc("/drivers/query", s.handleGetDrivers).Methods(http.MethodPost)

	api.HandleFunc("/links", s.handleAddLink).Methods(http.MethodPost)
	api.HandleFunc("/links", s.handleDeleteLink).Methods(http.MethodDelete)
	api.HandleFunc("/links/{type}", s.handleGetLinkedEntities).Methods(http.MethodGet)

	api.HandleFunc("/rights/{type}", s.handleGetRights).Methods(http.MethodGet)
	api.HandleFunc("/rights", s.handleUpdateRights).Methods(http.MethodPut)

	api.HandleFunc("/rentals", s.handleAddRental).Methods(http.MethodPost)
	api.HandleFunc("/rentals/close", s.handleCloseRental).Methods(http.MethodPost)
	api.HandleFunc("/rentals", s.handleDeleteRental).Methods(http.MethodDelete)
	api.HandleFunc("/rentals/car/{guid}/last", s.handleLastRentalByCar).Methods(http.MethodGet)
	api.HandleFunc("/rentals/driver/{guid}/last", s.handleLastRentalByDriver).Methods(http.MethodGet)
	api.HandleFunc("/rentals/car/{guid}", s.handleRentalsByCar).Methods(http.MethodGet)
	api.HandleFunc("/rentals/driver/{guid}", s.handleRentalsByDriver).Methods(http.MethodGet)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)))
	})
}
