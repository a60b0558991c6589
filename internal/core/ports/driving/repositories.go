package driving

import (
	"time"

	"github.com/google/uuid"

	"taxi-fleet-service/internal/core/domain"
)

// AgentRepository exposes agent CRUD guarded by rights and ownership checks.
type AgentRepository interface {
	AddOrUpdateAgent(agentGUID uuid.UUID, agent *domain.Agent) (*domain.Agent, error)
	DeleteAgent(agentGUID uuid.UUID, agent *domain.Agent) error
	GetAgentsByGUIDs(agentGUID uuid.UUID, guids []uuid.UUID) ([]*domain.Agent, error)
}

// CarRepository exposes car CRUD guarded by rights and ownership checks.
type CarRepository interface {
	AddOrUpdateCar(agentGUID uuid.UUID, car *domain.Car) (*domain.Car, error)
	DeleteCar(agentGUID uuid.UUID, car *domain.Car) error
	GetCarsByGUIDs(agentGUID uuid.UUID, guids []uuid.UUID) ([]*domain.Car, error)
}

// DriverRepository exposes driver CRUD guarded by rights and ownership checks.
type DriverRepository interface {
	AddOrUpdateDriver(agentGUID uuid.UUID, driver *domain.Driver) (*domain.Driver, error)
	DeleteDriver(agentGUID uuid.UUID, driver *domain.Driver) error
	GetDriversByGUIDs(agentGUID uuid.UUID, guids []uuid.UUID) ([]*domain.Driver, error)
}

// CarRentalRepository tracks rentals between cars and drivers the acting
// owner can see in the entity graph.
type CarRentalRepository interface {
	AddRental(ownerGUID, carGUID, driverGUID uuid.UUID) (*domain.CarRental, error)
	CloseRental(ownerGUID, carGUID, driverGUID uuid.UUID) (*domain.CarRental, error)
	// DeleteRental force-closes and flags the open rental for the pair.
	// A rental must still be open to be deletable.
	DeleteRental(ownerGUID, carGUID, driverGUID uuid.UUID) error
	GetLastRentalByCar(ownerGUID, carGUID uuid.UUID) (*domain.CarRental, error)
	GetLastRentalByDriver(ownerGUID, driverGUID uuid.UUID) (*domain.CarRental, error)
	GetRentalByCar(ownerGUID, carGUID uuid.UUID, startDate, endDate time.Time) ([]*domain.CarRental, error)
	GetRentalByDriver(ownerGUID, driverGUID uuid.UUID, startDate, endDate time.Time) ([]*domain.CarRental, error)
}
