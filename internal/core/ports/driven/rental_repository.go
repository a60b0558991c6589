package driven

import (
	"time"

	"github.com/google/uuid"

	"taxi-fleet-service/internal/core/domain"
)

// RentalRepository defines the interface for rental record persistence.
// "Open" means IsClose is false.
type RentalRepository interface {
	// FindOpen returns the open rental for the (car, driver) pair, or nil
	// when none exists.
	FindOpen(carGUID, driverGUID uuid.UUID) (*domain.CarRental, error)
	ListOpenByCar(carGUID uuid.UUID) ([]*domain.CarRental, error)
	ListOpenByDriver(driverGUID uuid.UUID) ([]*domain.CarRental, error)
	// ListOpenByCarOverlapping returns open rentals of the car whose
	// [start, end] interval overlaps [startDate, endDate].
	ListOpenByCarOverlapping(carGUID uuid.UUID, startDate, endDate time.Time) ([]*domain.CarRental, error)
	ListOpenByDriverOverlapping(driverGUID uuid.UUID, startDate, endDate time.Time) ([]*domain.CarRental, error)
	Add(rental *domain.CarRental) error
	Save(rental *domain.CarRental) error
}
