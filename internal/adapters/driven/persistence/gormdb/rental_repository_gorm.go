package gormdb

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taxi-fleet-service/internal/core/domain"
	"taxi-fleet-service/internal/core/ports/driven"
)

// RentalRepositoryImpl implements driven.RentalRepository on GORM.
type RentalRepositoryImpl struct {
	db *gorm.DB
}

// NewRentalRepository creates a new RentalRepositoryImpl.
func NewRentalRepository(db *gorm.DB) driven.RentalRepository {
	if err := db.AutoMigrate(&domain.CarRental{}); err != nil {
		panic(fmt.Sprintf("failed to migrate car_rentals table: %v", err))
	}
	return &RentalRepositoryImpl{db: db}
}

func (r *RentalRepositoryImpl) FindOpen(carGUID, driverGUID uuid.UUID) (*domain.CarRental, error) {
	var rental domain.CarRental
	err := r.db.Where("car_guid = ? AND driver_guid = ? AND is_close = ?", carGUID, driverGUID, false).
		First(&rental).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rental, nil
}

func (r *RentalRepositoryImpl) ListOpenByCar(carGUID uuid.UUID) ([]*domain.CarRental, error) {
	return r.list("car_guid = ? AND is_close = ?", carGUID, false)
}

func (r *RentalRepositoryImpl) ListOpenByDriver(driverGUID uuid.UUID) ([]*domain.CarRental, error) {
	return r.list("driver_guid = ? AND is_close = ?", driverGUID, false)
}

func (r *RentalRepositoryImpl) ListOpenByCarOverlapping(carGUID uuid.UUID, startDate, endDate time.Time) ([]*domain.CarRental, error) {
	return r.list("car_guid = ? AND is_close = ? AND start_rental_date <= ? AND end_rental_date >= ?",
		carGUID, false, endDate, startDate)
}

func (r *RentalRepositoryImpl) ListOpenByDriverOverlapping(driverGUID uuid.UUID, startDate, endDate time.Time) ([]*domain.CarRental, error) {
	return r.list("driver_guid = ? AND is_close = ? AND start_rental_date <= ? AND end_rental_date >= ?",
		driverGUID, false, endDate, startDate)
}

func (r *RentalRepositoryImpl) Add(rental *domain.CarRental) error {
	return r.db.Create(rental).Error
}

func (r *RentalRepositoryImpl) Save(rental *domain.CarRental) error {
	return r.db.Save(rental).Error
}

func (r *RentalRepositoryImpl) list(query string, args ...any) ([]*domain.CarRental, error) {
	var rentals []domain.CarRental
	err := r.db.Where(query, args...).Order("id").Find(&rentals).Error
	if err != nil {
		return nil, err
	}
	out := make([]*domain.CarRental, 0, len(rentals))
	for i := range rentals {
		out = append(out, &rentals[i])
	}
	return out, nil
}
