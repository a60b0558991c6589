package services

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taxi-fleet-service/internal/core/domain"
	"taxi-fleet-service/internal/core/ports/driven"
	"taxi-fleet-service/internal/core/ports/driving"
)

// CarRepositoryImpl implements driving.CarRepository.
type CarRepositoryImpl struct {
	store *entityStore[domain.Car, *domain.Car]
}

// NewCarRepository creates a new CarRepositoryImpl.
func NewCarRepository(logger *zap.Logger, graph driving.EntityGraph, rights driving.RightsIndex, records driven.RecordStore[domain.Car]) (*CarRepositoryImpl, error) {
	store, err := newEntityStore(logger, graph, rights, records, validateCar, applyCar)
	if err != nil {
		return nil, err
	}
	return &CarRepositoryImpl{store: store}, nil
}

func (r *CarRepositoryImpl) AddOrUpdateCar(agentGUID uuid.UUID, car *domain.Car) (*domain.Car, error) {
	return r.store.addOrUpdate(agentGUID, car)
}

func (r *CarRepositoryImpl) DeleteCar(agentGUID uuid.UUID, car *domain.Car) error {
	return r.store.delete(agentGUID, car)
}

func (r *CarRepositoryImpl) GetCarsByGUIDs(agentGUID uuid.UUID, guids []uuid.UUID) ([]*domain.Car, error) {
	return r.store.getByGUIDs(agentGUID, guids)
}

func validateCar(car *domain.Car) error {
	if car.Number == "" {
		return fmt.Errorf("%w: car number is empty", domain.ErrInvalidArgument)
	}
	return nil
}

func applyCar(dst, src *domain.Car) {
	dst.Number = src.Number
	dst.VINCode = src.VINCode
	dst.ProductionDate = src.ProductionDate
	dst.SerialCode = src.SerialCode
	dst.NumberCode = src.NumberCode
	dst.Model = src.Model
	dst.Make = src.Make
	dst.Distance = src.Distance
}
