package services

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taxi-fleet-service/internal/core/domain"
	"taxi-fleet-service/internal/core/ports/driven"
	"taxi-fleet-service/internal/core/ports/driving"
)

// DriverRepositoryImpl implements driving.DriverRepository.
type DriverRepositoryImpl struct {
	store *entityStore[domain.Driver, *domain.Driver]
}

// NewDriverRepository creates a new DriverRepositoryImpl.
func NewDriverRepository(logger *zap.Logger, graph driving.EntityGraph, rights driving.RightsIndex, records driven.RecordStore[domain.Driver]) (*DriverRepositoryImpl, error) {
	store, err := newEntityStore(logger, graph, rights, records, validateDriver, applyDriver)
	if err != nil {
		return nil, err
	}
	return &DriverRepositoryImpl{store: store}, nil
}

func (r *DriverRepositoryImpl) AddOrUpdateDriver(agentGUID uuid.UUID, driver *domain.Driver) (*domain.Driver, error) {
	return r.store.addOrUpdate(agentGUID, driver)
}

func (r *DriverRepositoryImpl) DeleteDriver(agentGUID uuid.UUID, driver *domain.Driver) error {
	return r.store.delete(agentGUID, driver)
}

func (r *DriverRepositoryImpl) GetDriversByGUIDs(agentGUID uuid.UUID, guids []uuid.UUID) ([]*domain.Driver, error) {
	return r.store.getByGUIDs(agentGUID, guids)
}

func validateDriver(driver *domain.Driver) error {
	if driver.Surname == "" {
		return fmt.Errorf("%w: driver surname is empty", domain.ErrInvalidArgument)
	}
	if driver.Name == "" {
		return fmt.Errorf("%w: driver name is empty", domain.ErrInvalidArgument)
	}
	if driver.Birthday.IsZero() {
		return fmt.Errorf("%w: driver birthday is not set", domain.ErrInvalidArgument)
	}
	return nil
}

func applyDriver(dst, src *domain.Driver) {
	dst.Name = src.Name
	dst.Surname = src.Surname
	dst.Patronymic = src.Patronymic
	dst.Birthday = src.Birthday
	dst.LicenseSerialCode = src.LicenseSerialCode
	dst.LicenseNumberCode = src.LicenseNumberCode
}
