package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taxi-fleet-service/internal/core/domain"
	"taxi-fleet-service/internal/core/ports/driven"
	"taxi-fleet-service/internal/core/ports/driving"
	"taxi-fleet-service/internal/metrics"
)

// CarRentalRepositoryImpl implements driving.CarRentalRepository.
//
// Rentals carry no ownership link of their own; every operation is authorized
// through the graph visibility of the car and driver involved. Two secondary
// indexes (by car, by driver) are kept consistent with the store; a bucket
// freshly populated from a store query replaces any concurrent partial state.
type CarRentalRepositoryImpl struct {
	logger  *zap.Logger
	graph   driving.EntityGraph
	rights  driving.RightsIndex
	rentals driven.RentalRepository

	mu       sync.RWMutex
	byCar    map[uuid.UUID][]*domain.CarRental
	byDriver map[uuid.UUID][]*domain.CarRental
}

// NewCarRentalRepository creates a new CarRentalRepositoryImpl.
func NewCarRentalRepository(logger *zap.Logger, graph driving.EntityGraph, rights driving.RightsIndex, rentals driven.RentalRepository) (*CarRentalRepositoryImpl, error) {
	if logger == nil {
		return nil, fmt.Errorf("%w: logger is nil", domain.ErrInvalidArgument)
	}
	if graph == nil {
		return nil, fmt.Errorf("%w: entity graph is nil", domain.ErrInvalidArgument)
	}
	if rights == nil {
		return nil, fmt.Errorf("%w: rights index is nil", domain.ErrInvalidArgument)
	}
	if rentals == nil {
		return nil, fmt.Errorf("%w: rental repository is nil", domain.ErrInvalidArgument)
	}
	return &CarRentalRepositoryImpl{
		logger:   logger,
		graph:    graph,
		rights:   rights,
		rentals:  rentals,
		byCar:    make(map[uuid.UUID][]*domain.CarRental),
		byDriver: make(map[uuid.UUID][]*domain.CarRental),
	}, nil
}

// AddRental opens a new rental of the car by the driver.
func (r *CarRentalRepositoryImpl) AddRental(ownerGUID, carGUID, driverGUID uuid.UUID) (*domain.CarRental, error) {
	if err := r.checkPair(ownerGUID, carGUID, driverGUID, domain.OperationAddOrUpdate); err != nil {
		return nil, err
	}

	rental := &domain.CarRental{
		CarGUID:         carGUID,
		DriverGUID:      driverGUID,
		StartRentalDate: time.Now().UTC(),
	}
	if err := r.rentals.Add(rental); err != nil {
		return nil, err
	}

	r.insertIntoIndexes(rental)
	r.logger.Info("added rental",
		zap.String("owner_guid", ownerGUID.String()),
		zap.String("car_guid", carGUID.String()),
		zap.String("driver_guid", driverGUID.String()))
	return rental, nil
}

// CloseRental ends the open rental for the pair.
func (r *CarRentalRepositoryImpl) CloseRental(ownerGUID, carGUID, driverGUID uuid.UUID) (*domain.CarRental, error) {
	if err := r.checkPair(ownerGUID, carGUID, driverGUID, domain.OperationAddOrUpdate); err != nil {
		return nil, err
	}
	rental, err := r.rentals.FindOpen(carGUID, driverGUID)
	if err != nil {
		return nil, err
	}
	if rental == nil {
		return nil, fmt.Errorf("%w: open rental of car %s by driver %s",
			domain.ErrNotFound, carGUID, driverGUID)
	}

	rental.EndRentalDate = time.Now().UTC()
	rental.IsClose = true
	if err := r.rentals.Save(rental); err != nil {
		return nil, err
	}

	r.reinsertIntoIndexes(rental)
	r.logger.Info("closed rental",
		zap.String("owner_guid", ownerGUID.String()),
		zap.String("car_guid", carGUID.String()),
		zap.String("driver_guid", driverGUID.String()))
	return rental, nil
}

// DeleteRental force-closes and flags the open rental for the pair. A closed
// rental is not deletable through this path.
func (r *CarRentalRepositoryImpl) DeleteRental(ownerGUID, carGUID, driverGUID uuid.UUID) error {
	if err := r.checkPair(ownerGUID, carGUID, driverGUID, domain.OperationDelete); err != nil {
		return err
	}
	rental, err := r.rentals.FindOpen(carGUID, driverGUID)
	if err != nil {
		return err
	}
	if rental == nil {
		return fmt.Errorf("%w: open rental of car %s by driver %s",
			domain.ErrNotFound, carGUID, driverGUID)
	}

	rental.EndRentalDate = time.Now().UTC()
	rental.IsClose = true
	rental.IsDelete = true
	if err := r.rentals.Save(rental); err != nil {
		return err
	}

	r.removeFromIndexes(rental)
	r.logger.Info("deleted rental",
		zap.String("owner_guid", ownerGUID.String()),
		zap.String("car_guid", carGUID.String()),
		zap.String("driver_guid", driverGUID.String()))
	return nil
}

// GetLastRentalByCar returns the car's rental with the latest start date.
func (r *CarRentalRepositoryImpl) GetLastRentalByCar(ownerGUID, carGUID uuid.UUID) (*domain.CarRental, error) {
	if err := r.checkOne(ownerGUID, carGUID, domain.EntityTypeCar); err != nil {
		return nil, err
	}

	r.mu.RLock()
	bucket, ok := r.byCar[carGUID]
	last := lastByStart(bucket)
	r.mu.RUnlock()
	if ok && last != nil {
		metrics.CacheHit("rental_index")
		return last, nil
	}
	metrics.CacheMiss("rental_index")

	rentals, err := r.rentals.ListOpenByCar(carGUID)
	if err != nil {
		return nil, err
	}
	if len(rentals) == 0 {
		return nil, fmt.Errorf("%w: rental of car %s", domain.ErrNotFound, carGUID)
	}
	r.replaceCarBucket(carGUID, rentals)
	return lastByStart(rentals), nil
}

// GetLastRentalByDriver returns the driver's rental with the latest start date.
func (r *CarRentalRepositoryImpl) GetLastRentalByDriver(ownerGUID, driverGUID uuid.UUID) (*domain.CarRental, error) {
	if err := r.checkOne(ownerGUID, driverGUID, domain.EntityTypeDriver); err != nil {
		return nil, err
	}

	r.mu.RLock()
	bucket, ok := r.byDriver[driverGUID]
	last := lastByStart(bucket)
	r.mu.RUnlock()
	if ok && last != nil {
		metrics.CacheHit("rental_index")
		return last, nil
	}
	metrics.CacheMiss("rental_index")

	rentals, err := r.rentals.ListOpenByDriver(driverGUID)
	if err != nil {
		return nil, err
	}
	if len(rentals) == 0 {
		return nil, fmt.Errorf("%w: rental of driver %s", domain.ErrNotFound, driverGUID)
	}
	r.replaceDriverBucket(driverGUID, rentals)
	return lastByStart(rentals), nil
}

// GetRentalByCar returns the car's rentals whose interval overlaps
// [startDate, endDate].
func (r *CarRentalRepositoryImpl) GetRentalByCar(ownerGUID, carGUID uuid.UUID, startDate, endDate time.Time) ([]*domain.CarRental, error) {
	if err := r.checkOne(ownerGUID, carGUID, domain.EntityTypeCar); err != nil {
		return nil, err
	}

	r.mu.RLock()
	bucket, ok := r.byCar[carGUID]
	filtered := filterOverlapping(bucket, startDate, endDate)
	r.mu.RUnlock()
	if ok {
		metrics.CacheHit("rental_index")
		if len(filtered) == 0 {
			return nil, fmt.Errorf("%w: rental of car %s", domain.ErrNotFound, carGUID)
		}
		return filtered, nil
	}
	metrics.CacheMiss("rental_index")

	rentals, err := r.rentals.ListOpenByCarOverlapping(carGUID, startDate, endDate)
	if err != nil {
		return nil, err
	}
	if len(rentals) == 0 {
		return nil, fmt.Errorf("%w: rental of car %s", domain.ErrNotFound, carGUID)
	}
	r.replaceCarBucket(carGUID, rentals)
	return rentals, nil
}

// GetRentalByDriver returns the driver's rentals whose interval overlaps
// [startDate, endDate].
func (r *CarRentalRepositoryImpl) GetRentalByDriver(ownerGUID, driverGUID uuid.UUID, startDate, endDate time.Time) ([]*domain.CarRental, error) {
	if err := r.checkOne(ownerGUID, driverGUID, domain.EntityTypeDriver); err != nil {
		return nil, err
	}

	r.mu.RLock()
	bucket, ok := r.byDriver[driverGUID]
	filtered := filterOverlapping(bucket, startDate, endDate)
	r.mu.RUnlock()
	if ok {
		metrics.CacheHit("rental_index")
		if len(filtered) == 0 {
			return nil, fmt.Errorf("%w: rental of driver %s", domain.ErrNotFound, driverGUID)
		}
		return filtered, nil
	}
	metrics.CacheMiss("rental_index")

	rentals, err := r.rentals.ListOpenByDriverOverlapping(driverGUID, startDate, endDate)
	if err != nil {
		return nil, err
	}
	if len(rentals) == 0 {
		return nil, fmt.Errorf("%w: rental of driver %s", domain.ErrNotFound, driverGUID)
	}
	r.replaceDriverBucket(driverGUID, rentals)
	return rentals, nil
}

// checkPair validates the ids, the CarRental right and the graph visibility
// of both the car and the driver.
func (r *CarRentalRepositoryImpl) checkPair(ownerGUID, carGUID, driverGUID uuid.UUID, op domain.Operation) error {
	if ownerGUID == uuid.Nil {
		return fmt.Errorf("%w: owner guid is empty", domain.ErrInvalidArgument)
	}
	if carGUID == uuid.Nil {
		return fmt.Errorf("%w: car guid is empty", domain.ErrInvalidArgument)
	}
	if driverGUID == uuid.Nil {
		return fmt.Errorf("%w: driver guid is empty", domain.ErrInvalidArgument)
	}
	ops, err := r.rights.GetRights(ownerGUID, domain.EntityTypeCarRental)
	if err != nil {
		return err
	}
	if !ops.Contains(op) {
		return fmt.Errorf("%w: agent %s lacks %s on %s",
			domain.ErrAccessDenied, ownerGUID, op, domain.EntityTypeCarRental)
	}
	if err := r.requireVisible(ownerGUID, carGUID, domain.EntityTypeCar); err != nil {
		return err
	}
	return r.requireVisible(ownerGUID, driverGUID, domain.EntityTypeDriver)
}

// checkOne validates the ids, the Select right and the visibility of a single
// car or driver.
func (r *CarRentalRepositoryImpl) checkOne(ownerGUID, entityGUID uuid.UUID, entityType domain.EntityType) error {
	if ownerGUID == uuid.Nil {
		return fmt.Errorf("%w: owner guid is empty", domain.ErrInvalidArgument)
	}
	if entityGUID == uuid.Nil {
		return fmt.Errorf("%w: %s guid is empty", domain.ErrInvalidArgument, entityType)
	}
	ops, err := r.rights.GetRights(ownerGUID, domain.EntityTypeCarRental)
	if err != nil {
		return err
	}
	if !ops.Contains(domain.OperationSelect) {
		return fmt.Errorf("%w: agent %s cannot select %s",
			domain.ErrAccessDenied, ownerGUID, domain.EntityTypeCarRental)
	}
	return r.requireVisible(ownerGUID, entityGUID, entityType)
}

func (r *CarRentalRepositoryImpl) requireVisible(ownerGUID, entityGUID uuid.UUID, entityType domain.EntityType) error {
	visible, err := r.graph.GetEntities(ownerGUID, entityType)
	if err != nil {
		return err
	}
	if !containsGUID(visible, entityGUID) {
		return fmt.Errorf("%w: agent %s cannot access %s %s",
			domain.ErrAccessDenied, ownerGUID, entityType, entityGUID)
	}
	return nil
}

func (r *CarRentalRepositoryImpl) insertIntoIndexes(rental *domain.CarRental) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byCar[rental.CarGUID] = append(r.byCar[rental.CarGUID], rental)
	r.byDriver[rental.DriverGUID] = append(r.byDriver[rental.DriverGUID], rental)
}

// reinsertIntoIndexes replaces the entry with the rental's local key in both
// buckets, appending when absent.
func (r *CarRentalRepositoryImpl) reinsertIntoIndexes(rental *domain.CarRental) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byCar[rental.CarGUID] = append(removeByID(r.byCar[rental.CarGUID], rental.ID), rental)
	r.byDriver[rental.DriverGUID] = append(removeByID(r.byDriver[rental.DriverGUID], rental.ID), rental)
}

func (r *CarRentalRepositoryImpl) removeFromIndexes(rental *domain.CarRental) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rest := removeByID(r.byCar[rental.CarGUID], rental.ID); len(rest) == 0 {
		delete(r.byCar, rental.CarGUID)
	} else {
		r.byCar[rental.CarGUID] = rest
	}
	if rest := removeByID(r.byDriver[rental.DriverGUID], rental.ID); len(rest) == 0 {
		delete(r.byDriver, rental.DriverGUID)
	} else {
		r.byDriver[rental.DriverGUID] = rest
	}
}

func (r *CarRentalRepositoryImpl) replaceCarBucket(carGUID uuid.UUID, rentals []*domain.CarRental) {
	r.mu.Lock()
	r.byCar[carGUID] = append([]*domain.CarRental(nil), rentals...)
	r.mu.Unlock()
}

func (r *CarRentalRepositoryImpl) replaceDriverBucket(driverGUID uuid.UUID, rentals []*domain.CarRental) {
	r.mu.Lock()
	r.byDriver[driverGUID] = append([]*domain.CarRental(nil), rentals...)
	r.mu.Unlock()
}

func removeByID(rentals []*domain.CarRental, id uint) []*domain.CarRental {
	for i, v := range rentals {
		if v.ID == id {
			return append(rentals[:i], rentals[i+1:]...)
		}
	}
	return rentals
}

func lastByStart(rentals []*domain.CarRental) *domain.CarRental {
	var last *domain.CarRental
	for _, v := range rentals {
		if last == nil || v.StartRentalDate.After(last.StartRentalDate) {
			last = v
		}
	}
	return last
}

// filterOverlapping keeps rentals whose [start, end] interval overlaps the
// requested [startDate, endDate] window.
func filterOverlapping(rentals []*domain.CarRental, startDate, endDate time.Time) []*domain.CarRental {
	var out []*domain.CarRental
	for _, v := range rentals {
		if !startDate.After(v.EndRentalDate) && !endDate.Before(v.StartRentalDate) {
			out = append(out, v)
		}
	}
	return out
}
