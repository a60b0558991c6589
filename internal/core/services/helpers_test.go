package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"taxi-fleet-service/internal/adapters/driven/persistence/gormdb"
	"taxi-fleet-service/internal/core/domain"
	"taxi-fleet-service/internal/core/ports/driven"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	return db
}

// testStack wires the full service stack over one in-memory database.
type testStack struct {
	db            *gorm.DB
	links         driven.EntityLinkRepository
	rightRecords  driven.RightRepository
	rentalRecords driven.RentalRepository

	graph   *EntityGraphImpl
	rights  *RightsIndexImpl
	agents  *AgentRepositoryImpl
	cars    *CarRepositoryImpl
	drivers *DriverRepositoryImpl
	rentals *CarRentalRepositoryImpl
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()
	return newTestStackOn(t, setupTestDB(t))
}

// newTestStackOn builds services over an existing database so tests can
// simulate a cold restart against persisted state.
func newTestStackOn(t *testing.T, db *gorm.DB) *testStack {
	t.Helper()
	logger := zap.NewNop()

	links := gormdb.NewEntityLinkRepository(db)
	rightRecords := gormdb.NewRightRepository(db)
	rentalRecords := gormdb.NewRentalRepository(db)
	agentRecords := gormdb.NewRecordStore[domain.Agent](db)
	carRecords := gormdb.NewRecordStore[domain.Car](db)
	driverRecords := gormdb.NewRecordStore[domain.Driver](db)

	graph, err := NewEntityGraph(logger, links)
	if err != nil {
		t.Fatalf("failed to create entity graph: %v", err)
	}
	rights, err := NewRightsIndex(logger, rightRecords, graph)
	if err != nil {
		t.Fatalf("failed to create rights index: %v", err)
	}
	agents, err := NewAgentRepository(logger, graph, rights, agentRecords)
	if err != nil {
		t.Fatalf("failed to create agent repository: %v", err)
	}
	cars, err := NewCarRepository(logger, graph, rights, carRecords)
	if err != nil {
		t.Fatalf("failed to create car repository: %v", err)
	}
	drivers, err := NewDriverRepository(logger, graph, rights, driverRecords)
	if err != nil {
		t.Fatalf("failed to create driver repository: %v", err)
	}
	rentals, err := NewCarRentalRepository(logger, graph, rights, rentalRecords)
	if err != nil {
		t.Fatalf("failed to create rental repository: %v", err)
	}

	return &testStack{
		db:            db,
		links:         links,
		rightRecords:  rightRecords,
		rentalRecords: rentalRecords,
		graph:         graph,
		rights:        rights,
		agents:        agents,
		cars:          cars,
		drivers:       drivers,
		rentals:       rentals,
	}
}

// grantDirect writes a rights record straight into the backing store,
// bypassing the Admin-on-Agent gate. Tests use it to bootstrap a root agent.
func grantDirect(t *testing.T, rights driven.RightRepository, agentGUID uuid.UUID, entityType domain.EntityType, ops ...domain.Operation) {
	t.Helper()
	now := time.Now().UTC()
	err := rights.Add(&domain.Right{
		AgentGUID:  agentGUID,
		EntityType: entityType,
		Operations: domain.Operations(ops),
		CreateTime: now,
		UpdateTime: now,
	})
	if err != nil {
		t.Fatalf("failed to seed rights: %v", err)
	}
}

// newRootAgent seeds an agent GUID with full rights on every entity type.
func newRootAgent(t *testing.T, ts *testStack) uuid.UUID {
	t.Helper()
	root := uuid.New()
	for _, entityType := range []domain.EntityType{
		domain.EntityTypeAgent,
		domain.EntityTypeCar,
		domain.EntityTypeDriver,
		domain.EntityTypeCarRental,
	} {
		grantDirect(t, ts.rightRecords, root, entityType, domain.OperationAdmin)
	}
	return root
}

func mustCreateCar(t *testing.T, ts *testStack, owner uuid.UUID, number string) *domain.Car {
	t.Helper()
	car, err := ts.cars.AddOrUpdateCar(owner, &domain.Car{Number: number})
	if err != nil {
		t.Fatalf("failed to create car: %v", err)
	}
	return car
}

func mustCreateDriver(t *testing.T, ts *testStack, owner uuid.UUID, name, surname string) *domain.Driver {
	t.Helper()
	driver, err := ts.drivers.AddOrUpdateDriver(owner, &domain.Driver{
		Name:     name,
		Surname:  surname,
		Birthday: time.Date(1990, 4, 12, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("failed to create driver: %v", err)
	}
	return driver
}
