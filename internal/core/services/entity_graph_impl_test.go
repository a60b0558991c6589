package services

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taxi-fleet-service/internal/core/domain"
)

func TestEntityGraphRoundTrip(t *testing.T) {
	ts := newTestStack(t)
	owner := uuid.New()
	car := uuid.New()

	if err := ts.graph.AddEntity(owner, car, domain.EntityTypeCar); err != nil {
		t.Fatalf("AddEntity failed: %v", err)
	}

	guids, err := ts.graph.GetEntities(owner, domain.EntityTypeCar)
	if err != nil {
		t.Fatalf("GetEntities failed: %v", err)
	}
	if len(guids) != 1 || guids[0] != car {
		t.Fatalf("expected [%s], got %v", car, guids)
	}

	ok, err := ts.graph.Exist(owner, car, domain.EntityTypeCar)
	if err != nil {
		t.Fatalf("Exist failed: %v", err)
	}
	if !ok {
		t.Fatal("expected link to exist")
	}
}

func TestEntityGraphColdCache(t *testing.T) {
	db := setupTestDB(t)
	ts := newTestStackOn(t, db)
	owner := uuid.New()
	car := uuid.New()

	if err := ts.graph.AddEntity(owner, car, domain.EntityTypeCar); err != nil {
		t.Fatalf("AddEntity failed: %v", err)
	}

	// A fresh service instance over the same database must rebuild its
	// buckets from the store.
	cold := newTestStackOn(t, db)
	guids, err := cold.graph.GetEntities(owner, domain.EntityTypeCar)
	if err != nil {
		t.Fatalf("GetEntities failed: %v", err)
	}
	if len(guids) != 1 || guids[0] != car {
		t.Fatalf("expected [%s], got %v", car, guids)
	}
}

func TestEntityGraphHierarchyVisibility(t *testing.T) {
	ts := newTestStack(t)
	agentA := uuid.New()
	agentB := uuid.New()
	carC := uuid.New()

	if err := ts.graph.AddEntity(agentA, agentB, domain.EntityTypeAgent); err != nil {
		t.Fatalf("AddEntity(A, B) failed: %v", err)
	}
	if err := ts.graph.AddEntity(agentB, carC, domain.EntityTypeCar); err != nil {
		t.Fatalf("AddEntity(B, C) failed: %v", err)
	}

	// A sees C through B.
	guids, err := ts.graph.GetEntities(agentA, domain.EntityTypeCar)
	if err != nil {
		t.Fatalf("GetEntities failed: %v", err)
	}
	if !containsGUID(guids, carC) {
		t.Fatalf("expected %s in %v", carC, guids)
	}

	// Exist stays strictly direct.
	ok, err := ts.graph.Exist(agentA, carC, domain.EntityTypeCar)
	if err != nil {
		t.Fatalf("Exist failed: %v", err)
	}
	if ok {
		t.Fatal("expected no direct link between A and C")
	}
	ok, err = ts.graph.Exist(agentB, carC, domain.EntityTypeCar)
	if err != nil {
		t.Fatalf("Exist failed: %v", err)
	}
	if !ok {
		t.Fatal("expected direct link between B and C")
	}
}

func TestEntityGraphHierarchyVisibilityColdCache(t *testing.T) {
	db := setupTestDB(t)
	ts := newTestStackOn(t, db)
	agentA := uuid.New()
	agentB := uuid.New()
	carC := uuid.New()

	if err := ts.graph.AddEntity(agentA, agentB, domain.EntityTypeAgent); err != nil {
		t.Fatalf("AddEntity(A, B) failed: %v", err)
	}
	if err := ts.graph.AddEntity(agentB, carC, domain.EntityTypeCar); err != nil {
		t.Fatalf("AddEntity(B, C) failed: %v", err)
	}

	cold := newTestStackOn(t, db)
	guids, err := cold.graph.GetEntities(agentA, domain.EntityTypeCar)
	if err != nil {
		t.Fatalf("GetEntities failed: %v", err)
	}
	if len(guids) != 1 || guids[0] != carC {
		t.Fatalf("expected [%s], got %v", carC, guids)
	}

	// The flattened read must not leak into the direct-ownership check.
	ok, err := cold.graph.Exist(agentA, carC, domain.EntityTypeCar)
	if err != nil {
		t.Fatalf("Exist failed: %v", err)
	}
	if ok {
		t.Fatal("expected no direct link between A and C after a cold read")
	}
	ok, err = cold.graph.Exist(agentB, carC, domain.EntityTypeCar)
	if err != nil {
		t.Fatalf("Exist failed: %v", err)
	}
	if !ok {
		t.Fatal("expected direct link between B and C")
	}

	// A warm re-read unions the same buckets again; no duplicates may appear.
	guids, err = cold.graph.GetEntities(agentA, domain.EntityTypeCar)
	if err != nil {
		t.Fatalf("GetEntities failed: %v", err)
	}
	if len(guids) != 1 || guids[0] != carC {
		t.Fatalf("expected [%s] on the warm read, got %v", carC, guids)
	}
}

func TestEntityGraphAddConflict(t *testing.T) {
	ts := newTestStack(t)
	owner := uuid.New()
	other := uuid.New()
	car := uuid.New()

	if err := ts.graph.AddEntity(owner, car, domain.EntityTypeCar); err != nil {
		t.Fatalf("AddEntity failed: %v", err)
	}
	err := ts.graph.AddEntity(other, car, domain.EntityTypeCar)
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestEntityGraphRelinkAfterDelete(t *testing.T) {
	ts := newTestStack(t)
	owner := uuid.New()
	other := uuid.New()
	car := uuid.New()

	if err := ts.graph.AddEntity(owner, car, domain.EntityTypeCar); err != nil {
		t.Fatalf("AddEntity failed: %v", err)
	}
	if err := ts.graph.DeleteEntity(owner, car, domain.EntityTypeCar); err != nil {
		t.Fatalf("DeleteEntity failed: %v", err)
	}
	// A flagged link no longer blocks a new owner.
	if err := ts.graph.AddEntity(other, car, domain.EntityTypeCar); err != nil {
		t.Fatalf("AddEntity after delete failed: %v", err)
	}
}

func TestEntityGraphDeleteErrors(t *testing.T) {
	ts := newTestStack(t)
	owner := uuid.New()
	stranger := uuid.New()
	car := uuid.New()

	err := ts.graph.DeleteEntity(owner, car, domain.EntityTypeCar)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := ts.graph.AddEntity(owner, car, domain.EntityTypeCar); err != nil {
		t.Fatalf("AddEntity failed: %v", err)
	}

	err = ts.graph.DeleteEntity(stranger, car, domain.EntityTypeCar)
	if !errors.Is(err, domain.ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}

	err = ts.graph.DeleteEntity(owner, car, domain.EntityTypeDriver)
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for wrong type, got %v", err)
	}
}

func TestEntityGraphGrandparentDelete(t *testing.T) {
	ts := newTestStack(t)
	agentA := uuid.New()
	agentB := uuid.New()
	carC := uuid.New()

	if err := ts.graph.AddEntity(agentA, agentB, domain.EntityTypeAgent); err != nil {
		t.Fatalf("AddEntity(A, B) failed: %v", err)
	}
	if err := ts.graph.AddEntity(agentB, carC, domain.EntityTypeCar); err != nil {
		t.Fatalf("AddEntity(B, C) failed: %v", err)
	}

	// A owns B, so A may unlink B's car.
	if err := ts.graph.DeleteEntity(agentA, carC, domain.EntityTypeCar); err != nil {
		t.Fatalf("DeleteEntity by grandparent failed: %v", err)
	}
	ok, err := ts.graph.Exist(agentB, carC, domain.EntityTypeCar)
	if err != nil {
		t.Fatalf("Exist failed: %v", err)
	}
	if ok {
		t.Fatal("expected link to be gone")
	}
}

func TestEntityGraphZeroIDs(t *testing.T) {
	ts := newTestStack(t)

	if _, err := ts.graph.GetEntities(uuid.Nil, domain.EntityTypeCar); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if err := ts.graph.AddEntity(uuid.Nil, uuid.New(), domain.EntityTypeCar); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if err := ts.graph.AddEntity(uuid.New(), uuid.Nil, domain.EntityTypeCar); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}

	// Exist treats a zero id as a plain miss.
	ok, err := ts.graph.Exist(uuid.Nil, uuid.New(), domain.EntityTypeCar)
	if err != nil || ok {
		t.Fatalf("expected (false, nil), got (%v, %v)", ok, err)
	}
}

func TestNewEntityGraphNilChecks(t *testing.T) {
	ts := newTestStack(t)

	if _, err := NewEntityGraph(nil, ts.links); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if _, err := NewEntityGraph(zap.NewNop(), nil); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}
