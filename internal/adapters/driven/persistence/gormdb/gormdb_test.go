package gormdb

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"taxi-fleet-service/internal/core/domain"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	return db
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open("oracle", "dsn")
	if err == nil {
		t.Fatal("expected an error for an unknown driver")
	}
}

func TestEntityLinkRepository(t *testing.T) {
	repo := NewEntityLinkRepository(setupTestDB(t))
	owner := uuid.New()
	other := uuid.New()
	car := uuid.New()

	link, err := repo.FindActiveByEntity(car)
	if err != nil {
		t.Fatalf("FindActiveByEntity failed: %v", err)
	}
	if link != nil {
		t.Fatalf("expected nil for an unknown entity, got %+v", link)
	}

	now := time.Now().UTC()
	err = repo.Add(&domain.EntityLink{
		OwnerGUID: owner, EntityGUID: car, EntityType: domain.EntityTypeCar,
		CreateTime: now, UpdateTime: now,
	})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	link, err = repo.FindActiveByEntity(car)
	if err != nil {
		t.Fatalf("FindActiveByEntity failed: %v", err)
	}
	if link == nil || link.OwnerGUID != owner {
		t.Fatalf("expected link owned by %s, got %+v", owner, link)
	}

	ok, err := repo.ExistsActive(owner, car, domain.EntityTypeCar)
	if err != nil || !ok {
		t.Fatalf("expected active link, got (%v, %v)", ok, err)
	}
	ok, err = repo.ExistsActive(other, car, domain.EntityTypeCar)
	if err != nil || ok {
		t.Fatalf("expected no link for another owner, got (%v, %v)", ok, err)
	}
	ok, err = repo.ExistsActive(owner, car, domain.EntityTypeDriver)
	if err != nil || ok {
		t.Fatalf("expected no link for another type, got (%v, %v)", ok, err)
	}

	// Flagged links disappear from every query.
	link.IsDelete = true
	if err := repo.Save(link); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	link, err = repo.FindActiveByEntity(car)
	if err != nil || link != nil {
		t.Fatalf("expected flagged link to be invisible, got (%+v, %v)", link, err)
	}
}

func TestEntityLinkRepositoryListOrder(t *testing.T) {
	repo := NewEntityLinkRepository(setupTestDB(t))
	ownerA := uuid.New()
	ownerB := uuid.New()
	first := uuid.New()
	second := uuid.New()
	third := uuid.New()

	now := time.Now().UTC()
	for _, link := range []*domain.EntityLink{
		{OwnerGUID: ownerA, EntityGUID: first, EntityType: domain.EntityTypeCar, CreateTime: now, UpdateTime: now},
		{OwnerGUID: ownerB, EntityGUID: second, EntityType: domain.EntityTypeCar, CreateTime: now, UpdateTime: now},
		{OwnerGUID: ownerA, EntityGUID: third, EntityType: domain.EntityTypeCar, CreateTime: now, UpdateTime: now},
	} {
		if err := repo.Add(link); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	guids, err := repo.ListEntityGUIDs([]uuid.UUID{ownerA, ownerB}, domain.EntityTypeCar)
	if err != nil {
		t.Fatalf("ListEntityGUIDs failed: %v", err)
	}
	want := []uuid.UUID{first, second, third}
	if len(guids) != len(want) {
		t.Fatalf("expected %d guids, got %d", len(want), len(guids))
	}
	for i := range want {
		if guids[i] != want[i] {
			t.Fatalf("expected insertion order %v, got %v", want, guids)
		}
	}

	guids, err = repo.ListEntityGUIDs(nil, domain.EntityTypeCar)
	if err != nil || guids != nil {
		t.Fatalf("expected empty result for no owners, got (%v, %v)", guids, err)
	}
}

func TestRightRepository(t *testing.T) {
	repo := NewRightRepository(setupTestDB(t))
	agent := uuid.New()

	right, err := repo.Find(agent, domain.EntityTypeCar)
	if err != nil || right != nil {
		t.Fatalf("expected nil for an unknown pair, got (%+v, %v)", right, err)
	}

	now := time.Now().UTC()
	err = repo.Add(&domain.Right{
		AgentGUID: agent, EntityType: domain.EntityTypeCar,
		Operations: domain.Operations{domain.OperationSelect, domain.OperationDelete},
		CreateTime: now, UpdateTime: now,
	})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	right, err = repo.Find(agent, domain.EntityTypeCar)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if right == nil || !right.Operations.Contains(domain.OperationDelete) {
		t.Fatalf("expected persisted operations, got %+v", right)
	}

	right.Operations = domain.Operations{domain.OperationSelect}
	if err := repo.Save(right); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	right, err = repo.Find(agent, domain.EntityTypeCar)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if right.Operations.Contains(domain.OperationDelete) {
		t.Fatal("expected delete to be revoked")
	}
}

func TestRecordStore(t *testing.T) {
	store := NewRecordStore[domain.Car](setupTestDB(t))

	missing, err := store.Find(42)
	if err != nil || missing != nil {
		t.Fatalf("expected nil for an unknown id, got (%+v, %v)", missing, err)
	}

	car := &domain.Car{Number: "A001"}
	car.GUID = uuid.New()
	if err := store.Add(car); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if car.ID == 0 {
		t.Fatal("expected a store-assigned id")
	}

	found, err := store.Find(car.ID)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if found == nil || found.Number != "A001" {
		t.Fatalf("expected car A001, got %+v", found)
	}

	deleted := &domain.Car{Number: "A002"}
	deleted.GUID = uuid.New()
	deleted.IsDelete = true
	if err := store.Add(deleted); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	active, err := store.ListActive([]uuid.UUID{car.GUID, deleted.GUID})
	if err != nil {
		t.Fatalf("ListActive failed: %v", err)
	}
	if len(active) != 1 || active[0].GUID != car.GUID {
		t.Fatalf("expected only the active car, got %+v", active)
	}

	// Flagged records stay findable by id.
	found, err = store.Find(deleted.ID)
	if err != nil || found == nil {
		t.Fatalf("expected flagged record by id, got (%+v, %v)", found, err)
	}
}

func TestRentalRepository(t *testing.T) {
	repo := NewRentalRepository(setupTestDB(t))
	car := uuid.New()
	driver := uuid.New()

	open, err := repo.FindOpen(car, driver)
	if err != nil || open != nil {
		t.Fatalf("expected nil for an unknown pair, got (%+v, %v)", open, err)
	}

	start := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	rental := &domain.CarRental{CarGUID: car, DriverGUID: driver, StartRentalDate: start}
	if err := repo.Add(rental); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	open, err = repo.FindOpen(car, driver)
	if err != nil || open == nil {
		t.Fatalf("expected the open rental, got (%+v, %v)", open, err)
	}

	byCar, err := repo.ListOpenByCar(car)
	if err != nil || len(byCar) != 1 {
		t.Fatalf("expected one open rental by car, got (%v, %v)", byCar, err)
	}
	byDriver, err := repo.ListOpenByDriver(driver)
	if err != nil || len(byDriver) != 1 {
		t.Fatalf("expected one open rental by driver, got (%v, %v)", byDriver, err)
	}

	rental.IsClose = true
	rental.EndRentalDate = start.Add(8 * time.Hour)
	if err := repo.Save(rental); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	open, err = repo.FindOpen(car, driver)
	if err != nil || open != nil {
		t.Fatalf("expected no open rental after close, got (%+v, %v)", open, err)
	}

	// Overlap queries only ever see open rentals.
	got, err := repo.ListOpenByCarOverlapping(car, start.Add(-time.Hour), start.Add(time.Hour))
	if err != nil {
		t.Fatalf("ListOpenByCarOverlapping failed: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no open rentals, got %v", got)
	}
}

func TestRentalRepositoryOverlapWindow(t *testing.T) {
	repo := NewRentalRepository(setupTestDB(t))
	car := uuid.New()
	driver := uuid.New()

	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(4 * time.Hour)
	rental := &domain.CarRental{
		CarGUID: car, DriverGUID: driver,
		StartRentalDate: start, EndRentalDate: end,
	}
	if err := repo.Add(rental); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	cases := []struct {
		name       string
		from, to   time.Time
		wantLength int
	}{
		{"spanning", start.Add(-time.Hour), end.Add(time.Hour), 1},
		{"inside", start.Add(time.Hour), end.Add(-time.Hour), 1},
		{"touching start", start.Add(-time.Hour), start, 1},
		{"touching end", end, end.Add(time.Hour), 1},
		{"before", start.Add(-2 * time.Hour), start.Add(-time.Hour), 0},
		{"after", end.Add(time.Hour), end.Add(2 * time.Hour), 0},
	}
	for _, tc := range cases {
		got, err := repo.ListOpenByDriverOverlapping(driver, tc.from, tc.to)
		if err != nil {
			t.Fatalf("%s: query failed: %v", tc.name, err)
		}
		if len(got) != tc.wantLength {
			t.Fatalf("%s: expected %d rentals, got %d", tc.name, tc.wantLength, len(got))
		}
	}
}
