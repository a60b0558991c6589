package domain

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EntityType identifies the kind of a record tracked in the ownership graph.
type EntityType string

const (
	EntityTypeAgent     EntityType = "agent"
	EntityTypeCar       EntityType = "car"
	EntityTypeDriver    EntityType = "driver"
	EntityTypeCarRental EntityType = "car_rental"
)

// ParseEntityType converts a wire/config value into an EntityType.
func ParseEntityType(s string) (EntityType, error) {
	switch EntityType(s) {
	case EntityTypeAgent, EntityTypeCar, EntityTypeDriver, EntityTypeCarRental:
		return EntityType(s), nil
	}
	return "", fmt.Errorf("%w: unknown entity type %q", ErrInvalidArgument, s)
}

// Operation represents a permitted operation on an entity type.
type Operation string

const (
	OperationSelect      Operation = "select"
	OperationAddOrUpdate Operation = "add_or_update"
	OperationDelete      Operation = "delete"
	// OperationAdmin implies every other operation for the entity type it is
	// granted on.
	OperationAdmin Operation = "admin"
)

// ParseOperation converts a wire/config value into an Operation.
func ParseOperation(s string) (Operation, error) {
	switch Operation(s) {
	case OperationSelect, OperationAddOrUpdate, OperationDelete, OperationAdmin:
		return Operation(s), nil
	}
	return "", fmt.Errorf("%w: unknown operation %q", ErrInvalidArgument, s)
}

// Operations is the full operation set of a rights record. It is persisted as
// a single comma-joined column so a grant is always replaced wholesale.
type Operations []Operation

// Contains reports whether the set grants op, honoring the Admin escape hatch.
func (o Operations) Contains(op Operation) bool {
	for _, v := range o {
		if v == op || v == OperationAdmin {
			return true
		}
	}
	return false
}

// Value implements driver.Valuer.
func (o Operations) Value() (driver.Value, error) {
	parts := make([]string, len(o))
	for i, v := range o {
		parts[i] = string(v)
	}
	return strings.Join(parts, ","), nil
}

// Scan implements sql.Scanner.
func (o *Operations) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case nil:
		*o = Operations{}
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Operations", src)
	}
	if raw == "" {
		*o = Operations{}
		return nil
	}
	parts := strings.Split(raw, ",")
	ops := make(Operations, 0, len(parts))
	for _, p := range parts {
		op, err := ParseOperation(strings.TrimSpace(p))
		if err != nil {
			return err
		}
		ops = append(ops, op)
	}
	*o = ops
	return nil
}

// EntityMeta carries the identity and lifecycle fields shared by every domain
// entity. ID is the store-assigned local key used only against the backing
// store's find-by-key primitive; GUID is the externally visible identity.
type EntityMeta struct {
	ID         uint      `json:"id" gorm:"column:id;primaryKey"`
	GUID       uuid.UUID `json:"guid" gorm:"column:guid;type:uuid;index"`
	CreateTime time.Time `json:"create_time" gorm:"column:create_time"`
	UpdateTime time.Time `json:"update_time" gorm:"column:update_time"`
	IsDelete   bool      `json:"is_delete" gorm:"column:is_delete"`
}

// Meta returns the embedded metadata; it makes every entity pointer satisfy
// the Entity interface.
func (m *EntityMeta) Meta() *EntityMeta { return m }

// Entity is implemented by every GUID-addressed domain record.
type Entity interface {
	Meta() *EntityMeta
	Kind() EntityType
}

// Agent is a principal that can own entities and hold rights. Agents may
// themselves be owned by other agents, forming the one-level hierarchy.
type Agent struct {
	EntityMeta
	Name        string `json:"name" gorm:"column:name"`
	Description string `json:"description" gorm:"column:description"`
}

// Kind returns the entity type of agents.
func (Agent) Kind() EntityType { return EntityTypeAgent }

// Car describes a fleet vehicle.
type Car struct {
	EntityMeta
	Number         string    `json:"number" gorm:"column:number"`
	VINCode        string    `json:"vin_code" gorm:"column:vin_code"`
	ProductionDate time.Time `json:"production_date" gorm:"column:production_date"`
	SerialCode     string    `json:"serial_code" gorm:"column:serial_code"`
	NumberCode     string    `json:"number_code" gorm:"column:number_code"`
	Model          string    `json:"model" gorm:"column:model"`
	Make           string    `json:"make" gorm:"column:make"`
	Distance       float64   `json:"distance" gorm:"column:distance"`
}

// Kind returns the entity type of cars.
func (Car) Kind() EntityType { return EntityTypeCar }

// Driver describes a fleet driver.
type Driver struct {
	EntityMeta
	Name              string    `json:"name" gorm:"column:name"`
	Surname           string    `json:"surname" gorm:"column:surname"`
	Patronymic        string    `json:"patronymic" gorm:"column:patronymic"`
	Birthday          time.Time `json:"birthday" gorm:"column:birthday"`
	LicenseSerialCode string    `json:"license_serial_code" gorm:"column:license_serial_code"`
	LicenseNumberCode string    `json:"license_number_code" gorm:"column:license_number_code"`
}

// Kind returns the entity type of drivers.
func (Driver) Kind() EntityType { return EntityTypeDriver }

// EntityLink associates one entity GUID with its current owner and type. A
// link is never physically removed; deletion flips IsDelete.
type EntityLink struct {
	ID         uint       `json:"id" gorm:"column:id;primaryKey"`
	OwnerGUID  uuid.UUID  `json:"owner_guid" gorm:"column:owner_guid;type:uuid;index"`
	EntityGUID uuid.UUID  `json:"entity_guid" gorm:"column:entity_guid;type:uuid;index"`
	EntityType EntityType `json:"entity_type" gorm:"column:entity_type;type:text"`
	CreateTime time.Time  `json:"create_time" gorm:"column:create_time"`
	UpdateTime time.Time  `json:"update_time" gorm:"column:update_time"`
	IsDelete   bool       `json:"is_delete" gorm:"column:is_delete"`
}

// Right grants an agent a set of operations on one entity type. At most one
// record exists per (agent, entity type) pair; updates replace Operations
// wholesale.
type Right struct {
	ID         uint       `json:"id" gorm:"column:id;primaryKey"`
	AgentGUID  uuid.UUID  `json:"agent_guid" gorm:"column:agent_guid;type:uuid;index"`
	EntityType EntityType `json:"entity_type" gorm:"column:entity_type;type:text"`
	Operations Operations `json:"operations" gorm:"column:operations;type:text"`
	CreateTime time.Time  `json:"create_time" gorm:"column:create_time"`
	UpdateTime time.Time  `json:"update_time" gorm:"column:update_time"`
}

// CarRental records one rental of a car by a driver. A rental is open while
// IsClose is false; deletion force-closes and flags it.
type CarRental struct {
	ID              uint      `json:"id" gorm:"column:id;primaryKey"`
	CarGUID         uuid.UUID `json:"car_guid" gorm:"column:car_guid;type:uuid;index"`
	DriverGUID      uuid.UUID `json:"driver_guid" gorm:"column:driver_guid;type:uuid;index"`
	IsClose         bool      `json:"is_close" gorm:"column:is_close"`
	StartRentalDate time.Time `json:"start_rental_date" gorm:"column:start_rental_date"`
	EndRentalDate   time.Time `json:"end_rental_date" gorm:"column:end_rental_date"`
	IsDelete        bool      `json:"is_delete" gorm:"column:is_delete"`
}
