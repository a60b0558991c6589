package driving

import (
	"github.com/google/uuid"

	"taxi-fleet-service/internal/core/domain"
)

// EntityGraph answers which entity GUIDs are visible to an owner and
// maintains the durable owner-to-entity links.
//
// Reads and writes are intentionally asymmetric: GetEntities flattens one
// level of agent sub-ownership into the result, while Exist, AddEntity and
// DeleteEntity operate on the direct link only.
type EntityGraph interface {
	// GetEntities returns the GUIDs of entityType entities owned directly by
	// ownerGUID plus those owned by its directly-owned agents (one hop, not
	// recursive).
	GetEntities(ownerGUID uuid.UUID, entityType domain.EntityType) ([]uuid.UUID, error)
	// AddEntity persists a new active link. It fails when the entity already
	// has an active link to any owner.
	AddEntity(ownerGUID, entityGUID uuid.UUID, entityType domain.EntityType) error
	// DeleteEntity flags the entity's active link deleted. The caller must be
	// the link's owner or a one-hop grandparent of it.
	DeleteEntity(ownerGUID, entityGUID uuid.UUID, entityType domain.EntityType) error
	// Exist reports whether an active link with exactly this owner, entity
	// and type exists. No hierarchy expansion.
	Exist(ownerGUID, entityGUID uuid.UUID, entityType domain.EntityType) (bool, error)
}
