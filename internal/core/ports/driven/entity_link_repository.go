package driven

import (
	"github.com/google/uuid"

	"taxi-fleet-service/internal/core/domain"
)

// EntityLinkRepository defines the interface for ownership link persistence.
// All queries exclude flag-deleted links unless noted.
type EntityLinkRepository interface {
	// FindActiveByEntity returns the single active link for an entity GUID,
	// or nil when none exists.
	FindActiveByEntity(entityGUID uuid.UUID) (*domain.EntityLink, error)
	// ExistsActive reports whether an active link with exactly this owner,
	// entity and type exists.
	ExistsActive(ownerGUID, entityGUID uuid.UUID, entityType domain.EntityType) (bool, error)
	// ListEntityGUIDs returns the entity GUIDs of active links whose owner is
	// any of owners and whose type matches, in insertion order.
	ListEntityGUIDs(owners []uuid.UUID, entityType domain.EntityType) ([]uuid.UUID, error)
	Add(link *domain.EntityLink) error
	Save(link *domain.EntityLink) error
}
