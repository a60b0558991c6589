package driving

import (
	"github.com/google/uuid"

	"taxi-fleet-service/internal/core/domain"
)

// RightsIndex holds the authoritative operation set per (agent, entity type).
// An absent record means the empty set: deny by default.
type RightsIndex interface {
	// GetRights returns the operations granted to the agent on entityType.
	// An agent with no record gets an empty set, not an error.
	GetRights(agentGUID uuid.UUID, entityType domain.EntityType) (domain.Operations, error)
	// UpdateRights replaces the agent's operation set for entityType
	// wholesale. Only holders of Admin on the agent entity type may call it.
	// An empty non-nil operations slice revokes everything.
	UpdateRights(ownerGUID, agentGUID uuid.UUID, entityType domain.EntityType, operations domain.Operations) error
}
