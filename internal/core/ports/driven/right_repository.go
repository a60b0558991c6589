package driven

import (
	"github.com/google/uuid"

	"taxi-fleet-service/internal/core/domain"
)

// RightRepository defines the interface for rights record persistence.
type RightRepository interface {
	// Find returns the single rights record for the pair, or nil when none
	// exists.
	Find(agentGUID uuid.UUID, entityType domain.EntityType) (*domain.Right, error)
	Add(right *domain.Right) error
	Save(right *domain.Right) error
}
