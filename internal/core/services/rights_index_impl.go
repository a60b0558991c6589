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

// RightsIndexImpl implements driving.RightsIndex.
//
// Granting and revoking is gated by a single root-of-trust check: only agents
// holding Admin on the agent entity type may call UpdateRights, regardless of
// what they hold on any other type.
type RightsIndexImpl struct {
	logger *zap.Logger
	rights driven.RightRepository
	graph  driving.EntityGraph

	mu    sync.RWMutex
	cache map[uuid.UUID]map[domain.EntityType]domain.Operations
}

// NewRightsIndex creates a new RightsIndexImpl.
func NewRightsIndex(logger *zap.Logger, rights driven.RightRepository, graph driving.EntityGraph) (*RightsIndexImpl, error) {
	if logger == nil {
		return nil, fmt.Errorf("%w: logger is nil", domain.ErrInvalidArgument)
	}
	if rights == nil {
		return nil, fmt.Errorf("%w: right repository is nil", domain.ErrInvalidArgument)
	}
	if graph == nil {
		return nil, fmt.Errorf("%w: entity graph is nil", domain.ErrInvalidArgument)
	}
	return &RightsIndexImpl{
		logger: logger,
		rights: rights,
		graph:  graph,
		cache:  make(map[uuid.UUID]map[domain.EntityType]domain.Operations),
	}, nil
}

// GetRights returns the operations granted to the agent on entityType. A
// missing record yields the empty set.
func (r *RightsIndexImpl) GetRights(agentGUID uuid.UUID, entityType domain.EntityType) (domain.Operations, error) {
	if agentGUID == uuid.Nil {
		return nil, fmt.Errorf("%w: agent guid is empty", domain.ErrInvalidArgument)
	}

	r.mu.RLock()
	ops, ok := r.cache[agentGUID][entityType]
	r.mu.RUnlock()
	if ok {
		metrics.CacheHit("rights_index")
		return append(domain.Operations(nil), ops...), nil
	}
	metrics.CacheMiss("rights_index")

	right, err := r.rights.Find(agentGUID, entityType)
	if err != nil {
		return nil, err
	}
	ops = domain.Operations{}
	if right != nil {
		ops = right.Operations
	}

	r.setCache(agentGUID, entityType, ops)
	return append(domain.Operations(nil), ops...), nil
}

// UpdateRights replaces the agent's operation set for entityType wholesale.
func (r *RightsIndexImpl) UpdateRights(ownerGUID, agentGUID uuid.UUID, entityType domain.EntityType, operations domain.Operations) error {
	if ownerGUID == uuid.Nil {
		return fmt.Errorf("%w: owner guid is empty", domain.ErrInvalidArgument)
	}
	if agentGUID == uuid.Nil {
		return fmt.Errorf("%w: agent guid is empty", domain.ErrInvalidArgument)
	}
	if operations == nil {
		// An empty slice means "revoke all"; nil is a caller bug.
		return fmt.Errorf("%w: operations is nil", domain.ErrInvalidArgument)
	}
	known, err := r.graph.Exist(ownerGUID, agentGUID, domain.EntityTypeAgent)
	if err != nil {
		return err
	}
	if !known {
		return fmt.Errorf("%w: agent %s", domain.ErrNotFound, agentGUID)
	}
	ownerRights, err := r.GetRights(ownerGUID, domain.EntityTypeAgent)
	if err != nil {
		return err
	}
	if !ownerRights.Contains(domain.OperationAdmin) {
		return fmt.Errorf("%w: agent %s cannot grant rights", domain.ErrAccessDenied, ownerGUID)
	}

	utc := time.Now().UTC()
	existing, err := r.rights.Find(agentGUID, entityType)
	if err != nil {
		return err
	}
	if existing != nil {
		existing.Operations = operations
		existing.UpdateTime = utc
		if err := r.rights.Save(existing); err != nil {
			return err
		}
	} else {
		right := &domain.Right{
			AgentGUID:  agentGUID,
			EntityType: entityType,
			Operations: operations,
			CreateTime: utc,
			UpdateTime: utc,
		}
		if err := r.rights.Add(right); err != nil {
			return err
		}
	}

	r.setCache(agentGUID, entityType, operations)
	r.logger.Info("updated rights",
		zap.String("owner_guid", ownerGUID.String()),
		zap.String("agent_guid", agentGUID.String()),
		zap.String("entity_type", string(entityType)),
		zap.Int("operations", len(operations)))
	return nil
}

func (r *RightsIndexImpl) setCache(agentGUID uuid.UUID, entityType domain.EntityType, ops domain.Operations) {
	r.mu.Lock()
	defer r.mu.Unlock()

	byType, ok := r.cache[agentGUID]
	if !ok {
		byType = make(map[domain.EntityType]domain.Operations)
		r.cache[agentGUID] = byType
	}
	byType[entityType] = append(domain.Operations(nil), ops...)
}
