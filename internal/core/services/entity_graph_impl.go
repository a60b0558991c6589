package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taxi-fleet-service/internal/core/domain"
	"taxi-fleet-service/internal/core/ports/driven"
	"taxi-fleet-service/internal/metrics"
)

// EntityGraphImpl implements driving.EntityGraph.
//
// The cache maps an owner GUID to its entity GUIDs partitioned by type. A
// bucket holds DIRECT links only; the one-hop hierarchy union is synthesized
// at read time, never stored, so the same buckets back both the flattened
// reads and the direct-ownership checks. Buckets preserve insertion order.
// The backing store stays the source of truth: store I/O always happens
// outside the lock, and a miss-population replaces each bucket wholesale so
// concurrent first-populations cannot duplicate entries.
type EntityGraphImpl struct {
	logger *zap.Logger
	links  driven.EntityLinkRepository

	mu    sync.RWMutex
	cache map[uuid.UUID]map[domain.EntityType][]uuid.UUID
}

// NewEntityGraph creates a new EntityGraphImpl.
func NewEntityGraph(logger *zap.Logger, links driven.EntityLinkRepository) (*EntityGraphImpl, error) {
	if logger == nil {
		return nil, fmt.Errorf("%w: logger is nil", domain.ErrInvalidArgument)
	}
	if links == nil {
		return nil, fmt.Errorf("%w: link repository is nil", domain.ErrInvalidArgument)
	}
	return &EntityGraphImpl{
		logger: logger,
		links:  links,
		cache:  make(map[uuid.UUID]map[domain.EntityType][]uuid.UUID),
	}, nil
}

// GetEntities returns the entity GUIDs of entityType visible to ownerGUID:
// its direct links plus the links of its directly-owned agents (one hop).
func (g *EntityGraphImpl) GetEntities(ownerGUID uuid.UUID, entityType domain.EntityType) ([]uuid.UUID, error) {
	if ownerGUID == uuid.Nil {
		return nil, fmt.Errorf("%w: owner guid is empty", domain.ErrInvalidArgument)
	}

	guids := g.collectVisible(ownerGUID, entityType)
	if len(guids) > 0 {
		metrics.CacheHit("entity_graph")
		return guids, nil
	}
	metrics.CacheMiss("entity_graph")

	// Cold path: fetch each owner's direct links separately so every bucket
	// stays direct-only. The flattened union is assembled here, not cached.
	childAgents, err := g.links.ListEntityGUIDs([]uuid.UUID{ownerGUID}, domain.EntityTypeAgent)
	if err != nil {
		return nil, err
	}
	g.replaceBucket(ownerGUID, domain.EntityTypeAgent, childAgents)

	guids = nil
	for _, child := range childAgents {
		childGUIDs, err := g.links.ListEntityGUIDs([]uuid.UUID{child}, entityType)
		if err != nil {
			return nil, err
		}
		g.replaceBucket(child, entityType, childGUIDs)
		guids = append(guids, childGUIDs...)
	}

	direct := childAgents
	if entityType != domain.EntityTypeAgent {
		direct, err = g.links.ListEntityGUIDs([]uuid.UUID{ownerGUID}, entityType)
		if err != nil {
			return nil, err
		}
		g.replaceBucket(ownerGUID, entityType, direct)
	}
	return append(guids, direct...), nil
}

// AddEntity persists a new active link and appends it to the owner's cache
// bucket.
func (g *EntityGraphImpl) AddEntity(ownerGUID, entityGUID uuid.UUID, entityType domain.EntityType) error {
	if ownerGUID == uuid.Nil {
		return fmt.Errorf("%w: owner guid is empty", domain.ErrInvalidArgument)
	}
	if entityGUID == uuid.Nil {
		return fmt.Errorf("%w: entity guid is empty", domain.ErrInvalidArgument)
	}
	existing, err := g.links.FindActiveByEntity(entityGUID)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("%w: entity %s already linked", domain.ErrConflict, entityGUID)
	}

	utc := time.Now().UTC()
	link := &domain.EntityLink{
		OwnerGUID:  ownerGUID,
		EntityGUID: entityGUID,
		EntityType: entityType,
		CreateTime: utc,
		UpdateTime: utc,
	}
	if err := g.links.Add(link); err != nil {
		return err
	}

	g.appendToBucket(ownerGUID, entityType, entityGUID)
	g.logger.Info("added entity link",
		zap.String("owner_guid", ownerGUID.String()),
		zap.String("entity_guid", entityGUID.String()),
		zap.String("entity_type", string(entityType)))
	return nil
}

// DeleteEntity flags the entity's active link deleted and removes it from the
// cache bucket of the link's actual owner.
func (g *EntityGraphImpl) DeleteEntity(ownerGUID, entityGUID uuid.UUID, entityType domain.EntityType) error {
	if ownerGUID == uuid.Nil {
		return fmt.Errorf("%w: owner guid is empty", domain.ErrInvalidArgument)
	}
	if entityGUID == uuid.Nil {
		return fmt.Errorf("%w: entity guid is empty", domain.ErrInvalidArgument)
	}
	link, err := g.links.FindActiveByEntity(entityGUID)
	if err != nil {
		return err
	}
	if link == nil {
		return fmt.Errorf("%w: link for entity %s", domain.ErrNotFound, entityGUID)
	}
	if ownerGUID != link.OwnerGUID {
		// Not the direct owner; a one-hop grandparent may still delete.
		agents, err := g.GetEntities(ownerGUID, domain.EntityTypeAgent)
		if err != nil {
			return err
		}
		if !containsGUID(agents, link.OwnerGUID) {
			return fmt.Errorf("%w: agent %s cannot access %s %s",
				domain.ErrAccessDenied, ownerGUID, entityType, entityGUID)
		}
	}
	if entityType != link.EntityType {
		return fmt.Errorf("%w: link for entity %s has type %s",
			domain.ErrInvalidArgument, entityGUID, link.EntityType)
	}

	link.IsDelete = true
	link.UpdateTime = time.Now().UTC()
	if err := g.links.Save(link); err != nil {
		return err
	}

	g.removeFromBucket(link.OwnerGUID, entityType, entityGUID)
	g.logger.Info("deleted entity link",
		zap.String("owner_guid", link.OwnerGUID.String()),
		zap.String("entity_guid", entityGUID.String()),
		zap.String("entity_type", string(entityType)))
	return nil
}

// Exist reports whether an active link with exactly this owner, entity and
// type exists. Direct ownership only, no hierarchy expansion.
func (g *EntityGraphImpl) Exist(ownerGUID, entityGUID uuid.UUID, entityType domain.EntityType) (bool, error) {
	if ownerGUID == uuid.Nil || entityGUID == uuid.Nil {
		return false, nil
	}

	g.mu.RLock()
	bucket := g.cache[ownerGUID][entityType]
	hit := containsGUID(bucket, entityGUID)
	g.mu.RUnlock()
	if hit {
		metrics.CacheHit("entity_graph")
		return true, nil
	}
	metrics.CacheMiss("entity_graph")

	return g.links.ExistsActive(ownerGUID, entityGUID, entityType)
}

// collectVisible unions the owner's own bucket with the buckets of its
// directly-owned agents under the read lock.
func (g *EntityGraphImpl) collectVisible(ownerGUID uuid.UUID, entityType domain.EntityType) []uuid.UUID {
	g.mu.RLock()
	defer g.mu.RUnlock()

	byType, ok := g.cache[ownerGUID]
	if !ok {
		return nil
	}
	var guids []uuid.UUID
	for _, agent := range byType[domain.EntityTypeAgent] {
		guids = append(guids, g.cache[agent][entityType]...)
	}
	guids = append(guids, byType[entityType]...)
	return guids
}

func (g *EntityGraphImpl) replaceBucket(ownerGUID uuid.UUID, entityType domain.EntityType, guids []uuid.UUID) {
	g.mu.Lock()
	defer g.mu.Unlock()

	byType, ok := g.cache[ownerGUID]
	if !ok {
		byType = make(map[domain.EntityType][]uuid.UUID)
		g.cache[ownerGUID] = byType
	}
	// Wholesale replace: concurrent first-populations must not accumulate.
	byType[entityType] = append([]uuid.UUID(nil), guids...)
}

func (g *EntityGraphImpl) appendToBucket(ownerGUID uuid.UUID, entityType domain.EntityType, guid uuid.UUID) {
	g.mu.Lock()
	defer g.mu.Unlock()

	byType, ok := g.cache[ownerGUID]
	if !ok {
		byType = make(map[domain.EntityType][]uuid.UUID)
		g.cache[ownerGUID] = byType
	}
	byType[entityType] = append(byType[entityType], guid)
}

func (g *EntityGraphImpl) removeFromBucket(ownerGUID uuid.UUID, entityType domain.EntityType, guid uuid.UUID) {
	g.mu.Lock()
	defer g.mu.Unlock()

	bucket := g.cache[ownerGUID][entityType]
	for i, v := range bucket {
		if v == guid {
			g.cache[ownerGUID][entityType] = append(bucket[:i], bucket[i+1:]...)
			return
		}
	}
}

func containsGUID(guids []uuid.UUID, guid uuid.UUID) bool {
	for _, v := range guids {
		if v == guid {
			return true
		}
	}
	return false
}
