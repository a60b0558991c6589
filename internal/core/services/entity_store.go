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

// entityRecord constrains PT to a pointer to the record struct that also
// carries entity metadata and a kind tag.
type entityRecord[T any] interface {
	*T
	domain.Entity
}

// entityStore is the write-through cached store shared by the agent, car and
// driver repositories. The per-kind repositories instantiate it with their
// entity type, required-field validator and mutable-field copier.
//
// Every operation validates and authorizes fully before touching cache or
// store; persistence happens before the cache lock is taken.
type entityStore[T any, PT entityRecord[T]] struct {
	logger  *zap.Logger
	graph   driving.EntityGraph
	rights  driving.RightsIndex
	records driven.RecordStore[T]

	kind      domain.EntityType
	cacheName string
	validate  func(PT) error
	apply     func(dst, src PT)

	mu    sync.RWMutex
	cache map[uuid.UUID]PT
}

func newEntityStore[T any, PT entityRecord[T]](
	logger *zap.Logger,
	graph driving.EntityGraph,
	rights driving.RightsIndex,
	records driven.RecordStore[T],
	validate func(PT) error,
	apply func(dst, src PT),
) (*entityStore[T, PT], error) {
	if logger == nil {
		return nil, fmt.Errorf("%w: logger is nil", domain.ErrInvalidArgument)
	}
	if graph == nil {
		return nil, fmt.Errorf("%w: entity graph is nil", domain.ErrInvalidArgument)
	}
	if rights == nil {
		return nil, fmt.Errorf("%w: rights index is nil", domain.ErrInvalidArgument)
	}
	if records == nil {
		return nil, fmt.Errorf("%w: record store is nil", domain.ErrInvalidArgument)
	}
	var zero T
	kind := PT(&zero).Kind()
	return &entityStore[T, PT]{
		logger:    logger,
		graph:     graph,
		rights:    rights,
		records:   records,
		kind:      kind,
		cacheName: string(kind) + "_store",
		validate:  validate,
		apply:     apply,
		cache:     make(map[uuid.UUID]PT),
	}, nil
}

// addOrUpdate creates the entity when its local key is unknown to the store,
// otherwise updates the stored record's mutable fields. Returns the persisted
// record.
func (s *entityStore[T, PT]) addOrUpdate(agentGUID uuid.UUID, entity PT) (PT, error) {
	if agentGUID == uuid.Nil {
		return nil, fmt.Errorf("%w: agent guid is empty", domain.ErrInvalidArgument)
	}
	if entity == nil {
		return nil, fmt.Errorf("%w: %s is nil", domain.ErrInvalidArgument, s.kind)
	}
	if err := s.validate(entity); err != nil {
		return nil, err
	}
	ops, err := s.rights.GetRights(agentGUID, s.kind)
	if err != nil {
		return nil, err
	}
	if !ops.Contains(domain.OperationAddOrUpdate) {
		return nil, fmt.Errorf("%w: agent %s cannot add or update %s",
			domain.ErrAccessDenied, agentGUID, s.kind)
	}

	utc := time.Now().UTC()
	existing, err := s.records.Find(entity.Meta().ID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		meta := entity.Meta()
		meta.GUID = uuid.New()
		meta.CreateTime = utc
		meta.UpdateTime = utc
		meta.IsDelete = false
		if err := s.records.Add((*T)(entity)); err != nil {
			return nil, err
		}
		if err := s.graph.AddEntity(agentGUID, meta.GUID, s.kind); err != nil {
			return nil, err
		}
		s.cachePut(meta.GUID, entity)
		s.logger.Info("added entity",
			zap.String("entity_type", string(s.kind)),
			zap.String("guid", meta.GUID.String()),
			zap.String("owner_guid", agentGUID.String()))
		return entity, nil
	}

	if entity.Meta().GUID == uuid.Nil {
		return nil, fmt.Errorf("%w: %s guid is empty", domain.ErrInvalidArgument, s.kind)
	}
	owned, err := s.graph.Exist(agentGUID, entity.Meta().GUID, s.kind)
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, fmt.Errorf("%w: agent %s cannot access %s %s",
			domain.ErrAccessDenied, agentGUID, s.kind, entity.Meta().GUID)
	}
	stored := PT(existing)
	s.apply(stored, entity)
	stored.Meta().UpdateTime = utc
	if err := s.records.Save(existing); err != nil {
		return nil, err
	}
	s.cachePut(stored.Meta().GUID, stored)
	s.logger.Info("updated entity",
		zap.String("entity_type", string(s.kind)),
		zap.String("guid", stored.Meta().GUID.String()),
		zap.String("owner_guid", agentGUID.String()))
	return stored, nil
}

// delete flags the entity deleted, unlinks it from the ownership graph and
// evicts it from the cache.
func (s *entityStore[T, PT]) delete(agentGUID uuid.UUID, entity PT) error {
	if agentGUID == uuid.Nil {
		return fmt.Errorf("%w: agent guid is empty", domain.ErrInvalidArgument)
	}
	if entity == nil {
		return fmt.Errorf("%w: %s is nil", domain.ErrInvalidArgument, s.kind)
	}
	if entity.Meta().ID == 0 {
		return fmt.Errorf("%w: %s id is zero", domain.ErrInvalidArgument, s.kind)
	}
	if entity.Meta().GUID == uuid.Nil {
		return fmt.Errorf("%w: %s guid is empty", domain.ErrInvalidArgument, s.kind)
	}
	owned, err := s.graph.Exist(agentGUID, entity.Meta().GUID, s.kind)
	if err != nil {
		return err
	}
	if !owned {
		return fmt.Errorf("%w: agent %s cannot access %s %s",
			domain.ErrAccessDenied, agentGUID, s.kind, entity.Meta().GUID)
	}
	ops, err := s.rights.GetRights(agentGUID, s.kind)
	if err != nil {
		return err
	}
	if !ops.Contains(domain.OperationDelete) {
		return fmt.Errorf("%w: agent %s cannot delete %s %s",
			domain.ErrAccessDenied, agentGUID, s.kind, entity.Meta().GUID)
	}

	existing, err := s.records.Find(entity.Meta().ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("%w: %s %d", domain.ErrNotFound, s.kind, entity.Meta().ID)
	}
	stored := PT(existing)
	stored.Meta().IsDelete = true
	stored.Meta().UpdateTime = time.Now().UTC()
	if err := s.graph.DeleteEntity(agentGUID, entity.Meta().GUID, s.kind); err != nil {
		return err
	}
	if err := s.records.Save(existing); err != nil {
		return err
	}

	s.cacheRemove(stored.Meta().GUID)
	s.logger.Info("deleted entity",
		zap.String("entity_type", string(s.kind)),
		zap.String("guid", stored.Meta().GUID.String()),
		zap.String("owner_guid", agentGUID.String()))
	return nil
}

// getByGUIDs returns the requested records, cache first, batch-fetching
// misses from the store. Access is all-or-nothing: every requested GUID must
// be directly owned by the acting agent before any data is returned.
func (s *entityStore[T, PT]) getByGUIDs(agentGUID uuid.UUID, guids []uuid.UUID) ([]PT, error) {
	if agentGUID == uuid.Nil {
		return nil, fmt.Errorf("%w: agent guid is empty", domain.ErrInvalidArgument)
	}
	if len(guids) == 0 {
		return nil, fmt.Errorf("%w: guids is empty", domain.ErrInvalidArgument)
	}
	for _, guid := range guids {
		owned, err := s.graph.Exist(agentGUID, guid, s.kind)
		if err != nil {
			return nil, err
		}
		if !owned {
			return nil, fmt.Errorf("%w: agent %s cannot access %s %s",
				domain.ErrAccessDenied, agentGUID, s.kind, guid)
		}
	}
	ops, err := s.rights.GetRights(agentGUID, s.kind)
	if err != nil {
		return nil, err
	}
	if !ops.Contains(domain.OperationSelect) {
		return nil, fmt.Errorf("%w: agent %s cannot select %s",
			domain.ErrAccessDenied, agentGUID, s.kind)
	}

	result := make([]PT, 0, len(guids))
	var missing []uuid.UUID
	s.mu.RLock()
	for _, guid := range guids {
		if rec, ok := s.cache[guid]; ok {
			result = append(result, rec)
		} else {
			missing = append(missing, guid)
		}
	}
	s.mu.RUnlock()
	if len(missing) == 0 {
		metrics.CacheHit(s.cacheName)
		return result, nil
	}
	metrics.CacheMiss(s.cacheName)

	fetched, err := s.records.ListActive(missing)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	for _, rec := range fetched {
		stored := PT(rec)
		result = append(result, stored)
		s.cache[stored.Meta().GUID] = stored
	}
	s.mu.Unlock()
	return result, nil
}

func (s *entityStore[T, PT]) cachePut(guid uuid.UUID, entity PT) {
	s.mu.Lock()
	s.cache[guid] = entity
	s.mu.Unlock()
}

func (s *entityStore[T, PT]) cacheRemove(guid uuid.UUID) {
	s.mu.Lock()
	delete(s.cache, guid)
	s.mu.Unlock()
}
