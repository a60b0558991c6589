package services

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taxi-fleet-service/internal/core/domain"
	"taxi-fleet-service/internal/core/ports/driven"
	"taxi-fleet-service/internal/core/ports/driving"
)

// AgentRepositoryImpl implements driving.AgentRepository.
type AgentRepositoryImpl struct {
	store *entityStore[domain.Agent, *domain.Agent]
}

// NewAgentRepository creates a new AgentRepositoryImpl.
func NewAgentRepository(logger *zap.Logger, graph driving.EntityGraph, rights driving.RightsIndex, records driven.RecordStore[domain.Agent]) (*AgentRepositoryImpl, error) {
	store, err := newEntityStore(logger, graph, rights, records, validateAgent, applyAgent)
	if err != nil {
		return nil, err
	}
	return &AgentRepositoryImpl{store: store}, nil
}

func (r *AgentRepositoryImpl) AddOrUpdateAgent(agentGUID uuid.UUID, agent *domain.Agent) (*domain.Agent, error) {
	return r.store.addOrUpdate(agentGUID, agent)
}

func (r *AgentRepositoryImpl) DeleteAgent(agentGUID uuid.UUID, agent *domain.Agent) error {
	return r.store.delete(agentGUID, agent)
}

func (r *AgentRepositoryImpl) GetAgentsByGUIDs(agentGUID uuid.UUID, guids []uuid.UUID) ([]*domain.Agent, error) {
	return r.store.getByGUIDs(agentGUID, guids)
}

func validateAgent(agent *domain.Agent) error {
	if agent.Name == "" {
		return fmt.Errorf("%w: agent name is empty", domain.ErrInvalidArgument)
	}
	return nil
}

func applyAgent(dst, src *domain.Agent) {
	dst.Name = src.Name
	dst.Description = src.Description
}
