package gormdb

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taxi-fleet-service/internal/core/domain"
	"taxi-fleet-service/internal/core/ports/driven"
)

// RightRepositoryImpl implements driven.RightRepository on GORM.
type RightRepositoryImpl struct {
	db *gorm.DB
}

// NewRightRepository creates a new RightRepositoryImpl.
func NewRightRepository(db *gorm.DB) driven.RightRepository {
	if err := db.AutoMigrate(&domain.Right{}); err != nil {
		panic(fmt.Sprintf("failed to migrate rights table: %v", err))
	}
	return &RightRepositoryImpl{db: db}
}

func (r *RightRepositoryImpl) Find(agentGUID uuid.UUID, entityType domain.EntityType) (*domain.Right, error) {
	var right domain.Right
	err := r.db.Where("agent_guid = ? AND entity_type = ?", agentGUID, entityType).First(&right).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &right, nil
}

func (r *RightRepositoryImpl) Add(right *domain.Right) error {
	return r.db.Create(right).Error
}

func (r *RightRepositoryImpl) Save(right *domain.Right) error {
	return r.db.Save(right).Error
}
