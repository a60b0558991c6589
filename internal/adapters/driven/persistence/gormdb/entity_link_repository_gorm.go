package gormdb

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taxi-fleet-service/internal/core/domain"
	"taxi-fleet-service/internal/core/ports/driven"
)

// EntityLinkRepositoryImpl implements driven.EntityLinkRepository on GORM.
type EntityLinkRepositoryImpl struct {
	db *gorm.DB
}

// NewEntityLinkRepository creates a new EntityLinkRepositoryImpl.
func NewEntityLinkRepository(db *gorm.DB) driven.EntityLinkRepository {
	if err := db.AutoMigrate(&domain.EntityLink{}); err != nil {
		panic(fmt.Sprintf("failed to migrate entity_links table: %v", err))
	}
	return &EntityLinkRepositoryImpl{db: db}
}

func (r *EntityLinkRepositoryImpl) FindActiveByEntity(entityGUID uuid.UUID) (*domain.EntityLink, error) {
	var link domain.EntityLink
	err := r.db.Where("entity_guid = ? AND is_delete = ?", entityGUID, false).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *EntityLinkRepositoryImpl) ExistsActive(ownerGUID, entityGUID uuid.UUID, entityType domain.EntityType) (bool, error) {
	var count int64
	err := r.db.Model(&domain.EntityLink{}).
		Where("owner_guid = ? AND entity_guid = ? AND entity_type = ? AND is_delete = ?",
			ownerGUID, entityGUID, entityType, false).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *EntityLinkRepositoryImpl) ListEntityGUIDs(owners []uuid.UUID, entityType domain.EntityType) ([]uuid.UUID, error) {
	if len(owners) == 0 {
		return nil, nil
	}
	var links []domain.EntityLink
	err := r.db.Where("owner_guid IN ? AND entity_type = ? AND is_delete = ?", owners, entityType, false).
		Order("id").
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	guids := make([]uuid.UUID, 0, len(links))
	for _, link := range links {
		guids = append(guids, link.EntityGUID)
	}
	return guids, nil
}

func (r *EntityLinkRepositoryImpl) Add(link *domain.EntityLink) error {
	return r.db.Create(link).Error
}

func (r *EntityLinkRepositoryImpl) Save(link *domain.EntityLink) error {
	return r.db.Save(link).Error
}
