package gormdb

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taxi-fleet-service/internal/core/ports/driven"
)

// RecordStoreImpl implements driven.RecordStore[T] on GORM. One instance per
// entity table; the table is derived from T the usual GORM way.
type RecordStoreImpl[T any] struct {
	db *gorm.DB
}

// NewRecordStore creates a new RecordStoreImpl for T.
func NewRecordStore[T any](db *gorm.DB) driven.RecordStore[T] {
	var zero T
	if err := db.AutoMigrate(&zero); err != nil {
		panic(fmt.Sprintf("failed to migrate %T table: %v", zero, err))
	}
	return &RecordStoreImpl[T]{db: db}
}

func (s *RecordStoreImpl[T]) Find(id uint) (*T, error) {
	var record T
	err := s.db.First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *RecordStoreImpl[T]) ListActive(guids []uuid.UUID) ([]*T, error) {
	if len(guids) == 0 {
		return nil, nil
	}
	var records []T
	err := s.db.Where("guid IN ? AND is_delete = ?", guids, false).
		Order("id").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	out := make([]*T, 0, len(records))
	for i := range records {
		out = append(out, &records[i])
	}
	return out, nil
}

func (s *RecordStoreImpl[T]) Add(record *T) error {
	return s.db.Create(record).Error
}

func (s *RecordStoreImpl[T]) Save(record *T) error {
	return s.db.Save(record).Error
}
