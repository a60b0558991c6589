package driven

import (
	"github.com/google/uuid"
)

// RecordStore defines the persistence interface shared by the per-kind entity
// repositories. T is the plain record struct (domain.Agent, domain.Car,
// domain.Driver).
type RecordStore[T any] interface {
	// Find returns the record with the store-assigned local key, or nil when
	// none exists. Deleted records are still findable by key; the caller
	// decides what a flagged record means.
	Find(id uint) (*T, error)
	// ListActive returns the non-deleted records among guids.
	ListActive(guids []uuid.UUID) ([]*T, error)
	Add(record *T) error
	Save(record *T) error
}
