package gormdb

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"taxi-fleet-service/internal/core/domain"
)

// Open connects to the configured database. Supported drivers are "sqlite"
// and "postgres".
func Open(driverName, dsn string) (*gorm.DB, error) {
	switch driverName {
	case "sqlite":
		return gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	case "postgres":
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	default:
		return nil, fmt.Errorf("%w: unsupported database driver %q", domain.ErrInvalidArgument, driverName)
	}
}
