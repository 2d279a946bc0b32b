package service

import (
	"context"
	"database/sql"

	"github.com/ndewijer/stock-portfolio-tracker/internal/database"
	"github.com/ndewijer/stock-portfolio-tracker/internal/version"
)

// SystemService handles system-related operations
type SystemService struct {
	db *sql.DB
}

// NewSystemService creates a new SystemService
func NewSystemService(db *sql.DB) *SystemService {
	return &SystemService{
		db: db,
	}
}

// VersionInfo describes the running build and the applied schema.
type VersionInfo struct {
	AppVersion string
	DBVersion  int64
}

// CheckHealth checks the health of the system
func (s *SystemService) CheckHealth(ctx context.Context) error {
	return database.HealthCheck(ctx, s.db)
}

func (s *SystemService) CheckVersion(ctx context.Context) (VersionInfo, error) {
	dbVersion, err := database.SchemaVersion(ctx, s.db)
	if err != nil {
		return VersionInfo{}, err
	}
	return VersionInfo{AppVersion: version.Version, DBVersion: dbVersion}, nil
}
