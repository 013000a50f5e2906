package store

import (
	"github.com/chordquest/chordquest-api/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store wraps the gorm connection used to persist the chord library and
// stage definitions — this lives entirely in the host, never in
// internal/rhythm.
type Store struct {
	DB *gorm.DB
}

// Connect opens the Postgres connection and runs AutoMigrate for the two
// library tables. dsn is cfg.DatabaseURL.
func Connect(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&models.ChordRecord{}, &models.StageRecord{}); err != nil {
		return nil, err
	}
	return &Store{DB: db}, nil
}

// Ping verifies the underlying connection. The health handler pings the
// *gorm.DB's sql.DB itself and does not call this.
func (s *Store) Ping() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
