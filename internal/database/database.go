package database

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/quantfold/lob-oracle/internal/journal"
)

// InMemoryDSN keeps the journal entirely in process memory. It is the
// default: the reference model itself has no persistence requirement.
const InMemoryDSN = "file::memory:?cache=shared"

// NewDatabase initializes and returns a new GORM DB connection with the
// journal schema migrated. Pass InMemoryDSN (or "") for an in-memory store,
// or a file path to keep a run's journal around for offline inspection.
func NewDatabase(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		dsn = InMemoryDSN
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&journal.TradeRecord{}); err != nil {
		return nil, err
	}

	return db, nil
}
