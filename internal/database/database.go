package database

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/arkivist/heritage/internal/entities"
)

type Database struct {
	DB *gorm.DB
}

func NewDatabase(dbPath string, log *logrus.Logger) (*Database, error) {
	// Immediate transactions and a busy timeout let the optimized import's
	// concurrent batch transactions queue instead of failing with SQLITE_BUSY.
	dsn := "file:" + dbPath + "?_busy_timeout=10000&_txlock=immediate"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto-migrate all entities
	err = db.AutoMigrate(
		&entities.Tree{},
		&entities.Individual{},
		&entities.Family{},
		&entities.FamilyChild{},
		&entities.SourceRecord{},
		&entities.NoteRecord{},
		&entities.MediaObject{},
		&entities.ImportSession{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.WithField("path", dbPath).Info("database initialized")

	return &Database{DB: db}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
