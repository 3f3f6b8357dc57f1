package database

import (
	"fmt"
	"time"

	sqlite "github.com/glebarez/sqlite" // CGO-free driver
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"agrisentry/entities"
)

// printf adapts a zap sugared logger to gorm's logger.Writer.
type printf func(string, ...interface{})

func (p printf) Printf(format string, args ...interface{}) { p(format, args...) }

// OpenSQLite opens (or creates) the database at path and migrates every
// persistent entity. path ":memory:" gives a private in-memory database.
func OpenSQLite(path string, log *zap.Logger) (*gorm.DB, error) {
	gl := logger.New(printf(log.Named("gorm").Sugar().Infof), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: gl})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if path == ":memory:" {
		// every new connection would get its own empty database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(
		&entities.Activity{},
		&entities.Crop{},
		&entities.ChatMessage{},
		&entities.KBDocument{},
		&entities.KBChunk{},
	); err != nil {
		return nil, fmt.Errorf("automigrate: %w", err)
	}

	log.Info("database ready", zap.String("path", path))
	return db, nil
}
