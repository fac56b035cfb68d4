// Package database opens the gorm connection for the configured driver.
package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/d60-Lab/social-graph/config"
	"github.com/d60-Lab/social-graph/internal/model"
	"github.com/d60-Lab/social-graph/pkg/logger"
)

// InitDB opens postgres or sqlite according to cfg.Database and migrates the schema
// when auto_migrate is set.
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.Database.PostgresDSN())
	case "sqlite":
		dialector = sqlite.Open(cfg.Database.Path)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	level := gormlogger.Warn
	if cfg.Log.Level == "debug" {
		level = gormlogger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         NewGormLogger(logger.L(), level, cfg.Database.SlowThreshold),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Database.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Database.Driver == "sqlite" {
		// sqlite allows one writer; a single connection keeps transactions serialized.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	}

	if cfg.Database.AutoMigrate {
		if err := Migrate(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Close releases the underlying pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
