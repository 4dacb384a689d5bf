package db

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/KevDevLee/namens-tinder/internal/config"
	"github.com/KevDevLee/namens-tinder/internal/domain"
	"github.com/KevDevLee/namens-tinder/internal/logger"
)

// NewDB opens the database selected by cfg.DB.Driver and migrates the schema.
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg.DB.Driver, cfg.DB.DSN)
	if err != nil {
		return nil, err
	}

	gormLogger, levelErr := newGormLogger(cfg.Log.GormLevel)
	if levelErr != nil {
		logger.Warn("invalid gorm log level", "value", cfg.Log.GormLevel, "err", levelErr)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate keeps the schema in sync with the models.
func Migrate(db *gorm.DB) error {
	if err := backfillNameFold(db); err != nil {
		return fmt.Errorf("failed to backfill name_fold: %w", err)
	}
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// backfillNameFold adds name_fold to a names table created before it existed
// and fills it, so AutoMigrate can build the unique index afterwards.
func backfillNameFold(db *gorm.DB) error {
	m := db.Migrator()
	if !m.HasTable(&Name{}) || m.HasColumn(&Name{}, "NameFold") {
		return nil
	}
	if err := m.AddColumn(&Name{}, "NameFold"); err != nil {
		return err
	}

	var batch []Name
	return db.Select("id", "name").FindInBatches(&batch, 500, func(*gorm.DB, int) error {
		for _, n := range batch {
			err := db.Model(&Name{}).Where("id = ?", n.ID).
				UpdateColumn("name_fold", domain.FoldName(n.Name)).Error
			if err != nil {
				return err
			}
		}
		return nil
	}).Error
}

func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "", "mysql":
		return mysql.Open(dsn), nil
	case "postgres":
		return postgres.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}
}
