package app

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/KevDevLee/namens-tinder/internal/cache"
	"github.com/KevDevLee/namens-tinder/internal/config"
)

// AppContext holds shared dependencies (config, DB, Redis, logger).
type AppContext struct {
	Config     *config.Config
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Logger     *slog.Logger
}

// New creates a new AppContext
func New(cfg *config.Config, db *gorm.DB, rdb *cache.RedisCache, logger *slog.Logger) *AppContext {
	return &AppContext{
		Config:     cfg,
		DB:         db,
		RedisCache: rdb,
		Logger:     logger,
	}
}
