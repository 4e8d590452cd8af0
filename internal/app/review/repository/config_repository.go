package repository

import (
	"context"
	"errors"
	"fmt"

	"reviewflow/internal/app/review/entity"
	"reviewflow/pkg/metrics"

	"gorm.io/gorm"
)

type configRepository struct {
	db *gorm.DB
}

// NewConfigRepository создает репозиторий конфигураций сообществ
func NewConfigRepository(db *gorm.DB) ConfigRepository {
	return &configRepository{db: db}
}

// Get читает конфигурацию сообщества
func (r *configRepository) Get(ctx context.Context, communityID string) (*entity.ReviewConfig, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "review_configs")
	defer timer.ObserveDuration()

	var cfg entity.ReviewConfig
	result := r.db.WithContext(ctx).First(&cfg, "community_id = ?", communityID)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("config for community %s: %w", communityID, entity.ErrNotFound)
		}
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, result.Error
	}

	return &cfg, nil
}

// Save создает или обновляет конфигурацию сообщества
func (r *configRepository) Save(ctx context.Context, cfg *entity.ReviewConfig) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, "review_configs")
	defer timer.ObserveDuration()

	result := r.db.WithContext(ctx).Save(cfg)
	if result.Error != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpUpdate)
		return result.Error
	}

	return nil
}
