package service

import (
	"context"
	"errors"

	"reviewflow/internal/app/review/entity"
	"reviewflow/internal/app/review/repository"
)

// ConfigService управляет конфигурациями ревью сообществ
type ConfigService struct {
	configRepo repository.ConfigRepository
}

// NewConfigService создает сервис конфигураций
func NewConfigService(configRepo repository.ConfigRepository) *ConfigService {
	return &ConfigService{configRepo: configRepo}
}

// GetOrCreate возвращает конфигурацию сообщества, создавая
// конфигурацию по умолчанию при первом обращении
func (s *ConfigService) GetOrCreate(ctx context.Context, communityID string) (*entity.ReviewConfig, error) {
	cfg, err := s.configRepo.Get(ctx, communityID)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, entity.ErrNotFound) {
		return nil, err
	}

	cfg = entity.DefaultConfig(communityID)
	if err := s.configRepo.Save(ctx, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Update применяет частичное обновление конфигурации.
// Поля-указатели со значением nil не меняются. Уже начатые черновики
// держат снимок только таймаута: категории и диапазоны оценок мастер
// перечитывает из живой конфигурации на каждом шаге
func (s *ConfigService) Update(ctx context.Context, communityID string, req *entity.UpdateConfigRequest) (*entity.ReviewConfig, error) {
	cfg, err := s.GetOrCreate(ctx, communityID)
	if err != nil {
		return nil, err
	}

	if req.Enabled != nil {
		cfg.Enabled = *req.Enabled
	}
	if req.SubmissionFields != nil {
		cfg.SubmissionFields = entity.FieldList(req.SubmissionFields)
	}
	if req.ReviewCategories != nil {
		cfg.ReviewCategories = entity.CategoryList(req.ReviewCategories)
	}
	if req.DMOnComplete != nil {
		cfg.DMOnComplete = *req.DMOnComplete
	}
	if req.LeaderboardEnabled != nil {
		cfg.LeaderboardEnabled = *req.LeaderboardEnabled
	}
	if req.ReviewTimeoutMinutes != nil {
		cfg.ReviewTimeoutMinutes = *req.ReviewTimeoutMinutes
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := s.configRepo.Save(ctx, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
