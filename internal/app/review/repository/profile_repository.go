package repository

import (
	"context"
	"errors"
	"fmt"

	"reviewflow/internal/app/review/entity"
	"reviewflow/pkg/metrics"

	"gorm.io/gorm"
)

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository создает хранилище профилей пользователей
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

// Get получает профиль пользователя в сообществе
func (r *profileRepository) Get(ctx context.Context, userID, communityID string) (*entity.UserProfile, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "user_profiles")
	defer timer.ObserveDuration()

	var profile entity.UserProfile
	result := r.db.WithContext(ctx).
		First(&profile, "user_id = ? AND community_id = ?", userID, communityID)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("profile %s/%s: %w", communityID, userID, entity.ErrNotFound)
		}
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, result.Error
	}

	return &profile, nil
}

// GetOrCreate получает профиль или создает пустой
func (r *profileRepository) GetOrCreate(ctx context.Context, userID, communityID string) (*entity.UserProfile, error) {
	profile, err := r.Get(ctx, userID, communityID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, entity.ErrNotFound) {
		return nil, err
	}

	profile = &entity.UserProfile{
		UserID:           userID,
		CommunityID:      communityID,
		CategoryAverages: make(entity.FloatMap),
		CategoryCounts:   make(entity.IntMap),
	}
	if err := r.Save(ctx, profile); err != nil {
		return nil, err
	}

	return profile, nil
}

// Save создает или обновляет профиль
func (r *profileRepository) Save(ctx context.Context, profile *entity.UserProfile) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, "user_profiles")
	defer timer.ObserveDuration()

	result := r.db.WithContext(ctx).Save(profile)
	if result.Error != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpUpdate)
		return result.Error
	}

	return nil
}

// ListReviewers получает профили сообщества хотя бы с одним выданным ревью
func (r *profileRepository) ListReviewers(ctx context.Context, communityID string) ([]entity.UserProfile, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "user_profiles")
	defer timer.ObserveDuration()

	var profiles []entity.UserProfile
	result := r.db.WithContext(ctx).
		Where("community_id = ? AND total_reviews_given > 0", communityID).
		Find(&profiles)

	if result.Error != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, result.Error
	}

	return profiles, nil
}
