package repository

import (
	"context"
	"errors"
	"fmt"

	"reviewflow/internal/app/review/entity"
	"reviewflow/pkg/metrics"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository создает хранилище опубликованных ревью
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

// Create записывает опубликованное ревью. Записи неизменяемы:
// обновлений и удалений у этого репозитория нет
func (r *sessionRepository) Create(ctx context.Context, session *entity.ReviewSession) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, "review_sessions")
	defer timer.ObserveDuration()

	result := r.db.WithContext(ctx).Create(session)
	if result.Error != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpInsert)
		return result.Error
	}
	return nil
}

// GetByID получает ревью по ID
func (r *sessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.ReviewSession, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "review_sessions")
	defer timer.ObserveDuration()

	var session entity.ReviewSession
	result := r.db.WithContext(ctx).First(&session, "id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("review session %s: %w", id, entity.ErrNotFound)
		}
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, result.Error
	}

	return &session, nil
}

// ListBySubmission получает все ревью заявки
func (r *sessionRepository) ListBySubmission(ctx context.Context, submissionID uuid.UUID) ([]entity.ReviewSession, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "review_sessions")
	defer timer.ObserveDuration()

	var sessions []entity.ReviewSession
	result := r.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Order("completed_at DESC").
		Find(&sessions)

	if result.Error != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, result.Error
	}

	return sessions, nil
}

// ListByReviewer получает ревью, выданные конкретным ревьюером
func (r *sessionRepository) ListByReviewer(ctx context.Context, communityID, reviewerID string, limit int) ([]entity.ReviewSession, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "review_sessions")
	defer timer.ObserveDuration()

	var sessions []entity.ReviewSession
	result := r.db.WithContext(ctx).
		Where("community_id = ? AND reviewer_id = ?", communityID, reviewerID).
		Order("completed_at DESC").
		Limit(limit).
		Find(&sessions)

	if result.Error != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, result.Error
	}

	return sessions, nil
}
