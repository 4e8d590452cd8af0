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

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository создает реестр заявок поверх PostgreSQL
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

// Create создает новую заявку
func (r *submissionRepository) Create(ctx context.Context, submission *entity.Submission) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, "submissions")
	defer timer.ObserveDuration()

	result := r.db.WithContext(ctx).Create(submission)
	if result.Error != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpInsert)
		return result.Error
	}
	return nil
}

// GetByID получает заявку по ID
func (r *submissionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Submission, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "submissions")
	defer timer.ObserveDuration()

	var submission entity.Submission
	result := r.db.WithContext(ctx).First(&submission, "id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("submission %s: %w", id, entity.ErrNotFound)
		}
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, result.Error
	}

	return &submission, nil
}

// ListPending получает ожидающие ревью заявки сообщества
func (r *submissionRepository) ListPending(ctx context.Context, communityID string, limit int) ([]entity.Submission, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "submissions")
	defer timer.ObserveDuration()

	var submissions []entity.Submission
	result := r.db.WithContext(ctx).
		Where("community_id = ? AND status = ?", communityID, entity.SubmissionStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&submissions)

	if result.Error != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, result.Error
	}

	return submissions, nil
}

// MarkInReview переводит pending -> in_review.
// Guard по статусу гарантирует монотонность: завершенная заявка
// обратно в ревью не возвращается. Ноль затронутых строк - не ошибка:
// заявка уже в ревью у другого ревьюера
func (r *submissionRepository) MarkInReview(ctx context.Context, id uuid.UUID) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, "submissions")
	defer timer.ObserveDuration()

	result := r.db.WithContext(ctx).Model(&entity.Submission{}).
		Where("id = ? AND status = ?", id, entity.SubmissionStatusPending).
		Update("status", entity.SubmissionStatusInReview)

	if result.Error != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpUpdate)
		return result.Error
	}

	return nil
}

// Complete переводит заявку в completed и фиксирует ревьюера.
// Повторное завершение блокируется на уровне SQL guard'а
func (r *submissionRepository) Complete(ctx context.Context, id uuid.UUID, reviewerID string) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, "submissions")
	defer timer.ObserveDuration()

	result := r.db.WithContext(ctx).Model(&entity.Submission{}).
		Where("id = ? AND status <> ?", id, entity.SubmissionStatusCompleted).
		Updates(map[string]interface{}{
			"status":      entity.SubmissionStatusCompleted,
			"reviewer_id": reviewerID,
		})

	if result.Error != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpUpdate)
		return result.Error
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("submission %s is already completed: %w", id, entity.ErrInvalidState)
	}

	return nil
}
