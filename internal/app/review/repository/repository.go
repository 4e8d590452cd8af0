package repository

import (
	"context"
	"time"

	"reviewflow/internal/app/review/entity"

	"github.com/google/uuid"
)

// Имя сервиса для меток метрик
const serviceName = "reviewflow"

// DraftRepository определяет Draft Store: хранилище живых черновиков
// с ключевым доступом, compare-and-create и фоновой зачисткой по таймауту
type DraftRepository interface {
	// Create атомарно создает черновик; если по ключу уже есть живой
	// черновик, возвращает ErrConflict и ничего не перезаписывает
	Create(ctx context.Context, draft *entity.ReviewDraft) error
	Get(ctx context.Context, key entity.DraftKey) (*entity.ReviewDraft, error)
	// Update применяет черновик с оптимистичной проверкой версии:
	// проигравший гонку получает ErrConflict и должен перечитать
	Update(ctx context.Context, draft *entity.ReviewDraft) error
	Delete(ctx context.Context, key entity.DraftKey) error
	// Sweep удаляет все черновики, не тронутые дольше их таймаута,
	// и возвращает ключи удаленных. Безопасен при гонке с publish/cancel
	Sweep(ctx context.Context, now time.Time) ([]entity.DraftKey, error)
}

// ConfigRepository определяет доступ к конфигурациям сообществ
type ConfigRepository interface {
	Get(ctx context.Context, communityID string) (*entity.ReviewConfig, error)
	Save(ctx context.Context, cfg *entity.ReviewConfig) error
}

// SubmissionRepository определяет реестр заявок.
// Записи никогда не удаляются, статус меняется только монотонно
type SubmissionRepository interface {
	Create(ctx context.Context, submission *entity.Submission) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Submission, error)
	ListPending(ctx context.Context, communityID string, limit int) ([]entity.Submission, error)
	// MarkInReview переводит pending -> in_review; для заявки уже в ревью
	// это no-op (статус не откатывается)
	MarkInReview(ctx context.Context, id uuid.UUID) error
	// Complete переводит заявку в completed и фиксирует ревьюера.
	// Возвращает ErrInvalidState, если заявка уже завершена
	Complete(ctx context.Context, id uuid.UUID, reviewerID string) error
}

// SessionRepository определяет хранилище опубликованных ревью
type SessionRepository interface {
	Create(ctx context.Context, session *entity.ReviewSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.ReviewSession, error)
	ListBySubmission(ctx context.Context, submissionID uuid.UUID) ([]entity.ReviewSession, error)
	ListByReviewer(ctx context.Context, communityID, reviewerID string, limit int) ([]entity.ReviewSession, error)
}

// ProfileRepository определяет хранилище профилей пользователей
type ProfileRepository interface {
	Get(ctx context.Context, userID, communityID string) (*entity.UserProfile, error)
	GetOrCreate(ctx context.Context, userID, communityID string) (*entity.UserProfile, error)
	Save(ctx context.Context, profile *entity.UserProfile) error
	// ListReviewers возвращает профили сообщества хотя бы с одним выданным
	// ревью; детерминированную сортировку лидерборда выполняет сервис
	ListReviewers(ctx context.Context, communityID string) ([]entity.UserProfile, error)
}
