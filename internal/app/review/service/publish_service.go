package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"reviewflow/internal/app/review/entity"
	"reviewflow/internal/app/review/infrastructure"
	"reviewflow/internal/app/review/repository"
	"reviewflow/pkg/logger"
	"reviewflow/pkg/metrics"

	"github.com/google/uuid"
)

// PublishService координирует публикацию ревью: создание записи ревью,
// завершение заявки и обновление профилей выполняются в одной транзакции,
// черновик удаляется только после коммита
type PublishService struct {
	draftRepo repository.DraftRepository
	txManager repository.TxManager
	producer  infrastructure.MessagePublisher
}

// NewPublishService создает координатор публикации
func NewPublishService(
	draftRepo repository.DraftRepository,
	txManager repository.TxManager,
	producer infrastructure.MessagePublisher,
) *PublishService {
	return &PublishService{
		draftRepo: draftRepo,
		txManager: txManager,
		producer:  producer,
	}
}

// Publish превращает черновик в неизменяемую запись ревью.
// Повторная публикация по тому же ключу получает ErrNotFound:
// черновик удален первым успешным вызовом
func (s *PublishService) Publish(ctx context.Context, key entity.DraftKey) (*entity.ReviewSession, error) {
	draft, err := s.draftRepo.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	if len(draft.Scores) == 0 {
		return nil, fmt.Errorf("%w: at least one category must be scored", entity.ErrIncompleteReview)
	}

	submissionID, err := uuid.Parse(draft.SubmissionID)
	if err != nil {
		return nil, fmt.Errorf("corrupt draft submission id %q: %w", draft.SubmissionID, err)
	}

	now := time.Now().UTC()
	session := &entity.ReviewSession{
		ID:           uuid.New(),
		SubmissionID: submissionID,
		CommunityID:  draft.CommunityID,
		ReviewerID:   draft.ReviewerID,
		SubmitterID:  draft.SubmitterID,
		Scores:       entity.ScoreMap(draft.Scores),
		Notes:        entity.NoteMap(draft.Notes),
		CreatedAt:    draft.CreatedAt,
		CompletedAt:  now,
	}

	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		submission, err := repos.Submissions.GetByID(ctx, submissionID)
		if err != nil {
			return err
		}
		if submission.Status == entity.SubmissionStatusCompleted {
			return entity.InvalidStatef("submission %s is already completed", submissionID)
		}

		if err := repos.Sessions.Create(ctx, session); err != nil {
			return err
		}
		if err := repos.Submissions.Complete(ctx, submissionID, draft.ReviewerID); err != nil {
			return err
		}

		submitter, err := repos.Profiles.GetOrCreate(ctx, draft.SubmitterID, draft.CommunityID)
		if err != nil {
			return err
		}
		submitter.ReceiveReview(session)
		if err := repos.Profiles.Save(ctx, submitter); err != nil {
			return err
		}

		reviewer, err := repos.Profiles.GetOrCreate(ctx, draft.ReviewerID, draft.CommunityID)
		if err != nil {
			return err
		}
		reviewer.RecordReview(draft.Scores, now)
		return repos.Profiles.Save(ctx, reviewer)
	})
	if err != nil {
		// Откат не трогает черновик: ревьюер может повторить публикацию
		return nil, err
	}

	// После коммита черновик больше не нужен. Гонка с cancel или зачисткой
	// по таймауту дает ErrNotFound - это нормально
	if err := s.draftRepo.Delete(ctx, key); err != nil && !errors.Is(err, entity.ErrNotFound) {
		logger.Warn().
			Err(err).
			Str("draft_key", key.String()).
			Msg("Failed to delete draft after publish")
	}

	metrics.ReviewsPublished.Inc()
	metrics.DraftsActive.Dec()

	s.publishEvent(ctx, session)

	return session, nil
}

// publishEvent отправляет событие REVIEW_PUBLISHED в Kafka.
// Ошибка брокера не откатывает публикацию, только логируется
func (s *PublishService) publishEvent(ctx context.Context, session *entity.ReviewSession) {
	event := entity.ReviewEvent{
		EventType:    entity.EventReviewPublished,
		SessionID:    session.ID.String(),
		SubmissionID: session.SubmissionID.String(),
		CommunityID:  session.CommunityID,
		ReviewerID:   session.ReviewerID,
		SubmitterID:  session.SubmitterID,
		AverageScore: session.AverageScore(),
		Timestamp:    session.CompletedAt,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to marshal review event")
		return
	}

	if err := s.producer.PublishMessage(ctx, session.ID.String(), payload); err != nil {
		logger.Error().
			Err(err).
			Str("session_id", session.ID.String()).
			Msg("Failed to publish review event")
	}
}
