package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"reviewflow/internal/app/review/entity"
	"reviewflow/internal/app/review/repository"
	"reviewflow/internal/app/review/wizard"
	"reviewflow/pkg/logger"
	"reviewflow/pkg/metrics"

	"github.com/google/uuid"
)

// WizardService связывает чистую машину состояний мастера с Draft Store
// и реестром заявок: читает черновик, применяет переход, записывает
// результат с оптимистичной проверкой версии
type WizardService struct {
	configRepo     repository.ConfigRepository
	submissionRepo repository.SubmissionRepository
	draftRepo      repository.DraftRepository
}

// NewWizardService создает сервис мастера ревью с внедрением зависимостей
func NewWizardService(
	configRepo repository.ConfigRepository,
	submissionRepo repository.SubmissionRepository,
	draftRepo repository.DraftRepository,
) *WizardService {
	return &WizardService{
		configRepo:     configRepo,
		submissionRepo: submissionRepo,
		draftRepo:      draftRepo,
	}
}

// BeginReview начинает ревью заявки.
// При resume=true существующий черновик возобновляется, иначе второй
// BeginReview по тому же ключу получает ErrConflict
func (s *WizardService) BeginReview(ctx context.Context, communityID, reviewerID string, req *entity.BeginReviewRequest) (*entity.ReviewDraft, error) {
	cfg, err := s.loadConfig(ctx, communityID)
	if err != nil {
		return nil, err
	}

	submissionID, err := uuid.Parse(req.SubmissionID)
	if err != nil {
		return nil, entity.Validationf("invalid submission id %q", req.SubmissionID)
	}

	submission, err := s.submissionRepo.GetByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if submission.CommunityID != communityID {
		// Заявки чужого сообщества не раскрываем
		return nil, fmt.Errorf("submission %s: %w", submissionID, entity.ErrNotFound)
	}

	key := entity.DraftKey{
		CommunityID:  communityID,
		ReviewerID:   reviewerID,
		SubmissionID: submissionID.String(),
	}

	if req.Resume {
		existing, err := s.draftRepo.Get(ctx, key)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, entity.ErrNotFound) {
			return nil, err
		}
		// Возобновлять нечего: создаем новый черновик
	}

	draft, err := wizard.Begin(cfg, submission, reviewerID, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if err := s.draftRepo.Create(ctx, draft); err != nil {
		if errors.Is(err, entity.ErrConflict) {
			metrics.DraftConflicts.WithLabelValues("create").Inc()
		}
		return nil, err
	}

	// Переход pending -> in_review; для заявки уже в ревью это no-op.
	// Черновик уже создан, ошибка реестра не должна его терять
	if err := s.submissionRepo.MarkInReview(ctx, submissionID); err != nil {
		logger.Warn().
			Err(err).
			Str("submission_id", submissionID.String()).
			Msg("Failed to mark submission in_review")
	}

	metrics.DraftsStarted.Inc()
	metrics.DraftsActive.Inc()

	return draft, nil
}

// SetScore выставляет оценку категории текущего черновика
func (s *WizardService) SetScore(ctx context.Context, key entity.DraftKey, categoryID string, value int) (*entity.ReviewDraft, error) {
	return s.mutate(ctx, key, func(cfg *entity.ReviewConfig, draft *entity.ReviewDraft, now time.Time) (*entity.ReviewDraft, error) {
		return wizard.SetScore(cfg, draft, categoryID, value, now)
	})
}

// AddNote добавляет заметку к категории
func (s *WizardService) AddNote(ctx context.Context, key entity.DraftKey, categoryID string, note entity.Note) (*entity.ReviewDraft, error) {
	return s.mutate(ctx, key, func(cfg *entity.ReviewConfig, draft *entity.ReviewDraft, now time.Time) (*entity.ReviewDraft, error) {
		return wizard.AddNote(cfg, draft, categoryID, note, now)
	})
}

// Advance переводит мастер на следующий шаг
func (s *WizardService) Advance(ctx context.Context, key entity.DraftKey) (*entity.ReviewDraft, error) {
	return s.mutate(ctx, key, wizard.Advance)
}

// Retreat возвращает мастер на предыдущий шаг
func (s *WizardService) Retreat(ctx context.Context, key entity.DraftKey) (*entity.ReviewDraft, error) {
	return s.mutate(ctx, key, wizard.Retreat)
}

// GetSummary возвращает read-only сводку черновика
func (s *WizardService) GetSummary(ctx context.Context, key entity.DraftKey) (*entity.SummaryResponse, error) {
	cfg, err := s.loadConfig(ctx, key.CommunityID)
	if err != nil {
		return nil, err
	}

	draft, err := s.draftRepo.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	return wizard.Summary(cfg, draft), nil
}

// Cancel удаляет черновик, не затрагивая заявку, ревью и профили
func (s *WizardService) Cancel(ctx context.Context, key entity.DraftKey) error {
	if err := s.draftRepo.Delete(ctx, key); err != nil {
		return err
	}

	metrics.DraftsCancelled.Inc()
	metrics.DraftsActive.Dec()

	return nil
}

// State строит представление текущего шага для отображения
func (s *WizardService) State(ctx context.Context, key entity.DraftKey) (*entity.DraftStateResponse, error) {
	cfg, err := s.loadConfig(ctx, key.CommunityID)
	if err != nil {
		return nil, err
	}

	draft, err := s.draftRepo.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	return buildDraftState(cfg, draft), nil
}

// mutate - общий путь всех мутаторов: чтение, чистый переход,
// оптимистичная запись. Проигравший гонку получает ErrConflict
// и повторяет попытку, перечитав состояние
func (s *WizardService) mutate(
	ctx context.Context,
	key entity.DraftKey,
	transition func(cfg *entity.ReviewConfig, draft *entity.ReviewDraft, now time.Time) (*entity.ReviewDraft, error),
) (*entity.ReviewDraft, error) {
	cfg, err := s.loadConfig(ctx, key.CommunityID)
	if err != nil {
		return nil, err
	}

	draft, err := s.draftRepo.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	next, err := transition(cfg, draft, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if next.Version == draft.Version {
		// Переход ничего не изменил (retreat на нулевом шаге)
		return next, nil
	}

	if err := s.draftRepo.Update(ctx, next); err != nil {
		if errors.Is(err, entity.ErrConflict) {
			metrics.DraftConflicts.WithLabelValues("update").Inc()
		}
		return nil, err
	}

	return next, nil
}

func (s *WizardService) loadConfig(ctx context.Context, communityID string) (*entity.ReviewConfig, error) {
	cfg, err := s.configRepo.Get(ctx, communityID)
	if err != nil {
		return nil, err
	}
	if !cfg.Enabled {
		return nil, entity.InvalidStatef("content review is disabled for community %s", communityID)
	}
	return cfg, nil
}

// buildDraftState собирает DTO шага мастера
func buildDraftState(cfg *entity.ReviewConfig, draft *entity.ReviewDraft) *entity.DraftStateResponse {
	return &entity.DraftStateResponse{
		SubmissionID:  draft.SubmissionID,
		CurrentStep:   draft.CurrentStep,
		TotalSteps:    len(cfg.ReviewCategories),
		SummaryStep:   wizard.IsSummary(cfg, draft),
		Category:      wizard.CurrentCategory(cfg, draft),
		Scores:        draft.Scores,
		Notes:         draft.Notes,
		Version:       draft.Version,
		LastTouchedAt: draft.LastTouchedAt.Format(time.RFC3339Nano),
	}
}
