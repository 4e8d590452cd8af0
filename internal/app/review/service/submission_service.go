package service

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"reviewflow/internal/app/review/entity"
	"reviewflow/internal/app/review/repository"
	"reviewflow/pkg/logger"
	"reviewflow/pkg/metrics"

	"github.com/google/uuid"
)

// Размер выборки ожидающих заявок, если клиент не задал свой
const defaultPendingLimit = 50

// SubmissionService отвечает за прием заявок, их валидацию
// против конфигурации сообщества и чтение опубликованных ревью
type SubmissionService struct {
	configRepo     repository.ConfigRepository
	submissionRepo repository.SubmissionRepository
	sessionRepo    repository.SessionRepository
	profileService *ProfileService
}

// NewSubmissionService создает сервис заявок
func NewSubmissionService(
	configRepo repository.ConfigRepository,
	submissionRepo repository.SubmissionRepository,
	sessionRepo repository.SessionRepository,
	profileService *ProfileService,
) *SubmissionService {
	return &SubmissionService{
		configRepo:     configRepo,
		submissionRepo: submissionRepo,
		sessionRepo:    sessionRepo,
		profileService: profileService,
	}
}

// Create валидирует поля формы и регистрирует заявку со статусом pending
func (s *SubmissionService) Create(ctx context.Context, communityID, submitterID string, req *entity.CreateSubmissionRequest) (*entity.Submission, error) {
	cfg, err := s.configRepo.Get(ctx, communityID)
	if err != nil {
		return nil, err
	}
	if !cfg.Enabled {
		return nil, entity.InvalidStatef("content review is disabled for community %s", communityID)
	}

	if err := validateFieldValues(cfg, req.FieldValues); err != nil {
		return nil, err
	}

	submission := &entity.Submission{
		ID:          uuid.New(),
		CommunityID: communityID,
		SubmitterID: submitterID,
		FieldValues: entity.StringMap(req.FieldValues),
		Status:      entity.SubmissionStatusPending,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.submissionRepo.Create(ctx, submission); err != nil {
		return nil, err
	}

	// total_submissions растет в момент создания заявки
	if err := s.profileService.RecordSubmission(ctx, submitterID, communityID); err != nil {
		logger.Warn().
			Err(err).
			Str("submitter_id", submitterID).
			Msg("Failed to record submission in profile")
	}

	metrics.SubmissionsCreated.Inc()

	return submission, nil
}

// Get возвращает заявку сообщества по идентификатору
func (s *SubmissionService) Get(ctx context.Context, communityID, id string) (*entity.Submission, error) {
	submissionID, err := uuid.Parse(id)
	if err != nil {
		return nil, entity.Validationf("invalid submission id %q", id)
	}

	submission, err := s.submissionRepo.GetByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if submission.CommunityID != communityID {
		return nil, fmt.Errorf("submission %s: %w", submissionID, entity.ErrNotFound)
	}

	return submission, nil
}

// ListPending возвращает заявки сообщества, ожидающие ревью
func (s *SubmissionService) ListPending(ctx context.Context, communityID string, limit int) ([]entity.Submission, error) {
	if limit <= 0 {
		limit = defaultPendingLimit
	}
	return s.submissionRepo.ListPending(ctx, communityID, limit)
}

// ListReviews возвращает опубликованные ревью заявки, новые первыми
func (s *SubmissionService) ListReviews(ctx context.Context, communityID, id string) ([]entity.ReviewSession, error) {
	submission, err := s.Get(ctx, communityID, id)
	if err != nil {
		return nil, err
	}
	return s.sessionRepo.ListBySubmission(ctx, submission.ID)
}

// GetReview возвращает одно опубликованное ревью по идентификатору
func (s *SubmissionService) GetReview(ctx context.Context, communityID, id string) (*entity.ReviewSession, error) {
	sessionID, err := uuid.Parse(id)
	if err != nil {
		return nil, entity.Validationf("invalid review session id %q", id)
	}

	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.CommunityID != communityID {
		// Ревью чужого сообщества не раскрываем
		return nil, fmt.Errorf("review session %s: %w", sessionID, entity.ErrNotFound)
	}

	return session, nil
}

// validateFieldValues проверяет значения формы против описания полей:
// обязательность, тип URL и необязательный регулярный шаблон
func validateFieldValues(cfg *entity.ReviewConfig, values map[string]string) error {
	for id := range values {
		if _, ok := cfg.FieldByID(id); !ok {
			return entity.Validationf("unknown submission field %q", id)
		}
	}

	for _, field := range cfg.SubmissionFields {
		value := strings.TrimSpace(values[field.ID])

		if value == "" {
			if field.Required {
				return entity.Validationf("field %q is required", field.ID)
			}
			continue
		}

		if field.Kind == entity.FieldKindURL {
			u, err := url.ParseRequestURI(value)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
				return entity.Validationf("field %q must be a valid http(s) url", field.ID)
			}
		}

		if field.ValidationPattern != "" {
			re, err := regexp.Compile(field.ValidationPattern)
			if err != nil {
				return entity.Validationf("field %q has an invalid validation pattern", field.ID)
			}
			if !re.MatchString(value) {
				return entity.Validationf("field %q does not match the expected format", field.ID)
			}
		}
	}

	return nil
}
