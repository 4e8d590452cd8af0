package mocks

import (
	"context"
	"time"

	"reviewflow/internal/app/review/entity"
	"reviewflow/internal/app/review/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockDraftRepository мок для DraftRepository
type MockDraftRepository struct {
	mock.Mock
}

func (m *MockDraftRepository) Create(ctx context.Context, draft *entity.ReviewDraft) error {
	args := m.Called(ctx, draft)
	return args.Error(0)
}

func (m *MockDraftRepository) Get(ctx context.Context, key entity.DraftKey) (*entity.ReviewDraft, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ReviewDraft), args.Error(1)
}

func (m *MockDraftRepository) Update(ctx context.Context, draft *entity.ReviewDraft) error {
	args := m.Called(ctx, draft)
	return args.Error(0)
}

func (m *MockDraftRepository) Delete(ctx context.Context, key entity.DraftKey) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockDraftRepository) Sweep(ctx context.Context, now time.Time) ([]entity.DraftKey, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.DraftKey), args.Error(1)
}

// MockConfigRepository мок для ConfigRepository
type MockConfigRepository struct {
	mock.Mock
}

func (m *MockConfigRepository) Get(ctx context.Context, communityID string) (*entity.ReviewConfig, error) {
	args := m.Called(ctx, communityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ReviewConfig), args.Error(1)
}

func (m *MockConfigRepository) Save(ctx context.Context, cfg *entity.ReviewConfig) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}

// MockSubmissionRepository мок для SubmissionRepository
type MockSubmissionRepository struct {
	mock.Mock
}

func (m *MockSubmissionRepository) Create(ctx context.Context, submission *entity.Submission) error {
	args := m.Called(ctx, submission)
	return args.Error(0)
}

func (m *MockSubmissionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Submission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Submission), args.Error(1)
}

func (m *MockSubmissionRepository) ListPending(ctx context.Context, communityID string, limit int) ([]entity.Submission, error) {
	args := m.Called(ctx, communityID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Submission), args.Error(1)
}

func (m *MockSubmissionRepository) MarkInReview(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSubmissionRepository) Complete(ctx context.Context, id uuid.UUID, reviewerID string) error {
	args := m.Called(ctx, id, reviewerID)
	return args.Error(0)
}

// MockSessionRepository мок для SessionRepository
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, session *entity.ReviewSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.ReviewSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ReviewSession), args.Error(1)
}

func (m *MockSessionRepository) ListBySubmission(ctx context.Context, submissionID uuid.UUID) ([]entity.ReviewSession, error) {
	args := m.Called(ctx, submissionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.ReviewSession), args.Error(1)
}

func (m *MockSessionRepository) ListByReviewer(ctx context.Context, communityID, reviewerID string, limit int) ([]entity.ReviewSession, error) {
	args := m.Called(ctx, communityID, reviewerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.ReviewSession), args.Error(1)
}

// MockProfileRepository мок для ProfileRepository
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) Get(ctx context.Context, userID, communityID string) (*entity.UserProfile, error) {
	args := m.Called(ctx, userID, communityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.UserProfile), args.Error(1)
}

func (m *MockProfileRepository) GetOrCreate(ctx context.Context, userID, communityID string) (*entity.UserProfile, error) {
	args := m.Called(ctx, userID, communityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.UserProfile), args.Error(1)
}

func (m *MockProfileRepository) Save(ctx context.Context, profile *entity.UserProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockProfileRepository) ListReviewers(ctx context.Context, communityID string) ([]entity.UserProfile, error) {
	args := m.Called(ctx, communityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.UserProfile), args.Error(1)
}

// MockTxManager мок для TxManager: выполняет fn с подставленным
// набором репозиториев без настоящей транзакции
type MockTxManager struct {
	mock.Mock
	Repos *repository.Repositories
}

func (m *MockTxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context, repos *repository.Repositories) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx, m.Repos)
}

// MockMessagePublisher мок для Kafka MessagePublisher
type MockMessagePublisher struct {
	mock.Mock
	Messages [][]byte
}

func (m *MockMessagePublisher) PublishMessage(ctx context.Context, key string, value []byte) error {
	m.Messages = append(m.Messages, value)
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockMessagePublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}
