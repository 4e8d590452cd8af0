package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"reviewflow/internal/app/review/entity"
	"reviewflow/internal/app/review/repository/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func enabledConfig() *entity.ReviewConfig {
	return &entity.ReviewConfig{
		CommunityID: "community-1",
		Enabled:     true,
		ReviewCategories: entity.CategoryList{
			{ID: "communication", Name: "Communication", MinScore: 1, MaxScore: 5, AllowNotes: true},
			{ID: "skill", Name: "Skill", MinScore: 1, MaxScore: 5, AllowNotes: true},
		},
		ReviewTimeoutMinutes: 15,
	}
}

func pendingSubmission(id uuid.UUID) *entity.Submission {
	return &entity.Submission{
		ID:          id,
		CommunityID: "community-1",
		SubmitterID: "submitter-1",
		Status:      entity.SubmissionStatusPending,
	}
}

func storedDraft(submissionID uuid.UUID) *entity.ReviewDraft {
	now := time.Now().UTC()
	return &entity.ReviewDraft{
		CommunityID:    "community-1",
		ReviewerID:     "reviewer-1",
		SubmissionID:   submissionID.String(),
		SubmitterID:    "submitter-1",
		CurrentStep:    0,
		Scores:         map[string]int{},
		Notes:          map[string]entity.Note{},
		TimeoutMinutes: 15,
		Version:        1,
		CreatedAt:      now,
		LastTouchedAt:  now,
	}
}

func TestBeginReview_Success(t *testing.T) {
	configRepo := new(mocks.MockConfigRepository)
	submissionRepo := new(mocks.MockSubmissionRepository)
	draftRepo := new(mocks.MockDraftRepository)
	svc := NewWizardService(configRepo, submissionRepo, draftRepo)

	ctx := context.Background()
	submissionID := uuid.New()

	configRepo.On("Get", ctx, "community-1").Return(enabledConfig(), nil)
	submissionRepo.On("GetByID", ctx, submissionID).Return(pendingSubmission(submissionID), nil)
	draftRepo.On("Create", ctx, mock.AnythingOfType("*entity.ReviewDraft")).Return(nil)
	submissionRepo.On("MarkInReview", ctx, submissionID).Return(nil)

	draft, err := svc.BeginReview(ctx, "community-1", "reviewer-1", &entity.BeginReviewRequest{
		SubmissionID: submissionID.String(),
	})

	require.NoError(t, err)
	assert.Equal(t, 0, draft.CurrentStep)
	assert.Equal(t, "reviewer-1", draft.ReviewerID)
	draftRepo.AssertExpectations(t)
	submissionRepo.AssertExpectations(t)
}

func TestBeginReview_Conflict(t *testing.T) {
	configRepo := new(mocks.MockConfigRepository)
	submissionRepo := new(mocks.MockSubmissionRepository)
	draftRepo := new(mocks.MockDraftRepository)
	svc := NewWizardService(configRepo, submissionRepo, draftRepo)

	ctx := context.Background()
	submissionID := uuid.New()

	configRepo.On("Get", ctx, "community-1").Return(enabledConfig(), nil)
	submissionRepo.On("GetByID", ctx, submissionID).Return(pendingSubmission(submissionID), nil)
	draftRepo.On("Create", ctx, mock.Anything).Return(entity.ErrConflict)

	_, err := svc.BeginReview(ctx, "community-1", "reviewer-1", &entity.BeginReviewRequest{
		SubmissionID: submissionID.String(),
	})

	assert.ErrorIs(t, err, entity.ErrConflict)
}

func TestBeginReview_ResumeReturnsExistingDraft(t *testing.T) {
	configRepo := new(mocks.MockConfigRepository)
	submissionRepo := new(mocks.MockSubmissionRepository)
	draftRepo := new(mocks.MockDraftRepository)
	svc := NewWizardService(configRepo, submissionRepo, draftRepo)

	ctx := context.Background()
	submissionID := uuid.New()
	existing := storedDraft(submissionID)
	existing.CurrentStep = 1
	existing.Scores["communication"] = 4

	configRepo.On("Get", ctx, "community-1").Return(enabledConfig(), nil)
	submissionRepo.On("GetByID", ctx, submissionID).Return(pendingSubmission(submissionID), nil)
	draftRepo.On("Get", ctx, existing.Key()).Return(existing, nil)

	draft, err := svc.BeginReview(ctx, "community-1", "reviewer-1", &entity.BeginReviewRequest{
		SubmissionID: submissionID.String(),
		Resume:       true,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, draft.CurrentStep)
	assert.Equal(t, 4, draft.Scores["communication"])
	draftRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestBeginReview_DisabledCommunity(t *testing.T) {
	configRepo := new(mocks.MockConfigRepository)
	submissionRepo := new(mocks.MockSubmissionRepository)
	draftRepo := new(mocks.MockDraftRepository)
	svc := NewWizardService(configRepo, submissionRepo, draftRepo)

	ctx := context.Background()
	cfg := enabledConfig()
	cfg.Enabled = false
	configRepo.On("Get", ctx, "community-1").Return(cfg, nil)

	_, err := svc.BeginReview(ctx, "community-1", "reviewer-1", &entity.BeginReviewRequest{
		SubmissionID: uuid.New().String(),
	})

	assert.ErrorIs(t, err, entity.ErrInvalidState)
}

func TestBeginReview_ForeignCommunitySubmission(t *testing.T) {
	configRepo := new(mocks.MockConfigRepository)
	submissionRepo := new(mocks.MockSubmissionRepository)
	draftRepo := new(mocks.MockDraftRepository)
	svc := NewWizardService(configRepo, submissionRepo, draftRepo)

	ctx := context.Background()
	submissionID := uuid.New()
	foreign := pendingSubmission(submissionID)
	foreign.CommunityID = "community-2"

	configRepo.On("Get", ctx, "community-1").Return(enabledConfig(), nil)
	submissionRepo.On("GetByID", ctx, submissionID).Return(foreign, nil)

	_, err := svc.BeginReview(ctx, "community-1", "reviewer-1", &entity.BeginReviewRequest{
		SubmissionID: submissionID.String(),
	})

	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestSetScore_PersistsBumpedVersion(t *testing.T) {
	configRepo := new(mocks.MockConfigRepository)
	submissionRepo := new(mocks.MockSubmissionRepository)
	draftRepo := new(mocks.MockDraftRepository)
	svc := NewWizardService(configRepo, submissionRepo, draftRepo)

	ctx := context.Background()
	submissionID := uuid.New()
	draft := storedDraft(submissionID)
	key := draft.Key()

	configRepo.On("Get", ctx, "community-1").Return(enabledConfig(), nil)
	draftRepo.On("Get", ctx, key).Return(draft, nil)
	draftRepo.On("Update", ctx, mock.MatchedBy(func(d *entity.ReviewDraft) bool {
		return d.Version == 2 && d.Scores["communication"] == 5
	})).Return(nil)

	result, err := svc.SetScore(ctx, key, "communication", 5)

	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Version)
	draftRepo.AssertExpectations(t)
}

func TestSetScore_ConcurrentUpdateConflict(t *testing.T) {
	configRepo := new(mocks.MockConfigRepository)
	submissionRepo := new(mocks.MockSubmissionRepository)
	draftRepo := new(mocks.MockDraftRepository)
	svc := NewWizardService(configRepo, submissionRepo, draftRepo)

	ctx := context.Background()
	draft := storedDraft(uuid.New())
	key := draft.Key()

	configRepo.On("Get", ctx, "community-1").Return(enabledConfig(), nil)
	draftRepo.On("Get", ctx, key).Return(draft, nil)
	draftRepo.On("Update", ctx, mock.Anything).Return(entity.ErrConflict)

	_, err := svc.SetScore(ctx, key, "communication", 5)

	assert.ErrorIs(t, err, entity.ErrConflict)
}

func TestSetScore_ExpiredDraftLooksGone(t *testing.T) {
	configRepo := new(mocks.MockConfigRepository)
	submissionRepo := new(mocks.MockSubmissionRepository)
	draftRepo := new(mocks.MockDraftRepository)
	svc := NewWizardService(configRepo, submissionRepo, draftRepo)

	ctx := context.Background()
	draft := storedDraft(uuid.New())
	key := draft.Key()

	configRepo.On("Get", ctx, "community-1").Return(enabledConfig(), nil)
	draftRepo.On("Get", ctx, key).Return(nil, entity.ErrNotFound)

	_, err := svc.SetScore(ctx, key, "communication", 5)

	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestSetScore_CategoryRemovedFromLiveConfig(t *testing.T) {
	configRepo := new(mocks.MockConfigRepository)
	submissionRepo := new(mocks.MockSubmissionRepository)
	draftRepo := new(mocks.MockDraftRepository)
	svc := NewWizardService(configRepo, submissionRepo, draftRepo)

	ctx := context.Background()
	draft := storedDraft(uuid.New())
	key := draft.Key()

	// Категорию удалили после начала ревью: мастер видит живую
	// конфигурацию, а не снимок, и оценку больше не принимает
	trimmed := enabledConfig()
	trimmed.ReviewCategories = trimmed.ReviewCategories[1:]

	configRepo.On("Get", ctx, "community-1").Return(trimmed, nil)
	draftRepo.On("Get", ctx, key).Return(draft, nil)

	_, err := svc.SetScore(ctx, key, "communication", 5)

	assert.ErrorIs(t, err, entity.ErrValidation)
	draftRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestRetreat_AtStepZeroSkipsWrite(t *testing.T) {
	configRepo := new(mocks.MockConfigRepository)
	submissionRepo := new(mocks.MockSubmissionRepository)
	draftRepo := new(mocks.MockDraftRepository)
	svc := NewWizardService(configRepo, submissionRepo, draftRepo)

	ctx := context.Background()
	draft := storedDraft(uuid.New())
	key := draft.Key()

	configRepo.On("Get", ctx, "community-1").Return(enabledConfig(), nil)
	draftRepo.On("Get", ctx, key).Return(draft, nil)

	result, err := svc.Retreat(ctx, key)

	require.NoError(t, err)
	assert.Equal(t, 0, result.CurrentStep)
	draftRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestGetSummary_Success(t *testing.T) {
	configRepo := new(mocks.MockConfigRepository)
	submissionRepo := new(mocks.MockSubmissionRepository)
	draftRepo := new(mocks.MockDraftRepository)
	svc := NewWizardService(configRepo, submissionRepo, draftRepo)

	ctx := context.Background()
	draft := storedDraft(uuid.New())
	draft.Scores["communication"] = 4
	key := draft.Key()

	configRepo.On("Get", ctx, "community-1").Return(enabledConfig(), nil)
	draftRepo.On("Get", ctx, key).Return(draft, nil)

	summary, err := svc.GetSummary(ctx, key)

	require.NoError(t, err)
	assert.Len(t, summary.Rows, 2)
	assert.Equal(t, 1, summary.ScoredCount)
}

func TestCancel_Success(t *testing.T) {
	configRepo := new(mocks.MockConfigRepository)
	submissionRepo := new(mocks.MockSubmissionRepository)
	draftRepo := new(mocks.MockDraftRepository)
	svc := NewWizardService(configRepo, submissionRepo, draftRepo)

	ctx := context.Background()
	draft := storedDraft(uuid.New())

	draftRepo.On("Delete", ctx, draft.Key()).Return(nil)

	err := svc.Cancel(ctx, draft.Key())

	assert.NoError(t, err)
}

func TestCancel_MissingDraft(t *testing.T) {
	configRepo := new(mocks.MockConfigRepository)
	submissionRepo := new(mocks.MockSubmissionRepository)
	draftRepo := new(mocks.MockDraftRepository)
	svc := NewWizardService(configRepo, submissionRepo, draftRepo)

	ctx := context.Background()
	draft := storedDraft(uuid.New())

	draftRepo.On("Delete", ctx, draft.Key()).Return(entity.ErrNotFound)

	err := svc.Cancel(ctx, draft.Key())

	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestState_RepoError(t *testing.T) {
	configRepo := new(mocks.MockConfigRepository)
	submissionRepo := new(mocks.MockSubmissionRepository)
	draftRepo := new(mocks.MockDraftRepository)
	svc := NewWizardService(configRepo, submissionRepo, draftRepo)

	ctx := context.Background()
	draft := storedDraft(uuid.New())

	configRepo.On("Get", ctx, "community-1").Return(enabledConfig(), nil)
	draftRepo.On("Get", ctx, draft.Key()).Return(nil, errors.New("redis down"))

	_, err := svc.State(ctx, draft.Key())

	assert.Error(t, err)
}
