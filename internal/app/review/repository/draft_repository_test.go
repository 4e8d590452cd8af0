package repository

import (
	"context"
	"testing"
	"time"

	"reviewflow/internal/app/review/entity"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// DraftRepositoryTestSuite тестовый suite для Redis Draft Store
type DraftRepositoryTestSuite struct {
	suite.Suite
	miniRedis *miniredis.Miniredis
	client    *redis.Client
	repo      DraftRepository
}

func TestDraftRepositorySuite(t *testing.T) {
	suite.Run(t, new(DraftRepositoryTestSuite))
}

func (s *DraftRepositoryTestSuite) SetupSuite() {
	var err error
	s.miniRedis, err = miniredis.Run()
	require.NoError(s.T(), err)

	s.client = redis.NewClient(&redis.Options{
		Addr: s.miniRedis.Addr(),
	})

	s.repo = NewDraftRepository(s.client)
}

func (s *DraftRepositoryTestSuite) SetupTest() {
	s.miniRedis.FlushAll()
}

func (s *DraftRepositoryTestSuite) TearDownSuite() {
	s.client.Close()
	s.miniRedis.Close()
}

func (s *DraftRepositoryTestSuite) makeDraft(reviewerID string, touchedAt time.Time) *entity.ReviewDraft {
	return &entity.ReviewDraft{
		CommunityID:    "community-1",
		ReviewerID:     reviewerID,
		SubmissionID:   "11111111-2222-3333-4444-555555555555",
		SubmitterID:    "submitter-1",
		CurrentStep:    0,
		Scores:         map[string]int{},
		Notes:          map[string]entity.Note{},
		TimeoutMinutes: 15,
		Version:        1,
		CreatedAt:      touchedAt,
		LastTouchedAt:  touchedAt,
	}
}

// ===================== Create Tests =====================

func (s *DraftRepositoryTestSuite) TestCreate_Success() {
	ctx := context.Background()
	draft := s.makeDraft("reviewer-1", time.Now().UTC())

	err := s.repo.Create(ctx, draft)

	s.NoError(err)
	s.True(s.miniRedis.Exists(draft.Key().RedisKey()))
}

func (s *DraftRepositoryTestSuite) TestCreate_Conflict() {
	ctx := context.Background()
	draft := s.makeDraft("reviewer-1", time.Now().UTC())

	err := s.repo.Create(ctx, draft)
	s.NoError(err)

	// Повторный BeginReview по тому же ключу
	err = s.repo.Create(ctx, draft)
	s.ErrorIs(err, entity.ErrConflict)
}

func (s *DraftRepositoryTestSuite) TestCreate_DistinctReviewersDoNotCollide() {
	ctx := context.Background()
	now := time.Now().UTC()

	s.NoError(s.repo.Create(ctx, s.makeDraft("reviewer-1", now)))
	s.NoError(s.repo.Create(ctx, s.makeDraft("reviewer-2", now)))
}

// ===================== Get Tests =====================

func (s *DraftRepositoryTestSuite) TestGet_Success() {
	ctx := context.Background()
	draft := s.makeDraft("reviewer-1", time.Now().UTC())
	draft.Scores["skill"] = 4
	s.NoError(s.repo.Create(ctx, draft))

	result, err := s.repo.Get(ctx, draft.Key())

	s.NoError(err)
	s.Equal(draft.ReviewerID, result.ReviewerID)
	s.Equal(4, result.Scores["skill"])
	s.Equal(int64(1), result.Version)
}

func (s *DraftRepositoryTestSuite) TestGet_NotFound() {
	ctx := context.Background()

	_, err := s.repo.Get(ctx, entity.DraftKey{
		CommunityID:  "community-1",
		ReviewerID:   "ghost",
		SubmissionID: "missing",
	})

	s.ErrorIs(err, entity.ErrNotFound)
}

// ===================== Update Tests =====================

func (s *DraftRepositoryTestSuite) TestUpdate_Success() {
	ctx := context.Background()
	draft := s.makeDraft("reviewer-1", time.Now().UTC())
	s.NoError(s.repo.Create(ctx, draft))

	next := draft.Clone()
	next.Version = 2
	next.Scores["skill"] = 5

	err := s.repo.Update(ctx, next)

	s.NoError(err)
	stored, err := s.repo.Get(ctx, draft.Key())
	s.NoError(err)
	s.Equal(int64(2), stored.Version)
	s.Equal(5, stored.Scores["skill"])
}

func (s *DraftRepositoryTestSuite) TestUpdate_StaleVersionConflict() {
	ctx := context.Background()
	draft := s.makeDraft("reviewer-1", time.Now().UTC())
	s.NoError(s.repo.Create(ctx, draft))

	winner := draft.Clone()
	winner.Version = 2
	s.NoError(s.repo.Update(ctx, winner))

	// Второй мутатор собран от той же версии 1: проигрывает гонку
	loser := draft.Clone()
	loser.Version = 2
	loser.Scores["communication"] = 1

	err := s.repo.Update(ctx, loser)

	s.ErrorIs(err, entity.ErrConflict)
	stored, getErr := s.repo.Get(ctx, draft.Key())
	s.NoError(getErr)
	s.NotContains(stored.Scores, "communication")
}

func (s *DraftRepositoryTestSuite) TestUpdate_MissingDraft() {
	ctx := context.Background()
	draft := s.makeDraft("reviewer-1", time.Now().UTC())
	draft.Version = 2

	err := s.repo.Update(ctx, draft)

	s.ErrorIs(err, entity.ErrNotFound)
}

// ===================== Delete Tests =====================

func (s *DraftRepositoryTestSuite) TestDelete_Success() {
	ctx := context.Background()
	draft := s.makeDraft("reviewer-1", time.Now().UTC())
	s.NoError(s.repo.Create(ctx, draft))

	err := s.repo.Delete(ctx, draft.Key())

	s.NoError(err)
	_, err = s.repo.Get(ctx, draft.Key())
	s.ErrorIs(err, entity.ErrNotFound)
}

func (s *DraftRepositoryTestSuite) TestDelete_NotFound() {
	ctx := context.Background()
	draft := s.makeDraft("reviewer-1", time.Now().UTC())

	err := s.repo.Delete(ctx, draft.Key())

	s.ErrorIs(err, entity.ErrNotFound)
}

// ===================== Sweep Tests =====================

func (s *DraftRepositoryTestSuite) TestSweep_EvictsExpiredOnly() {
	ctx := context.Background()
	now := time.Now().UTC()

	expired := s.makeDraft("reviewer-old", now.Add(-20*time.Minute))
	fresh := s.makeDraft("reviewer-new", now.Add(-1*time.Minute))
	s.NoError(s.repo.Create(ctx, expired))
	s.NoError(s.repo.Create(ctx, fresh))

	evicted, err := s.repo.Sweep(ctx, now)

	s.NoError(err)
	s.Len(evicted, 1)
	s.Equal("reviewer-old", evicted[0].ReviewerID)

	_, err = s.repo.Get(ctx, expired.Key())
	s.ErrorIs(err, entity.ErrNotFound)
	_, err = s.repo.Get(ctx, fresh.Key())
	s.NoError(err)
}

func (s *DraftRepositoryTestSuite) TestSweep_ExactTimeoutBoundary() {
	ctx := context.Background()
	now := time.Now().UTC()

	// Ровно 15 минут бездействия считается истечением
	boundary := s.makeDraft("reviewer-1", now.Add(-15*time.Minute))
	s.NoError(s.repo.Create(ctx, boundary))

	evicted, err := s.repo.Sweep(ctx, now)

	s.NoError(err)
	s.Len(evicted, 1)
}

func (s *DraftRepositoryTestSuite) TestSweep_Empty() {
	ctx := context.Background()

	evicted, err := s.repo.Sweep(ctx, time.Now().UTC())

	s.NoError(err)
	s.Empty(evicted)
}

func (s *DraftRepositoryTestSuite) TestSweep_ReviewerIDWithColons() {
	ctx := context.Background()
	now := time.Now().UTC()

	// Двоеточия в идентификаторе не должны ломать разбор ключа при sweep
	expired := s.makeDraft("org:team:reviewer-1", now.Add(-30*time.Minute))
	s.NoError(s.repo.Create(ctx, expired))

	evicted, err := s.repo.Sweep(ctx, now)

	s.NoError(err)
	s.Len(evicted, 1)
	s.Equal("org:team:reviewer-1", evicted[0].ReviewerID)
	s.Equal(expired.Key(), evicted[0])

	_, err = s.repo.Get(ctx, expired.Key())
	s.ErrorIs(err, entity.ErrNotFound)

	members, err := s.client.SMembers(ctx, draftIndexKey).Result()
	s.NoError(err)
	s.Empty(members)
}

func (s *DraftRepositoryTestSuite) TestSweep_DropsUnparsableIndexEntries() {
	ctx := context.Background()
	draft := s.makeDraft("reviewer-1", time.Now().UTC())
	s.NoError(s.repo.Create(ctx, draft))

	// Запись с нечитаемым телом убирается из индекса, живой черновик не трогается
	garbage := "review_draft:community-1:reviewer-x:broken"
	s.NoError(s.client.Set(ctx, garbage, "not-json", 0).Err())
	s.NoError(s.client.SAdd(ctx, draftIndexKey, garbage).Err())

	evicted, err := s.repo.Sweep(ctx, time.Now().UTC())

	s.NoError(err)
	s.Empty(evicted)

	members, err := s.client.SMembers(ctx, draftIndexKey).Result()
	s.NoError(err)
	s.Equal([]string{draft.Key().RedisKey()}, members)
}

func (s *DraftRepositoryTestSuite) TestSweep_CleansDanglingIndexEntries() {
	ctx := context.Background()
	draft := s.makeDraft("reviewer-1", time.Now().UTC())
	s.NoError(s.repo.Create(ctx, draft))

	// Ключ исчез мимо Delete (страховочный TTL): индекс должен очиститься
	s.miniRedis.Del(draft.Key().RedisKey())

	evicted, err := s.repo.Sweep(ctx, time.Now().UTC())

	s.NoError(err)
	s.Empty(evicted)

	members, err := s.client.SMembers(ctx, draftIndexKey).Result()
	s.NoError(err)
	s.Empty(members)
}
