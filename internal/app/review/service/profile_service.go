package service

import (
	"context"
	"sort"

	"reviewflow/internal/app/review/entity"
	"reviewflow/internal/app/review/repository"
)

// DefaultLeaderboardLimit ограничивает размер лидерборда по умолчанию
const DefaultLeaderboardLimit = 10

// Размер выборки истории ревьюера, если клиент не задал свой
const defaultHistoryLimit = 20

// ProfileService отвечает за чтение профилей, историю ревьюера и лидерборд
type ProfileService struct {
	profileRepo repository.ProfileRepository
	sessionRepo repository.SessionRepository
}

// NewProfileService создает сервис профилей
func NewProfileService(profileRepo repository.ProfileRepository, sessionRepo repository.SessionRepository) *ProfileService {
	return &ProfileService{profileRepo: profileRepo, sessionRepo: sessionRepo}
}

// GetProfile возвращает профиль пользователя в сообществе
func (s *ProfileService) GetProfile(ctx context.Context, userID, communityID string) (*entity.UserProfile, error) {
	return s.profileRepo.Get(ctx, userID, communityID)
}

// RecordSubmission увеличивает счетчик заявок автора.
// Вызывается при создании заявки, а не при публикации ревью
func (s *ProfileService) RecordSubmission(ctx context.Context, userID, communityID string) error {
	profile, err := s.profileRepo.GetOrCreate(ctx, userID, communityID)
	if err != nil {
		return err
	}
	profile.TotalSubmissions++
	return s.profileRepo.Save(ctx, profile)
}

// ReviewerHistory возвращает последние опубликованные пользователем
// ревью в сообществе, новые первыми
func (s *ProfileService) ReviewerHistory(ctx context.Context, communityID, reviewerID string, limit int) ([]entity.ReviewSession, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return s.sessionRepo.ListByReviewer(ctx, communityID, reviewerID, limit)
}

// Leaderboard строит рейтинг ревьюеров сообщества.
// Порядок: total_reviews_given по убыванию, затем average_score по
// убыванию, затем first_review_at по возрастанию (раньше начал - выше)
func (s *ProfileService) Leaderboard(ctx context.Context, communityID string, limit int) (*entity.LeaderboardResponse, error) {
	profiles, err := s.profileRepo.ListReviewers(ctx, communityID)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(profiles, func(i, j int) bool {
		a, b := &profiles[i], &profiles[j]
		if a.TotalReviewsGiven != b.TotalReviewsGiven {
			return a.TotalReviewsGiven > b.TotalReviewsGiven
		}
		if a.AverageScore != b.AverageScore {
			return a.AverageScore > b.AverageScore
		}
		switch {
		case a.FirstReviewAt == nil:
			return false
		case b.FirstReviewAt == nil:
			return true
		case !a.FirstReviewAt.Equal(*b.FirstReviewAt):
			return a.FirstReviewAt.Before(*b.FirstReviewAt)
		}
		return a.UserID < b.UserID
	})

	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	if len(profiles) > limit {
		profiles = profiles[:limit]
	}

	entries := make([]entity.LeaderboardEntry, 0, len(profiles))
	for i, p := range profiles {
		entries = append(entries, entity.LeaderboardEntry{
			Rank:              i + 1,
			UserID:            p.UserID,
			TotalReviewsGiven: p.TotalReviewsGiven,
			AverageScore:      p.AverageScore,
		})
	}

	return &entity.LeaderboardResponse{
		CommunityID: communityID,
		Entries:     entries,
	}, nil
}
