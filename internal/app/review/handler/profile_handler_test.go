package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"reviewflow/internal/app/review/entity"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) GetProfile(ctx context.Context, userID, communityID string) (*entity.UserProfile, error) {
	args := m.Called(ctx, userID, communityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.UserProfile), args.Error(1)
}

func (m *MockProfileService) ReviewerHistory(ctx context.Context, communityID, reviewerID string, limit int) ([]entity.ReviewSession, error) {
	args := m.Called(ctx, communityID, reviewerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.ReviewSession), args.Error(1)
}

func (m *MockProfileService) Leaderboard(ctx context.Context, communityID string, limit int) (*entity.LeaderboardResponse, error) {
	args := m.Called(ctx, communityID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.LeaderboardResponse), args.Error(1)
}

// setupProfileRouter поднимает роуты профилей с подставленной identity
func setupProfileRouter(svc ProfileServiceInterface) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	router.Use(func(c *gin.Context) {
		c.Set("user_id", "user-1")
		c.Set("community_id", "community-1")
		c.Next()
	})

	h := NewProfileHandler(svc)
	router.GET("/profiles/:user_id", h.GetProfile)
	router.GET("/profiles/:user_id/reviews", h.GetReviewerHistory)
	router.GET("/leaderboard", h.GetLeaderboard)

	return router
}

func TestGetProfileHandler_Success(t *testing.T) {
	svc := new(MockProfileService)
	router := setupProfileRouter(svc)

	profile := &entity.UserProfile{
		UserID:            "user-1",
		CommunityID:       "community-1",
		TotalReviewsGiven: 7,
	}
	svc.On("GetProfile", mock.Anything, "user-1", "community-1").Return(profile, nil)

	req, _ := http.NewRequest(http.MethodGet, "/profiles/user-1", nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var result entity.UserProfile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 7, result.TotalReviewsGiven)
}

func TestGetProfileHandler_NotFound(t *testing.T) {
	svc := new(MockProfileService)
	router := setupProfileRouter(svc)

	svc.On("GetProfile", mock.Anything, "ghost", "community-1").Return(nil, entity.ErrNotFound)

	req, _ := http.NewRequest(http.MethodGet, "/profiles/ghost", nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetReviewerHistoryHandler_Success(t *testing.T) {
	svc := new(MockProfileService)
	router := setupProfileRouter(svc)

	sessions := []entity.ReviewSession{
		{ID: uuid.New(), CommunityID: "community-1", ReviewerID: "reviewer-1"},
		{ID: uuid.New(), CommunityID: "community-1", ReviewerID: "reviewer-1"},
	}
	svc.On("ReviewerHistory", mock.Anything, "community-1", "reviewer-1", 5).Return(sessions, nil)

	req, _ := http.NewRequest(http.MethodGet, "/profiles/reviewer-1/reviews?limit=5", nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var result entity.SessionListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 2, result.Total)
	svc.AssertExpectations(t)
}

func TestGetReviewerHistoryHandler_InvalidLimit(t *testing.T) {
	svc := new(MockProfileService)
	router := setupProfileRouter(svc)

	req, _ := http.NewRequest(http.MethodGet, "/profiles/reviewer-1/reviews?limit=-2", nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "ReviewerHistory", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetLeaderboardHandler_Success(t *testing.T) {
	svc := new(MockProfileService)
	router := setupProfileRouter(svc)

	leaderboard := &entity.LeaderboardResponse{
		CommunityID: "community-1",
		Entries: []entity.LeaderboardEntry{
			{Rank: 1, UserID: "reviewer-1", TotalReviewsGiven: 10, AverageScore: 4.5},
		},
	}
	svc.On("Leaderboard", mock.Anything, "community-1", 0).Return(leaderboard, nil)

	req, _ := http.NewRequest(http.MethodGet, "/leaderboard", nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var result entity.LeaderboardResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.Len(t, result.Entries, 1)
	assert.Equal(t, "reviewer-1", result.Entries[0].UserID)
}

func TestGetLeaderboardHandler_InvalidLimit(t *testing.T) {
	svc := new(MockProfileService)
	router := setupProfileRouter(svc)

	req, _ := http.NewRequest(http.MethodGet, "/leaderboard?limit=ten", nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Leaderboard", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetProfileHandler_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewProfileHandler(new(MockProfileService))
	router.GET("/profiles/:user_id", h.GetProfile)

	req, _ := http.NewRequest(http.MethodGet, "/profiles/user-1", nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
