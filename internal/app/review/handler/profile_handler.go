package handler

import (
	"context"
	"net/http"
	"strconv"

	"reviewflow/internal/app/review/entity"

	"github.com/gin-gonic/gin"
)

type ProfileServiceInterface interface {
	GetProfile(ctx context.Context, userID, communityID string) (*entity.UserProfile, error)
	ReviewerHistory(ctx context.Context, communityID, reviewerID string, limit int) ([]entity.ReviewSession, error)
	Leaderboard(ctx context.Context, communityID string, limit int) (*entity.LeaderboardResponse, error)
}

// ProfileHandler обслуживает профили пользователей, историю ревьюера
// и лидерборд
type ProfileHandler struct {
	profileService ProfileServiceInterface
}

func NewProfileHandler(profileService ProfileServiceInterface) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	_, communityID, ok := identity(c)
	if !ok {
		return
	}

	userID := c.Param("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User ID is required"})
		return
	}

	profile, err := h.profileService.GetProfile(c.Request.Context(), userID, communityID)
	if err != nil {
		respondError(c, err, "Failed to get profile")
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) GetReviewerHistory(c *gin.Context) {
	_, communityID, ok := identity(c)
	if !ok {
		return
	}

	userID := c.Param("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User ID is required"})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = parsed
	}

	sessions, err := h.profileService.ReviewerHistory(c.Request.Context(), communityID, userID, limit)
	if err != nil {
		respondError(c, err, "Failed to get reviewer history")
		return
	}

	c.JSON(http.StatusOK, entity.SessionListResponse{
		Sessions: sessions,
		Total:    len(sessions),
	})
}

func (h *ProfileHandler) GetLeaderboard(c *gin.Context) {
	_, communityID, ok := identity(c)
	if !ok {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = parsed
	}

	leaderboard, err := h.profileService.Leaderboard(c.Request.Context(), communityID, limit)
	if err != nil {
		respondError(c, err, "Failed to get leaderboard")
		return
	}

	c.JSON(http.StatusOK, leaderboard)
}
