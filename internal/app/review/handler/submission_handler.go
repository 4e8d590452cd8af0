package handler

import (
	"context"
	"net/http"
	"strconv"

	"reviewflow/internal/app/review/entity"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type SubmissionServiceInterface interface {
	Create(ctx context.Context, communityID, submitterID string, req *entity.CreateSubmissionRequest) (*entity.Submission, error)
	Get(ctx context.Context, communityID, id string) (*entity.Submission, error)
	ListPending(ctx context.Context, communityID string, limit int) ([]entity.Submission, error)
	ListReviews(ctx context.Context, communityID, id string) ([]entity.ReviewSession, error)
	GetReview(ctx context.Context, communityID, id string) (*entity.ReviewSession, error)
}

// SubmissionHandler обслуживает прием и чтение заявок
// и опубликованных по ним ревью
type SubmissionHandler struct {
	submissionService SubmissionServiceInterface
	validator         *validator.Validate
}

func NewSubmissionHandler(submissionService SubmissionServiceInterface) *SubmissionHandler {
	return &SubmissionHandler{
		submissionService: submissionService,
		validator:         validator.New(),
	}
}

func (h *SubmissionHandler) CreateSubmission(c *gin.Context) {
	userID, communityID, ok := identity(c)
	if !ok {
		return
	}

	var req entity.CreateSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	submission, err := h.submissionService.Create(c.Request.Context(), communityID, userID, &req)
	if err != nil {
		respondError(c, err, "Failed to create submission")
		return
	}

	c.JSON(http.StatusCreated, submission)
}

func (h *SubmissionHandler) GetSubmission(c *gin.Context) {
	_, communityID, ok := identity(c)
	if !ok {
		return
	}

	submissionID := c.Param("submission_id")
	if submissionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Submission ID is required"})
		return
	}

	submission, err := h.submissionService.Get(c.Request.Context(), communityID, submissionID)
	if err != nil {
		respondError(c, err, "Failed to get submission")
		return
	}

	c.JSON(http.StatusOK, submission)
}

func (h *SubmissionHandler) ListPending(c *gin.Context) {
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

	submissions, err := h.submissionService.ListPending(c.Request.Context(), communityID, limit)
	if err != nil {
		respondError(c, err, "Failed to list submissions")
		return
	}

	c.JSON(http.StatusOK, entity.SubmissionListResponse{
		Submissions: submissions,
		Total:       len(submissions),
	})
}

func (h *SubmissionHandler) ListSubmissionReviews(c *gin.Context) {
	_, communityID, ok := identity(c)
	if !ok {
		return
	}

	submissionID := c.Param("submission_id")
	if submissionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Submission ID is required"})
		return
	}

	sessions, err := h.submissionService.ListReviews(c.Request.Context(), communityID, submissionID)
	if err != nil {
		respondError(c, err, "Failed to list submission reviews")
		return
	}

	c.JSON(http.StatusOK, entity.SessionListResponse{
		Sessions: sessions,
		Total:    len(sessions),
	})
}

func (h *SubmissionHandler) GetReviewSession(c *gin.Context) {
	_, communityID, ok := identity(c)
	if !ok {
		return
	}

	sessionID := c.Param("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Session ID is required"})
		return
	}

	session, err := h.submissionService.GetReview(c.Request.Context(), communityID, sessionID)
	if err != nil {
		respondError(c, err, "Failed to get review session")
		return
	}

	c.JSON(http.StatusOK, session)
}
