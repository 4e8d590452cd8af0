package handler

import (
	"context"
	"net/http"

	"reviewflow/internal/app/review/entity"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type WizardServiceInterface interface {
	BeginReview(ctx context.Context, communityID, reviewerID string, req *entity.BeginReviewRequest) (*entity.ReviewDraft, error)
	SetScore(ctx context.Context, key entity.DraftKey, categoryID string, value int) (*entity.ReviewDraft, error)
	AddNote(ctx context.Context, key entity.DraftKey, categoryID string, note entity.Note) (*entity.ReviewDraft, error)
	Advance(ctx context.Context, key entity.DraftKey) (*entity.ReviewDraft, error)
	Retreat(ctx context.Context, key entity.DraftKey) (*entity.ReviewDraft, error)
	State(ctx context.Context, key entity.DraftKey) (*entity.DraftStateResponse, error)
	GetSummary(ctx context.Context, key entity.DraftKey) (*entity.SummaryResponse, error)
	Cancel(ctx context.Context, key entity.DraftKey) error
}

type PublishServiceInterface interface {
	Publish(ctx context.Context, key entity.DraftKey) (*entity.ReviewSession, error)
}

// ReviewHandler обслуживает мастер ревью: шаги, оценки, заметки,
// сводку, публикацию и отмену
type ReviewHandler struct {
	wizardService  WizardServiceInterface
	publishService PublishServiceInterface
	validator      *validator.Validate
}

func NewReviewHandler(wizardService WizardServiceInterface, publishService PublishServiceInterface) *ReviewHandler {
	return &ReviewHandler{
		wizardService:  wizardService,
		publishService: publishService,
		validator:      validator.New(),
	}
}

// draftKey собирает ключ черновика из токена и пути.
// Ревьюер берется только из токена: чужой черновик недостижим по построению
func (h *ReviewHandler) draftKey(c *gin.Context) (entity.DraftKey, bool) {
	userID, communityID, ok := identity(c)
	if !ok {
		return entity.DraftKey{}, false
	}

	submissionID := c.Param("submission_id")
	if submissionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Submission ID is required"})
		return entity.DraftKey{}, false
	}

	return entity.DraftKey{
		CommunityID:  communityID,
		ReviewerID:   userID,
		SubmissionID: submissionID,
	}, true
}

func (h *ReviewHandler) BeginReview(c *gin.Context) {
	userID, communityID, ok := identity(c)
	if !ok {
		return
	}

	var req entity.BeginReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	draft, err := h.wizardService.BeginReview(c.Request.Context(), communityID, userID, &req)
	if err != nil {
		respondError(c, err, "Failed to begin review")
		return
	}

	c.JSON(http.StatusCreated, draft)
}

func (h *ReviewHandler) GetState(c *gin.Context) {
	key, ok := h.draftKey(c)
	if !ok {
		return
	}

	state, err := h.wizardService.State(c.Request.Context(), key)
	if err != nil {
		respondError(c, err, "Failed to get review state")
		return
	}

	c.JSON(http.StatusOK, state)
}

func (h *ReviewHandler) SetScore(c *gin.Context) {
	key, ok := h.draftKey(c)
	if !ok {
		return
	}

	var req entity.SetScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	draft, err := h.wizardService.SetScore(c.Request.Context(), key, req.CategoryID, *req.Value)
	if err != nil {
		respondError(c, err, "Failed to set score")
		return
	}

	c.JSON(http.StatusOK, draft)
}

func (h *ReviewHandler) AddNote(c *gin.Context) {
	key, ok := h.draftKey(c)
	if !ok {
		return
	}

	var req entity.AddNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	note := entity.Note{
		Reference: req.Reference,
		Feedback:  req.Feedback,
	}

	draft, err := h.wizardService.AddNote(c.Request.Context(), key, req.CategoryID, note)
	if err != nil {
		respondError(c, err, "Failed to add note")
		return
	}

	c.JSON(http.StatusOK, draft)
}

func (h *ReviewHandler) Advance(c *gin.Context) {
	key, ok := h.draftKey(c)
	if !ok {
		return
	}

	draft, err := h.wizardService.Advance(c.Request.Context(), key)
	if err != nil {
		respondError(c, err, "Failed to advance review")
		return
	}

	c.JSON(http.StatusOK, draft)
}

func (h *ReviewHandler) Retreat(c *gin.Context) {
	key, ok := h.draftKey(c)
	if !ok {
		return
	}

	draft, err := h.wizardService.Retreat(c.Request.Context(), key)
	if err != nil {
		respondError(c, err, "Failed to retreat review")
		return
	}

	c.JSON(http.StatusOK, draft)
}

func (h *ReviewHandler) GetSummary(c *gin.Context) {
	key, ok := h.draftKey(c)
	if !ok {
		return
	}

	summary, err := h.wizardService.GetSummary(c.Request.Context(), key)
	if err != nil {
		respondError(c, err, "Failed to get summary")
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *ReviewHandler) Publish(c *gin.Context) {
	key, ok := h.draftKey(c)
	if !ok {
		return
	}

	session, err := h.publishService.Publish(c.Request.Context(), key)
	if err != nil {
		respondError(c, err, "Failed to publish review")
		return
	}

	c.JSON(http.StatusCreated, session)
}

func (h *ReviewHandler) Cancel(c *gin.Context) {
	key, ok := h.draftKey(c)
	if !ok {
		return
	}

	if err := h.wizardService.Cancel(c.Request.Context(), key); err != nil {
		respondError(c, err, "Failed to cancel review")
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{
		Message: "Review cancelled successfully",
	})
}
