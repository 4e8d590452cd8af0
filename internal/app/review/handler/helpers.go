package handler

import (
	"errors"
	"net/http"

	"reviewflow/internal/app/review/entity"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// identity извлекает пользователя и сообщество, положенные в контекст
// AuthMiddleware. Возвращает false, если запрос пришел мимо middleware
func identity(c *gin.Context) (userID, communityID string, ok bool) {
	rawUser, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", "", false
	}
	rawCommunity, exists := c.Get("community_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", "", false
	}

	userID, okUser := rawUser.(string)
	communityID, okCommunity := rawCommunity.(string)
	if !okUser || !okCommunity {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid identity in context"})
		return "", "", false
	}

	return userID, communityID, true
}

// respondError транслирует доменные ошибки в HTTP статусы.
// Отличие conflict от invalid state: первый лечится повтором после
// перечитывания состояния, второй - нет
func respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, entity.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, entity.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, entity.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, entity.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, entity.ErrIncompleteReview):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

func formatValidationError(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrors {
			return fieldError.Field() + " is " + fieldError.Tag()
		}
	}
	return "Validation failed"
}
