package handler

import (
	"context"
	"net/http"

	"reviewflow/internal/app/review/entity"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type ConfigServiceInterface interface {
	GetOrCreate(ctx context.Context, communityID string) (*entity.ReviewConfig, error)
	Update(ctx context.Context, communityID string, req *entity.UpdateConfigRequest) (*entity.ReviewConfig, error)
}

// ConfigHandler обслуживает конфигурацию ревью сообщества
type ConfigHandler struct {
	configService ConfigServiceInterface
	validator     *validator.Validate
}

func NewConfigHandler(configService ConfigServiceInterface) *ConfigHandler {
	return &ConfigHandler{
		configService: configService,
		validator:     validator.New(),
	}
}

func (h *ConfigHandler) GetConfig(c *gin.Context) {
	_, communityID, ok := identity(c)
	if !ok {
		return
	}

	cfg, err := h.configService.GetOrCreate(c.Request.Context(), communityID)
	if err != nil {
		respondError(c, err, "Failed to get config")
		return
	}

	c.JSON(http.StatusOK, cfg)
}

func (h *ConfigHandler) UpdateConfig(c *gin.Context) {
	_, communityID, ok := identity(c)
	if !ok {
		return
	}

	var req entity.UpdateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	cfg, err := h.configService.Update(c.Request.Context(), communityID, &req)
	if err != nil {
		respondError(c, err, "Failed to update config")
		return
	}

	c.JSON(http.StatusOK, cfg)
}
