package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/moderation-backend/internal/dto"
	"github.com/ignatzorin/moderation-backend/internal/http/handlers/common"
	"github.com/ignatzorin/moderation-backend/internal/models"
	"github.com/ignatzorin/moderation-backend/internal/service"
)

// ConfigHandler обслуживает настройки движка модерации (администраторы).
type ConfigHandler struct {
	config *service.ConfigService
}

// NewConfigHandler создаёт новый хэндлер.
func NewConfigHandler(config *service.ConfigService) *ConfigHandler {
	return &ConfigHandler{config: config}
}

// Get обрабатывает GET /api/moderation/config.
func (h *ConfigHandler) Get(c *gin.Context) {
	cfg := h.config.Current(c.Request.Context())
	common.RespondJSON(c, http.StatusOK, cfg)
}

// Update обрабатывает PUT /api/moderation/config.
func (h *ConfigHandler) Update(c *gin.Context) {
	var req dto.UpdateConfigRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	cfg, err := h.config.Update(c.Request.Context(), models.ModerationConfig{
		AutoHideThreshold: req.AutoHideThreshold,
		RequiredVotes:     req.RequiredVotes,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, cfg)
}
