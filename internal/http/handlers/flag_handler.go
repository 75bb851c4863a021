package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/moderation-backend/internal/dto"
	"github.com/ignatzorin/moderation-backend/internal/http/handlers/common"
	"github.com/ignatzorin/moderation-backend/internal/service"
)

// FlagHandler обслуживает подачу и просмотр жалоб.
type FlagHandler struct {
	flags *service.FlagService
}

// NewFlagHandler создаёт новый хэндлер.
func NewFlagHandler(flags *service.FlagService) *FlagHandler {
	return &FlagHandler{flags: flags}
}

// Submit обрабатывает POST /api/flags.
func (h *FlagHandler) Submit(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.SubmitFlagRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	contentID, err := uuid.Parse(req.ContentID)
	if err != nil {
		common.RespondBadRequest(c, "некорректный идентификатор контента")
		return
	}

	result, err := h.flags.SubmitFlag(c.Request.Context(), userID, service.SubmitFlagInput{
		ContentID: contentID,
		Reason:    req.Reason,
		Urgency:   req.Urgency,
		Details:   req.Details,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusCreated, result)
}

// ListByContent обрабатывает GET /api/contents/:id/flags (модераторы).
func (h *FlagHandler) ListByContent(c *gin.Context) {
	contentID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)

	flags, err := h.flags.ListContentFlags(c.Request.Context(), contentID, limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, gin.H{"flags": flags})
}

// ListMy обрабатывает GET /api/flags/my.
func (h *FlagHandler) ListMy(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)

	flags, err := h.flags.ListMyFlags(c.Request.Context(), userID, limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, gin.H{"flags": flags})
}
