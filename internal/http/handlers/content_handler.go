package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/moderation-backend/internal/dto"
	"github.com/ignatzorin/moderation-backend/internal/http/handlers/common"
	"github.com/ignatzorin/moderation-backend/internal/service"
)

// ContentHandler обслуживает регистрацию контента под модерацией.
type ContentHandler struct {
	contents *service.ContentService
}

// NewContentHandler создаёт новый хэндлер.
func NewContentHandler(contents *service.ContentService) *ContentHandler {
	return &ContentHandler{contents: contents}
}

// Create обрабатывает POST /api/contents.
func (h *ContentHandler) Create(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.CreateContentRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	content, err := h.contents.Create(c.Request.Context(), userID, service.CreateContentInput{
		ContentType: req.ContentType,
		Body:        req.Body,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusCreated, content)
}

// Get обрабатывает GET /api/contents/:id.
func (h *ContentHandler) Get(c *gin.Context) {
	contentID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	content, err := h.contents.Get(c.Request.Context(), contentID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, content)
}

// ListDecisions обрабатывает GET /api/contents/:id/decisions.
func (h *ContentHandler) ListDecisions(c *gin.Context) {
	contentID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)

	decisions, err := h.contents.ListDecisions(c.Request.Context(), contentID, limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, gin.H{"decisions": decisions})
}
