package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/moderation-backend/internal/dto"
	"github.com/ignatzorin/moderation-backend/internal/http/handlers/common"
	"github.com/ignatzorin/moderation-backend/internal/service"
)

// AppealHandler обслуживает апелляции и голосование по ним.
type AppealHandler struct {
	appeals *service.AppealService
	votes   *service.VoteService
}

// NewAppealHandler создаёт новый хэндлер.
func NewAppealHandler(appeals *service.AppealService, votes *service.VoteService) *AppealHandler {
	return &AppealHandler{appeals: appeals, votes: votes}
}

// Submit обрабатывает POST /api/appeals.
func (h *AppealHandler) Submit(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.SubmitAppealRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	contentID, err := uuid.Parse(req.ContentID)
	if err != nil {
		common.RespondBadRequest(c, "некорректный идентификатор контента")
		return
	}

	appeal, err := h.appeals.SubmitAppeal(c.Request.Context(), userID, service.SubmitAppealInput{
		ContentID:         contentID,
		AppealType:        req.AppealType,
		AppealReason:      req.AppealReason,
		UserStatement:     req.UserStatement,
		AdditionalDetails: req.AdditionalDetails,
		EvidenceURLs:      req.EvidenceURLs,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusCreated, appeal)
}

// Get обрабатывает GET /api/appeals/:id.
func (h *AppealHandler) Get(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	role, err := common.CurrentUserRole(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	appealID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	details, err := h.appeals.GetAppeal(c.Request.Context(), userID, role, appealID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, details)
}

// ListQueue обрабатывает GET /api/appeals/queue (модераторы).
func (h *AppealHandler) ListQueue(c *gin.Context) {
	limit, offset := common.GetPagination(c)

	appeals, err := h.appeals.ListQueue(c.Request.Context(), limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, gin.H{"appeals": appeals})
}

// ListMy обрабатывает GET /api/appeals/my.
func (h *AppealHandler) ListMy(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)

	appeals, err := h.appeals.ListMy(c.Request.Context(), userID, limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, gin.H{"appeals": appeals})
}

// CastVote обрабатывает POST /api/appeals/:id/votes.
func (h *AppealHandler) CastVote(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	appealID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.CastVoteRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	result, err := h.votes.CastVote(c.Request.Context(), userID, appealID, service.CastVoteInput{
		Decision:   req.Decision,
		Confidence: req.Confidence,
		Reasoning:  req.Reasoning,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusCreated, result)
}

// ListVotes обрабатывает GET /api/appeals/:id/votes (модераторы).
func (h *AppealHandler) ListVotes(c *gin.Context) {
	appealID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	votes, err := h.votes.ListVotes(c.Request.Context(), appealID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, gin.H{"votes": votes})
}
