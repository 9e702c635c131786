package handler

import (
	"net/http"

	"folio-chat/internal/services"
	"folio-chat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ParticipantHandler struct {
	service *services.ParticipantService
}

func NewParticipantHandler(service *services.ParticipantService) *ParticipantHandler {
	return &ParticipantHandler{service: service}
}

func (h *ParticipantHandler) Add(c *gin.Context) {
	chatID, ok := pathID(c, "id", "chat id")
	if !ok {
		return
	}
	callerID, ok := currentUser(c)
	if !ok {
		return
	}

	var req httpdto.AddParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}
	targetID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid user_id", "INVALID_REQUEST"))
		return
	}

	info, err := h.service.AddParticipant(c.Request.Context(), chatID, callerID, targetID, req.Role)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(httpdto.FromParticipant(info)))
}

func (h *ParticipantHandler) Remove(c *gin.Context) {
	chatID, ok := pathID(c, "id", "chat id")
	if !ok {
		return
	}
	targetID, ok := pathID(c, "user_id", "user_id")
	if !ok {
		return
	}
	callerID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.service.RemoveParticipant(c.Request.Context(), chatID, callerID, targetID); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}

func (h *ParticipantHandler) UpdateRole(c *gin.Context) {
	chatID, ok := pathID(c, "id", "chat id")
	if !ok {
		return
	}
	targetID, ok := pathID(c, "user_id", "user_id")
	if !ok {
		return
	}
	callerID, ok := currentUser(c)
	if !ok {
		return
	}

	var req httpdto.UpdateParticipantRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	if err := h.service.UpdateRole(c.Request.Context(), chatID, callerID, targetID, req.Role); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}

func (h *ParticipantHandler) List(c *gin.Context) {
	chatID, ok := pathID(c, "id", "chat id")
	if !ok {
		return
	}
	callerID, ok := currentUser(c)
	if !ok {
		return
	}

	items, err := h.service.ListParticipants(c.Request.Context(), chatID, callerID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.ParticipantsResponse{
		Participants: httpdto.FromParticipantSlice(items),
	}))
}

func (h *ParticipantHandler) Roles(c *gin.Context) {
	items, err := h.service.Roles(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.RolesResponse{
		Roles: httpdto.FromRoleSlice(items),
	}))
}
