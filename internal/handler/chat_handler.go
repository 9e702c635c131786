package handler

import (
	"net/http"

	"folio-chat/internal/services"
	"folio-chat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ChatHandler struct {
	service *services.ChatService
}

func NewChatHandler(service *services.ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

func (h *ChatHandler) Create(c *gin.Context) {
	var req httpdto.CreateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	creatorID, ok := currentUser(c)
	if !ok {
		return
	}

	participantIDs := make([]uuid.UUID, 0, len(req.Participants))
	for _, idStr := range req.Participants {
		id, err := uuid.Parse(idStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid participant id", "INVALID_REQUEST"))
			return
		}
		participantIDs = append(participantIDs, id)
	}

	summary, err := h.service.CreateChat(c.Request.Context(), creatorID, services.CreateChatInput{
		Type:           req.Type,
		Name:           req.Name,
		ParticipantIDs: participantIDs,
	})
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(httpdto.FromChatSummary(summary)))
}

func (h *ChatHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	items, err := h.service.GetUserChats(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.ListChatsResponse{
		Chats: httpdto.FromChatSummarySlice(items),
		Total: len(items),
	}))
}

func (h *ChatHandler) GetByID(c *gin.Context) {
	chatID, ok := pathID(c, "id", "chat id")
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	summary, err := h.service.GetChat(c.Request.Context(), chatID, userID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromChatSummary(summary)))
}

func (h *ChatHandler) Update(c *gin.Context) {
	chatID, ok := pathID(c, "id", "chat id")
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req httpdto.UpdateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	summary, err := h.service.RenameChat(c.Request.Context(), chatID, userID, req.Name)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromChatSummary(summary)))
}

func (h *ChatHandler) Delete(c *gin.Context) {
	chatID, ok := pathID(c, "id", "chat id")
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.service.DeleteChat(c.Request.Context(), chatID, userID); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}

func (h *ChatHandler) Leave(c *gin.Context) {
	chatID, ok := pathID(c, "id", "chat id")
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.service.LeaveChat(c.Request.Context(), chatID, userID); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}
