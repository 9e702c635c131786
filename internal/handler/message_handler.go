package handler

import (
	"net/http"
	"strconv"
	"strings"

	"folio-chat/internal/services"
	"folio-chat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type MessageHandler struct {
	service *services.MessageService
}

func NewMessageHandler(service *services.MessageService) *MessageHandler {
	return &MessageHandler{service: service}
}

func (h *MessageHandler) List(c *gin.Context) {
	chatID, ok := pathID(c, "id", "chat id")
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	result, err := h.service.GetChatMessages(c.Request.Context(), chatID, userID, page, limit)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromMessagePage(result)))
}

// Send accepts either a JSON body or a multipart form with a "media" file
// part next to the text fields.
func (h *MessageHandler) Send(c *gin.Context) {
	chatID, ok := pathID(c, "id", "chat id")
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var in services.SendMessageInput
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		in.Content = c.PostForm("content")
		if parentStr := c.PostForm("parent_id"); parentStr != "" {
			parentID, err := uuid.Parse(parentStr)
			if err != nil {
				c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid parent_id", "INVALID_REQUEST"))
				return
			}
			in.ParentID = uuid.NullUUID{UUID: parentID, Valid: true}
		}

		fileHeader, err := c.FormFile("media")
		if err == nil {
			file, err := fileHeader.Open()
			if err != nil {
				c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid media", "INVALID_REQUEST"))
				return
			}
			defer file.Close()
			in.Media = &services.MediaUpload{
				ContentType: fileHeader.Header.Get("Content-Type"),
				Size:        fileHeader.Size,
				Body:        file,
			}
		}
	} else {
		var req httpdto.SendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
			return
		}
		in.Content = req.Content
		if req.ParentID != "" {
			parentID, err := uuid.Parse(req.ParentID)
			if err != nil {
				c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid parent_id", "INVALID_REQUEST"))
				return
			}
			in.ParentID = uuid.NullUUID{UUID: parentID, Valid: true}
		}
	}

	m, err := h.service.SendMessage(c.Request.Context(), chatID, userID, in)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(httpdto.FromMessage(m)))
}

func (h *MessageHandler) Edit(c *gin.Context) {
	chatID, ok := pathID(c, "id", "chat id")
	if !ok {
		return
	}
	messageID, ok := pathID(c, "message_id", "message id")
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req httpdto.EditMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	m, err := h.service.EditMessage(c.Request.Context(), chatID, messageID, userID, req.Content)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromMessage(m)))
}

func (h *MessageHandler) Delete(c *gin.Context) {
	chatID, ok := pathID(c, "id", "chat id")
	if !ok {
		return
	}
	messageID, ok := pathID(c, "message_id", "message id")
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.service.DeleteMessage(c.Request.Context(), chatID, messageID, userID); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}

func (h *MessageHandler) Pin(c *gin.Context) {
	h.setPinned(c, true)
}

func (h *MessageHandler) Unpin(c *gin.Context) {
	h.setPinned(c, false)
}

func (h *MessageHandler) setPinned(c *gin.Context, pinned bool) {
	chatID, ok := pathID(c, "id", "chat id")
	if !ok {
		return
	}
	messageID, ok := pathID(c, "message_id", "message id")
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var err error
	if pinned {
		err = h.service.PinMessage(c.Request.Context(), chatID, messageID, userID)
	} else {
		err = h.service.UnpinMessage(c.Request.Context(), chatID, messageID, userID)
	}
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}
