package httpdto

import (
	"time"

	"folio-chat/internal/domain/message"
	"folio-chat/internal/services"
)

type SendMessageRequest struct {
	Content  string `json:"content"`
	ParentID string `json:"parent_id"`
}

type EditMessageRequest struct {
	Content string `json:"content"`
}

type MessageResponse struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chat_id"`
	SenderID  string    `json:"sender_id"`
	ParentID  string    `json:"parent_id,omitempty"`
	Content   string    `json:"content,omitempty"`
	MediaURL  string    `json:"media_url,omitempty"`
	MediaType string    `json:"media_type,omitempty"`
	IsEdited  bool      `json:"is_edited"`
	IsPinned  bool      `json:"is_pinned"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type MessagesResponse struct {
	Messages []MessageResponse `json:"messages"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
}

func FromMessage(m message.Message) MessageResponse {
	resp := MessageResponse{
		ID:        m.ID.String(),
		ChatID:    m.ChatID.String(),
		SenderID:  m.SenderID.String(),
		IsEdited:  m.IsEdited,
		IsPinned:  m.IsPinned,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if m.ParentID.Valid {
		resp.ParentID = m.ParentID.UUID.String()
	}
	if m.Content.Valid {
		resp.Content = m.Content.String
	}
	if m.MediaURL.Valid {
		resp.MediaURL = m.MediaURL.String
	}
	if m.MediaType.Valid {
		resp.MediaType = m.MediaType.String
	}
	return resp
}

func FromMessageSlice(items []message.Message) []MessageResponse {
	result := make([]MessageResponse, 0, len(items))
	for _, item := range items {
		result = append(result, FromMessage(item))
	}
	return result
}

func FromMessagePage(p services.MessagePage) MessagesResponse {
	return MessagesResponse{
		Messages: FromMessageSlice(p.Messages),
		Total:    p.Total,
		Page:     p.Page,
		Limit:    p.Limit,
	}
}
