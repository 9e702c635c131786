package httpdto

import (
	"time"

	"folio-chat/internal/domain/chat"
	"folio-chat/internal/services"
)

type CreateChatRequest struct {
	Type         string   `json:"type"`
	Name         string   `json:"name"`
	Participants []string `json:"participants"`
}

type UpdateChatRequest struct {
	Name string `json:"name"`
}

type AddParticipantRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

type UpdateParticipantRoleRequest struct {
	Role string `json:"role"`
}

type ParticipantResponse struct {
	UserID      string     `json:"user_id"`
	DisplayName string     `json:"display_name"`
	Username    string     `json:"username,omitempty"`
	AvatarURL   string     `json:"avatar_url,omitempty"`
	Role        string     `json:"role"`
	JoinedAt    time.Time  `json:"joined_at"`
	LastReadAt  *time.Time `json:"last_read_at,omitempty"`
}

type ChatResponse struct {
	ID            string                `json:"id"`
	Type          string                `json:"type"`
	Name          string                `json:"name,omitempty"`
	CreatedBy     string                `json:"created_by,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
	LastMessageAt *time.Time            `json:"last_message_at,omitempty"`
	Participants  []ParticipantResponse `json:"participants"`
	LastMessage   *MessageResponse      `json:"last_message,omitempty"`
}

type ListChatsResponse struct {
	Chats []ChatResponse `json:"chats"`
	Total int            `json:"total"`
}

type ParticipantsResponse struct {
	Participants []ParticipantResponse `json:"participants"`
}

type RoleResponse struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

type RolesResponse struct {
	Roles []RoleResponse `json:"roles"`
}

func FromChatSummary(s services.ChatSummary) ChatResponse {
	resp := ChatResponse{
		ID:           s.Chat.ID.String(),
		Type:         s.Chat.Type,
		CreatedAt:    s.Chat.CreatedAt,
		UpdatedAt:    s.Chat.UpdatedAt,
		Participants: FromParticipantSlice(s.Participants),
	}
	if s.Chat.Name.Valid {
		resp.Name = s.Chat.Name.String
	}
	if s.Chat.CreatedBy.Valid {
		resp.CreatedBy = s.Chat.CreatedBy.UUID.String()
	}
	if s.Chat.LastMessageAt.Valid {
		at := s.Chat.LastMessageAt.Time
		resp.LastMessageAt = &at
	}
	if s.LastMessage != nil {
		m := FromMessage(*s.LastMessage)
		resp.LastMessage = &m
	}
	return resp
}

func FromChatSummarySlice(items []services.ChatSummary) []ChatResponse {
	result := make([]ChatResponse, 0, len(items))
	for _, item := range items {
		result = append(result, FromChatSummary(item))
	}
	return result
}

func FromParticipant(p services.ParticipantInfo) ParticipantResponse {
	resp := ParticipantResponse{
		UserID:      p.UserID.String(),
		DisplayName: p.DisplayName,
		Username:    p.Username,
		AvatarURL:   p.AvatarURL,
		Role:        p.Role,
		JoinedAt:    p.JoinedAt,
	}
	if p.LastReadAt.Valid {
		at := p.LastReadAt.Time
		resp.LastReadAt = &at
	}
	return resp
}

func FromParticipantSlice(items []services.ParticipantInfo) []ParticipantResponse {
	result := make([]ParticipantResponse, 0, len(items))
	for _, item := range items {
		result = append(result, FromParticipant(item))
	}
	return result
}

func FromRole(r chat.Role) RoleResponse {
	return RoleResponse{
		Name:        r.Name,
		Description: r.Description,
		Permissions: chat.RoleGrants[r.Name],
	}
}

func FromRoleSlice(items []chat.Role) []RoleResponse {
	result := make([]RoleResponse, 0, len(items))
	for _, item := range items {
		result = append(result, FromRole(item))
	}
	return result
}
