package services

import (
	"context"
	"errors"
	"time"

	"folio-chat/internal/access"
	"folio-chat/internal/domain/chat"
	"folio-chat/internal/repository"
	folio_errors "folio-chat/pkg/errors"

	"github.com/google/uuid"
)

type ParticipantService struct {
	chatRepo repository.ChatRepository
	userRepo repository.UserRepository
	access   *access.Control
}

func NewParticipantService(chatRepo repository.ChatRepository, userRepo repository.UserRepository, ac *access.Control) *ParticipantService {
	return &ParticipantService{chatRepo: chatRepo, userRepo: userRepo, access: ac}
}

// AddParticipant adds a user to a group chat. Requires the add_users
// permission. A user who left earlier gets a fresh participant row; a user
// who is already an active member is a conflict.
func (s *ParticipantService) AddParticipant(ctx context.Context, chatID, callerID, targetID uuid.UUID, roleName string) (ParticipantInfo, error) {
	if roleName == "" {
		roleName = chat.RoleChatter
	}
	if !chat.KnownRole(roleName) {
		return ParticipantInfo{}, folio_errors.ErrInvalidInput
	}

	if err := s.access.Require(ctx, chatID, callerID, chat.PermAddUsers); err != nil {
		return ParticipantInfo{}, err
	}

	c, err := s.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return ParticipantInfo{}, err
	}
	// Direct chats are fixed at two members for their whole lifetime.
	if c.Type == chat.TypeDirect {
		return ParticipantInfo{}, folio_errors.ErrInvalidInput
	}

	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return ParticipantInfo{}, err
	}

	if _, err := s.chatRepo.GetActiveParticipant(ctx, chatID, targetID); err == nil {
		return ParticipantInfo{}, folio_errors.ErrAlreadyExists
	} else if !errors.Is(err, folio_errors.ErrNotFound) {
		return ParticipantInfo{}, err
	}

	role, err := s.chatRepo.GetRoleByName(ctx, roleName)
	if err != nil {
		return ParticipantInfo{}, err
	}

	p := &chat.Participant{
		ID:       uuid.New(),
		ChatID:   chatID,
		UserID:   targetID,
		RoleID:   role.ID,
		JoinedAt: time.Now(),
	}
	if err := s.chatRepo.AddParticipant(ctx, p); err != nil {
		return ParticipantInfo{}, err
	}

	info := ParticipantInfo{
		UserID:      target.ID,
		DisplayName: target.DisplayName,
		AvatarURL:   target.AvatarURL,
		Role:        role.Name,
		JoinedAt:    p.JoinedAt,
	}
	if target.Username.Valid {
		info.Username = target.Username.String
	}
	return info, nil
}

// UpdateRole changes an active participant's role. Requires change_roles.
func (s *ParticipantService) UpdateRole(ctx context.Context, chatID, callerID, targetID uuid.UUID, roleName string) error {
	if !chat.KnownRole(roleName) {
		return folio_errors.ErrInvalidInput
	}

	if err := s.access.Require(ctx, chatID, callerID, chat.PermChangeRoles); err != nil {
		return err
	}

	role, err := s.chatRepo.GetRoleByName(ctx, roleName)
	if err != nil {
		return err
	}

	return s.chatRepo.UpdateParticipantRole(ctx, chatID, targetID, role.ID)
}

// RemoveParticipant soft-removes a member. Requires remove_users. The row
// keeps its identity so past messages stay attributed.
func (s *ParticipantService) RemoveParticipant(ctx context.Context, chatID, callerID, targetID uuid.UUID) error {
	if err := s.access.Require(ctx, chatID, callerID, chat.PermRemoveUsers); err != nil {
		return err
	}
	return s.chatRepo.MarkLeft(ctx, chatID, targetID, time.Now())
}

// ListParticipants returns the chat's active members for a caller who is
// one of them.
func (s *ParticipantService) ListParticipants(ctx context.Context, chatID, callerID uuid.UUID) ([]ParticipantInfo, error) {
	if err := s.access.RequireParticipant(ctx, chatID, callerID); err != nil {
		return nil, err
	}

	participants, err := s.chatRepo.GetActiveParticipants(ctx, chatID)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(participants))
	for _, p := range participants {
		ids = append(ids, p.UserID)
	}
	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]int, len(users))
	for i, u := range users {
		byID[u.ID] = i
	}

	result := make([]ParticipantInfo, 0, len(participants))
	for _, p := range participants {
		info := ParticipantInfo{
			UserID:     p.UserID,
			Role:       p.Role.Name,
			JoinedAt:   p.JoinedAt,
			LastReadAt: p.LastReadAt,
		}
		if i, ok := byID[p.UserID]; ok {
			info.DisplayName = users[i].DisplayName
			info.AvatarURL = users[i].AvatarURL
			if users[i].Username.Valid {
				info.Username = users[i].Username.String
			}
		}
		result = append(result, info)
	}
	return result, nil
}

// Roles lists the fixed role set with their granted permissions.
func (s *ParticipantService) Roles(ctx context.Context) ([]chat.Role, error) {
	return s.chatRepo.ListRoles(ctx)
}
