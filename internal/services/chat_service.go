package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"folio-chat/internal/access"
	"folio-chat/internal/domain/chat"
	"folio-chat/internal/domain/message"
	"folio-chat/internal/repository"
	folio_errors "folio-chat/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatService struct {
	db       *gorm.DB
	chatRepo repository.ChatRepository
	userRepo repository.UserRepository
	msgRepo  repository.MessageRepository
	access   *access.Control
}

func NewChatService(db *gorm.DB, chatRepo repository.ChatRepository, userRepo repository.UserRepository, msgRepo repository.MessageRepository, ac *access.Control) *ChatService {
	return &ChatService{db: db, chatRepo: chatRepo, userRepo: userRepo, msgRepo: msgRepo, access: ac}
}

type CreateChatInput struct {
	Type           string
	Name           string
	ParticipantIDs []uuid.UUID
}

// ParticipantInfo is a participant row joined with its user and role.
type ParticipantInfo struct {
	UserID      uuid.UUID
	DisplayName string
	Username    string
	AvatarURL   string
	Role        string
	JoinedAt    time.Time
	LastReadAt  sql.NullTime
}

// ChatSummary is a chat annotated with its active participants and the
// most recent message, the shape the chat list and detail endpoints serve.
type ChatSummary struct {
	Chat         chat.Chat
	Participants []ParticipantInfo
	LastMessage  *message.Message
}

// CreateChat creates the chat and all participant rows in one transaction:
// either the chat exists with its full initial roster or not at all. The
// creator becomes owner, everyone else starts as chatter.
func (s *ChatService) CreateChat(ctx context.Context, creatorID uuid.UUID, in CreateChatInput) (ChatSummary, error) {
	in.Name = strings.TrimSpace(in.Name)
	others, err := validateCreateChat(creatorID, in)
	if err != nil {
		return ChatSummary{}, err
	}

	// Every listed participant must exist before any row is written.
	users, err := s.userRepo.GetByIDs(ctx, append([]uuid.UUID{creatorID}, others...))
	if err != nil {
		return ChatSummary{}, err
	}
	if len(users) != len(others)+1 {
		return ChatSummary{}, folio_errors.ErrNotFound
	}

	var created chat.Chat
	createFn := func(repo repository.ChatRepository) error {
		ownerRole, err := repo.GetRoleByName(ctx, chat.RoleOwner)
		if err != nil {
			return err
		}
		chatterRole, err := repo.GetRoleByName(ctx, chat.RoleChatter)
		if err != nil {
			return err
		}

		now := time.Now()
		created = chat.Chat{
			ID:        uuid.New(),
			Type:      in.Type,
			CreatedBy: uuid.NullUUID{UUID: creatorID, Valid: true},
			CreatedAt: now,
			UpdatedAt: now,
		}
		if in.Type == chat.TypeGroup {
			created.Name = sql.NullString{String: in.Name, Valid: true}
		}

		if err := repo.Create(ctx, &created); err != nil {
			return err
		}

		if err := repo.AddParticipant(ctx, &chat.Participant{
			ID:       uuid.New(),
			ChatID:   created.ID,
			UserID:   creatorID,
			RoleID:   ownerRole.ID,
			JoinedAt: now,
		}); err != nil {
			return err
		}
		for _, userID := range others {
			if err := repo.AddParticipant(ctx, &chat.Participant{
				ID:       uuid.New(),
				ChatID:   created.ID,
				UserID:   userID,
				RoleID:   chatterRole.ID,
				JoinedAt: now,
			}); err != nil {
				return err
			}
		}
		return nil
	}

	if s.db != nil {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return createFn(repository.NewChatRepository(tx))
		})
	} else {
		err = createFn(s.chatRepo)
	}
	if err != nil {
		return ChatSummary{}, err
	}

	return s.summarize(ctx, created.ID)
}

// GetUserChats lists the caller's active chats, most recently active first.
func (s *ChatService) GetUserChats(ctx context.Context, userID uuid.UUID) ([]ChatSummary, error) {
	chats, err := s.chatRepo.GetUserChats(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]ChatSummary, 0, len(chats))
	for _, c := range chats {
		summary, err := s.annotate(ctx, c)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// GetChat returns the chat detail for an active participant. Non-members
// get ErrNotFound, never ErrForbidden.
func (s *ChatService) GetChat(ctx context.Context, chatID, userID uuid.UUID) (ChatSummary, error) {
	if err := s.access.RequireParticipant(ctx, chatID, userID); err != nil {
		return ChatSummary{}, err
	}
	return s.summarize(ctx, chatID)
}

// RenameChat renames a group chat. Gated on the change_roles permission,
// the same grant that covers the rest of chat administration.
func (s *ChatService) RenameChat(ctx context.Context, chatID, userID uuid.UUID, name string) (ChatSummary, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return ChatSummary{}, folio_errors.ErrInvalidInput
	}

	if err := s.access.Require(ctx, chatID, userID, chat.PermChangeRoles); err != nil {
		return ChatSummary{}, err
	}

	c, err := s.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return ChatSummary{}, err
	}
	if c.Type != chat.TypeGroup {
		return ChatSummary{}, folio_errors.ErrInvalidInput
	}

	if err := s.chatRepo.Rename(ctx, chatID, name); err != nil {
		return ChatSummary{}, err
	}
	return s.summarize(ctx, chatID)
}

// DeleteChat removes the chat with its participants and messages.
func (s *ChatService) DeleteChat(ctx context.Context, chatID, userID uuid.UUID) error {
	if err := s.access.Require(ctx, chatID, userID, chat.PermDeleteChat); err != nil {
		return err
	}
	return s.chatRepo.Delete(ctx, chatID)
}

// LeaveChat soft-removes the caller's own membership.
func (s *ChatService) LeaveChat(ctx context.Context, chatID, userID uuid.UUID) error {
	if err := s.access.RequireParticipant(ctx, chatID, userID); err != nil {
		return err
	}
	return s.chatRepo.MarkLeft(ctx, chatID, userID, time.Now())
}

func (s *ChatService) summarize(ctx context.Context, chatID uuid.UUID) (ChatSummary, error) {
	c, err := s.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return ChatSummary{}, err
	}
	return s.annotate(ctx, c)
}

func (s *ChatService) annotate(ctx context.Context, c chat.Chat) (ChatSummary, error) {
	ids := make([]uuid.UUID, 0, len(c.Participants))
	for _, p := range c.Participants {
		ids = append(ids, p.UserID)
	}
	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return ChatSummary{}, err
	}
	byID := make(map[uuid.UUID]int, len(users))
	for i, u := range users {
		byID[u.ID] = i
	}

	participants := make([]ParticipantInfo, 0, len(c.Participants))
	for _, p := range c.Participants {
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
		participants = append(participants, info)
	}

	summary := ChatSummary{Chat: c, Participants: participants}

	latest, err := s.msgRepo.GetLatestMessage(ctx, c.ID)
	switch {
	case err == nil:
		summary.LastMessage = &latest
	case errors.Is(err, folio_errors.ErrNotFound):
	default:
		return ChatSummary{}, err
	}

	return summary, nil
}

// validateCreateChat checks the shape of the request and returns the
// deduplicated participant list excluding the creator.
func validateCreateChat(creatorID uuid.UUID, in CreateChatInput) ([]uuid.UUID, error) {
	seen := map[uuid.UUID]bool{creatorID: true}
	others := make([]uuid.UUID, 0, len(in.ParticipantIDs))
	for _, id := range in.ParticipantIDs {
		if id == uuid.Nil {
			return nil, folio_errors.ErrInvalidInput
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		others = append(others, id)
	}

	switch in.Type {
	case chat.TypeDirect:
		// A direct chat is exactly the creator plus one other user.
		if len(others) != 1 {
			return nil, folio_errors.ErrInvalidInput
		}
	case chat.TypeGroup:
		if strings.TrimSpace(in.Name) == "" {
			return nil, folio_errors.ErrInvalidInput
		}
	default:
		return nil, folio_errors.ErrInvalidInput
	}
	return others, nil
}
