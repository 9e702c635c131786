package repository

import (
	"context"
	"time"

	"folio-chat/internal/domain/chat"
	"folio-chat/internal/domain/message"
	"folio-chat/internal/domain/user"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	GetByID(ctx context.Context, id uuid.UUID) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByUsername(ctx context.Context, username string) (user.User, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]user.User, error)
}

type ChatRepository interface {
	Create(ctx context.Context, c *chat.Chat) error
	GetByID(ctx context.Context, id uuid.UUID) (chat.Chat, error)
	Rename(ctx context.Context, chatID uuid.UUID, name string) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetUserChats(ctx context.Context, userID uuid.UUID) ([]chat.Chat, error)
	TouchLastMessage(ctx context.Context, chatID uuid.UUID, at time.Time) error

	AddParticipant(ctx context.Context, p *chat.Participant) error
	GetActiveParticipant(ctx context.Context, chatID, userID uuid.UUID) (chat.Participant, error)
	GetActiveParticipants(ctx context.Context, chatID uuid.UUID) ([]chat.Participant, error)
	CountActiveParticipants(ctx context.Context, chatID uuid.UUID) (int64, error)
	UpdateParticipantRole(ctx context.Context, chatID, userID, roleID uuid.UUID) error
	MarkLeft(ctx context.Context, chatID, userID uuid.UUID, at time.Time) error
	UpdateLastReadAt(ctx context.Context, chatID, userID uuid.UUID, at time.Time) error

	GetRoleByID(ctx context.Context, id uuid.UUID) (chat.Role, error)
	GetRoleByName(ctx context.Context, name string) (chat.Role, error)
	ListRoles(ctx context.Context) ([]chat.Role, error)
	ActivePermissions(ctx context.Context, chatID, userID uuid.UUID) ([]string, error)
	HasActivePermission(ctx context.Context, chatID, userID uuid.UUID, perm string) (bool, error)
}

type MessageRepository interface {
	Create(ctx context.Context, m *message.Message) error
	GetByID(ctx context.Context, id uuid.UUID) (message.Message, error)
	UpdateContent(ctx context.Context, id uuid.UUID, content string, editedAt time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	SetPinned(ctx context.Context, id uuid.UUID, pinned bool) error
	GetChatMessages(ctx context.Context, chatID uuid.UUID, page, limit int) ([]message.Message, int64, error)
	GetLatestMessage(ctx context.Context, chatID uuid.UUID) (message.Message, error)
}
