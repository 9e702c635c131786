package repository

import (
	"context"
	"errors"
	"time"

	"folio-chat/internal/domain/chat"
	"folio-chat/internal/domain/message"
	folio_errors "folio-chat/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &PostgresChatRepository{db: db}
}

func (r *PostgresChatRepository) Create(ctx context.Context, c *chat.Chat) error {
	res := r.db.WithContext(ctx).Create(c)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return folio_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresChatRepository) GetByID(ctx context.Context, id uuid.UUID) (chat.Chat, error) {
	var c chat.Chat
	err := r.db.WithContext(ctx).
		Preload("Participants", "left_at IS NULL").
		Preload("Participants.Role").
		Where("id = ?", id).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return chat.Chat{}, folio_errors.ErrNotFound
		}
		return chat.Chat{}, err
	}
	return c, nil
}

func (r *PostgresChatRepository) Rename(ctx context.Context, chatID uuid.UUID, name string) error {
	res := r.db.WithContext(ctx).
		Model(&chat.Chat{}).
		Where("id = ?", chatID).
		Updates(map[string]interface{}{
			"name":       name,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return folio_errors.ErrNotFound
	}
	return nil
}

// Delete removes the chat together with its participant and message rows.
func (r *PostgresChatRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&message.Message{}, "chat_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&chat.Participant{}, "chat_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&chat.Chat{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return folio_errors.ErrNotFound
		}
		return nil
	})
}

func (r *PostgresChatRepository) GetUserChats(ctx context.Context, userID uuid.UUID) ([]chat.Chat, error) {
	var chats []chat.Chat

	subQuery := r.db.Model(&chat.Participant{}).
		Select("chat_id").
		Where("user_id = ? AND left_at IS NULL", userID)

	err := r.db.WithContext(ctx).
		Preload("Participants", "left_at IS NULL").
		Preload("Participants.Role").
		Where("id IN (?)", subQuery).
		Order("last_message_at DESC NULLS LAST, created_at DESC").
		Find(&chats).Error
	if err != nil {
		return nil, err
	}
	return chats, nil
}

func (r *PostgresChatRepository) TouchLastMessage(ctx context.Context, chatID uuid.UUID, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&chat.Chat{}).
		Where("id = ?", chatID).
		Updates(map[string]interface{}{
			"last_message_at": at,
			"updated_at":      at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return folio_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresChatRepository) AddParticipant(ctx context.Context, p *chat.Participant) error {
	res := r.db.WithContext(ctx).Create(p)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return folio_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresChatRepository) GetActiveParticipant(ctx context.Context, chatID, userID uuid.UUID) (chat.Participant, error) {
	var p chat.Participant
	err := r.db.WithContext(ctx).
		Preload("Role").
		Where("chat_id = ? AND user_id = ? AND left_at IS NULL", chatID, userID).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return chat.Participant{}, folio_errors.ErrNotFound
		}
		return chat.Participant{}, err
	}
	return p, nil
}

func (r *PostgresChatRepository) GetActiveParticipants(ctx context.Context, chatID uuid.UUID) ([]chat.Participant, error) {
	var participants []chat.Participant
	err := r.db.WithContext(ctx).
		Preload("Role").
		Where("chat_id = ? AND left_at IS NULL", chatID).
		Find(&participants).Error
	if err != nil {
		return nil, err
	}
	return participants, nil
}

func (r *PostgresChatRepository) CountActiveParticipants(ctx context.Context, chatID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&chat.Participant{}).
		Where("chat_id = ? AND left_at IS NULL", chatID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PostgresChatRepository) UpdateParticipantRole(ctx context.Context, chatID, userID, roleID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&chat.Participant{}).
		Where("chat_id = ? AND user_id = ? AND left_at IS NULL", chatID, userID).
		Update("role_id", roleID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return folio_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresChatRepository) MarkLeft(ctx context.Context, chatID, userID uuid.UUID, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&chat.Participant{}).
		Where("chat_id = ? AND user_id = ? AND left_at IS NULL", chatID, userID).
		Update("left_at", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return folio_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresChatRepository) UpdateLastReadAt(ctx context.Context, chatID, userID uuid.UUID, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&chat.Participant{}).
		Where("chat_id = ? AND user_id = ? AND left_at IS NULL", chatID, userID).
		Update("last_read_at", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return folio_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresChatRepository) GetRoleByID(ctx context.Context, id uuid.UUID) (chat.Role, error) {
	var role chat.Role
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return chat.Role{}, folio_errors.ErrNotFound
		}
		return chat.Role{}, err
	}
	return role, nil
}

func (r *PostgresChatRepository) GetRoleByName(ctx context.Context, name string) (chat.Role, error) {
	var role chat.Role
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return chat.Role{}, folio_errors.ErrNotFound
		}
		return chat.Role{}, err
	}
	return role, nil
}

func (r *PostgresChatRepository) ListRoles(ctx context.Context) ([]chat.Role, error) {
	var roles []chat.Role
	if err := r.db.WithContext(ctx).Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

// ActivePermissions returns the permission names granted to the user's
// active participant row in the chat. Empty when not a participant.
func (r *PostgresChatRepository) ActivePermissions(ctx context.Context, chatID, userID uuid.UUID) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Model(&chat.Participant{}).
		Select("chat_permissions.name").
		Joins("JOIN chat_role_permissions ON chat_role_permissions.role_id = chat_participants.role_id").
		Joins("JOIN chat_permissions ON chat_permissions.id = chat_role_permissions.permission_id").
		Where("chat_participants.chat_id = ? AND chat_participants.user_id = ? AND chat_participants.left_at IS NULL", chatID, userID).
		Scan(&names).Error
	if err != nil {
		return nil, err
	}
	return names, nil
}

func (r *PostgresChatRepository) HasActivePermission(ctx context.Context, chatID, userID uuid.UUID, perm string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&chat.Participant{}).
		Joins("JOIN chat_role_permissions ON chat_role_permissions.role_id = chat_participants.role_id").
		Joins("JOIN chat_permissions ON chat_permissions.id = chat_role_permissions.permission_id").
		Where("chat_participants.chat_id = ? AND chat_participants.user_id = ? AND chat_participants.left_at IS NULL AND chat_permissions.name = ?", chatID, userID, perm).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
