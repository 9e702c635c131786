package services

import (
	"context"
	"database/sql"
	"io"
	"strings"
	"time"

	"folio-chat/internal/access"
	"folio-chat/internal/domain/chat"
	"folio-chat/internal/domain/message"
	"folio-chat/internal/repository"
	"folio-chat/internal/storage"
	folio_errors "folio-chat/pkg/errors"

	"github.com/google/uuid"
)

// maxContentLength caps message text at the column's practical limit.
const maxContentLength = 10000

type MessageService struct {
	msgRepo  repository.MessageRepository
	chatRepo repository.ChatRepository
	access   *access.Control
	media    storage.MediaStore
	maxBytes int64
}

func NewMessageService(msgRepo repository.MessageRepository, chatRepo repository.ChatRepository, ac *access.Control, media storage.MediaStore, maxBytes int64) *MessageService {
	return &MessageService{
		msgRepo:  msgRepo,
		chatRepo: chatRepo,
		access:   ac,
		media:    media,
		maxBytes: maxBytes,
	}
}

type SendMessageInput struct {
	Content  string
	ParentID uuid.NullUUID
	Media    *MediaUpload
}

type MediaUpload struct {
	ContentType string
	Size        int64
	Body        io.Reader
}

// MessagePage is a chronological slice of a chat's history. Storage keeps
// messages newest-first for cheap recent-page reads; the slice here is
// already reversed back to oldest-first.
type MessagePage struct {
	Messages []message.Message
	Total    int64
	Page     int
	Limit    int
}

// GetChatMessages returns one page of history and records the read.
// Requires read_messages, so a spectator can read but a non-member sees
// the same 404 as for a missing chat.
func (s *MessageService) GetChatMessages(ctx context.Context, chatID, userID uuid.UUID, page, limit int) (MessagePage, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	if err := s.access.Require(ctx, chatID, userID, chat.PermReadMessages); err != nil {
		return MessagePage{}, err
	}

	messages, total, err := s.msgRepo.GetChatMessages(ctx, chatID, page, limit)
	if err != nil {
		return MessagePage{}, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	// Reading a page marks the chat read. Best effort: a failed bump
	// must not fail the read itself.
	_ = s.chatRepo.UpdateLastReadAt(ctx, chatID, userID, time.Now())

	return MessagePage{Messages: messages, Total: total, Page: page, Limit: limit}, nil
}

// SendMessage posts a message, storing the attachment first when one is
// given. Attachments need send_media on top of send_messages.
func (s *MessageService) SendMessage(ctx context.Context, chatID, userID uuid.UUID, in SendMessageInput) (message.Message, error) {
	in.Content = strings.TrimSpace(in.Content)
	if in.Content == "" && in.Media == nil {
		return message.Message{}, folio_errors.ErrInvalidInput
	}
	if len(in.Content) > maxContentLength {
		return message.Message{}, folio_errors.ErrTooLarge
	}

	if err := s.access.Require(ctx, chatID, userID, chat.PermSendMessages); err != nil {
		return message.Message{}, err
	}

	if in.ParentID.Valid {
		parent, err := s.msgRepo.GetByID(ctx, in.ParentID.UUID)
		if err != nil {
			return message.Message{}, err
		}
		if parent.ChatID != chatID {
			return message.Message{}, folio_errors.ErrInvalidInput
		}
	}

	var mediaURL, mediaType sql.NullString
	if in.Media != nil {
		if err := s.access.Require(ctx, chatID, userID, chat.PermSendMedia); err != nil {
			return message.Message{}, err
		}
		if err := storage.ValidateMedia(in.Media.ContentType, in.Media.Size, s.maxBytes); err != nil {
			return message.Message{}, err
		}
		if s.media == nil {
			return message.Message{}, folio_errors.ErrInvalidInput
		}
		key := storage.MediaKey(chatID, in.Media.ContentType)
		url, err := s.media.Save(ctx, key, in.Media.ContentType, in.Media.Body, in.Media.Size)
		if err != nil {
			return message.Message{}, err
		}
		mediaURL = sql.NullString{String: url, Valid: true}
		mediaType = sql.NullString{String: in.Media.ContentType, Valid: true}
	}

	now := time.Now()
	m := message.Message{
		ID:        uuid.New(),
		ChatID:    chatID,
		SenderID:  userID,
		ParentID:  in.ParentID,
		MediaURL:  mediaURL,
		MediaType: mediaType,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.Content != "" {
		m.Content = sql.NullString{String: in.Content, Valid: true}
	}

	if err := s.msgRepo.Create(ctx, &m); err != nil {
		return message.Message{}, err
	}

	if err := s.chatRepo.TouchLastMessage(ctx, chatID, now); err != nil {
		return message.Message{}, err
	}

	return m, nil
}

// EditMessage updates a message's text. Allowed for the sender, or for
// anyone whose role grants edit_messages.
func (s *MessageService) EditMessage(ctx context.Context, chatID, messageID, userID uuid.UUID, content string) (message.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return message.Message{}, folio_errors.ErrInvalidInput
	}
	if len(content) > maxContentLength {
		return message.Message{}, folio_errors.ErrTooLarge
	}

	m, err := s.getChatMessage(ctx, chatID, messageID, userID)
	if err != nil {
		return message.Message{}, err
	}

	if m.SenderID != userID {
		if err := s.access.Require(ctx, chatID, userID, chat.PermEditMessages); err != nil {
			return message.Message{}, err
		}
	}

	now := time.Now()
	if err := s.msgRepo.UpdateContent(ctx, messageID, content, now); err != nil {
		return message.Message{}, err
	}

	m.Content = sql.NullString{String: content, Valid: true}
	m.IsEdited = true
	m.UpdatedAt = now
	return m, nil
}

// DeleteMessage removes a message permanently. Allowed for the sender, or
// for anyone whose role grants delete_messages.
func (s *MessageService) DeleteMessage(ctx context.Context, chatID, messageID, userID uuid.UUID) error {
	m, err := s.getChatMessage(ctx, chatID, messageID, userID)
	if err != nil {
		return err
	}

	if m.SenderID != userID {
		if err := s.access.Require(ctx, chatID, userID, chat.PermDeleteMessages); err != nil {
			return err
		}
	}

	return s.msgRepo.Delete(ctx, messageID)
}

// PinMessage pins a message. Pinning an already pinned message succeeds.
func (s *MessageService) PinMessage(ctx context.Context, chatID, messageID, userID uuid.UUID) error {
	return s.setPinned(ctx, chatID, messageID, userID, true)
}

// UnpinMessage unpins a message. Unpinning twice succeeds.
func (s *MessageService) UnpinMessage(ctx context.Context, chatID, messageID, userID uuid.UUID) error {
	return s.setPinned(ctx, chatID, messageID, userID, false)
}

func (s *MessageService) setPinned(ctx context.Context, chatID, messageID, userID uuid.UUID, pinned bool) error {
	if err := s.access.Require(ctx, chatID, userID, chat.PermPinMessages); err != nil {
		return err
	}
	if _, err := s.getChatMessage(ctx, chatID, messageID, userID); err != nil {
		return err
	}
	return s.msgRepo.SetPinned(ctx, messageID, pinned)
}

// getChatMessage loads a message after confirming the caller is an active
// participant, and checks the message actually belongs to the chat in the
// URL so IDs cannot be mixed across chats.
func (s *MessageService) getChatMessage(ctx context.Context, chatID, messageID, userID uuid.UUID) (message.Message, error) {
	if err := s.access.RequireParticipant(ctx, chatID, userID); err != nil {
		return message.Message{}, err
	}
	m, err := s.msgRepo.GetByID(ctx, messageID)
	if err != nil {
		return message.Message{}, err
	}
	if m.ChatID != chatID {
		return message.Message{}, folio_errors.ErrNotFound
	}
	return m, nil
}
