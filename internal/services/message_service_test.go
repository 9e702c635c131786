package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"folio-chat/internal/access"
	"folio-chat/internal/domain/chat"
	folio_errors "folio-chat/pkg/errors"

	"github.com/google/uuid"
)

type fakeMediaStore struct {
	saved []string
}

func (s *fakeMediaStore) Save(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	s.saved = append(s.saved, key)
	return "/uploads/" + key, nil
}

func TestSendMessage(t *testing.T) {
	env := newTestEnv(t)
	chatID := env.newGroupChat(t, map[uuid.UUID]string{
		env.alice: chat.RoleOwner,
		env.bob:   chat.RoleChatter,
		env.carol: chat.RoleSpectator,
	})

	t.Run("chatter sends text", func(t *testing.T) {
		m, err := env.msgSvc.SendMessage(context.Background(), chatID, env.bob, SendMessageInput{Content: "hello"})
		if err != nil {
			t.Fatalf("SendMessage() error = %v", err)
		}
		if m.Content.String != "hello" {
			t.Errorf("content = %q, want hello", m.Content.String)
		}
		if m.SenderID != env.bob {
			t.Errorf("sender = %v, want %v", m.SenderID, env.bob)
		}

		c := env.chats.chats[chatID]
		if !c.LastMessageAt.Valid {
			t.Error("last_message_at not updated after send")
		}
	})

	t.Run("spectator cannot send", func(t *testing.T) {
		_, err := env.msgSvc.SendMessage(context.Background(), chatID, env.carol, SendMessageInput{Content: "hi"})
		if !errors.Is(err, folio_errors.ErrForbidden) {
			t.Fatalf("SendMessage() error = %v, want %v", err, folio_errors.ErrForbidden)
		}
	})

	t.Run("non-member sees not found", func(t *testing.T) {
		_, err := env.msgSvc.SendMessage(context.Background(), chatID, uuid.New(), SendMessageInput{Content: "hi"})
		if !errors.Is(err, folio_errors.ErrNotFound) {
			t.Fatalf("SendMessage() error = %v, want %v", err, folio_errors.ErrNotFound)
		}
	})

	t.Run("empty message invalid", func(t *testing.T) {
		_, err := env.msgSvc.SendMessage(context.Background(), chatID, env.bob, SendMessageInput{Content: "   "})
		if !errors.Is(err, folio_errors.ErrInvalidInput) {
			t.Fatalf("SendMessage() error = %v, want %v", err, folio_errors.ErrInvalidInput)
		}
	})

	t.Run("oversized content rejected", func(t *testing.T) {
		_, err := env.msgSvc.SendMessage(context.Background(), chatID, env.bob, SendMessageInput{Content: strings.Repeat("a", maxContentLength+1)})
		if !errors.Is(err, folio_errors.ErrTooLarge) {
			t.Fatalf("SendMessage() error = %v, want %v", err, folio_errors.ErrTooLarge)
		}
	})
}

func TestSendMessageReply(t *testing.T) {
	env := newTestEnv(t)
	chatID := env.newGroupChat(t, map[uuid.UUID]string{env.alice: chat.RoleOwner, env.bob: chat.RoleChatter})
	otherID := env.newGroupChat(t, map[uuid.UUID]string{env.alice: chat.RoleOwner})

	parent, err := env.msgSvc.SendMessage(context.Background(), chatID, env.alice, SendMessageInput{Content: "root"})
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	elsewhere, err := env.msgSvc.SendMessage(context.Background(), otherID, env.alice, SendMessageInput{Content: "elsewhere"})
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}

	t.Run("reply to message in same chat", func(t *testing.T) {
		m, err := env.msgSvc.SendMessage(context.Background(), chatID, env.bob, SendMessageInput{
			Content:  "reply",
			ParentID: uuid.NullUUID{UUID: parent.ID, Valid: true},
		})
		if err != nil {
			t.Fatalf("SendMessage() error = %v", err)
		}
		if m.ParentID.UUID != parent.ID {
			t.Errorf("parent = %v, want %v", m.ParentID.UUID, parent.ID)
		}
	})

	t.Run("reply across chats rejected", func(t *testing.T) {
		_, err := env.msgSvc.SendMessage(context.Background(), chatID, env.bob, SendMessageInput{
			Content:  "reply",
			ParentID: uuid.NullUUID{UUID: elsewhere.ID, Valid: true},
		})
		if !errors.Is(err, folio_errors.ErrInvalidInput) {
			t.Fatalf("SendMessage() error = %v, want %v", err, folio_errors.ErrInvalidInput)
		}
	})

	t.Run("reply to missing parent", func(t *testing.T) {
		_, err := env.msgSvc.SendMessage(context.Background(), chatID, env.bob, SendMessageInput{
			Content:  "reply",
			ParentID: uuid.NullUUID{UUID: uuid.New(), Valid: true},
		})
		if !errors.Is(err, folio_errors.ErrNotFound) {
			t.Fatalf("SendMessage() error = %v, want %v", err, folio_errors.ErrNotFound)
		}
	})
}

func TestSendMessageWithMedia(t *testing.T) {
	env := newTestEnv(t)
	store := &fakeMediaStore{}
	env.msgSvc = NewMessageService(env.msgs, env.chats, access.NewControl(env.chats), store, 1024)

	chatID := env.newGroupChat(t, map[uuid.UUID]string{env.alice: chat.RoleOwner})

	t.Run("attachment stored and linked", func(t *testing.T) {
		m, err := env.msgSvc.SendMessage(context.Background(), chatID, env.alice, SendMessageInput{
			Media: &MediaUpload{ContentType: "image/png", Size: 512, Body: strings.NewReader("png")},
		})
		if err != nil {
			t.Fatalf("SendMessage() error = %v", err)
		}
		if !m.MediaURL.Valid || !strings.HasPrefix(m.MediaURL.String, "/uploads/chats/") {
			t.Errorf("media url = %q, want /uploads/chats/ prefix", m.MediaURL.String)
		}
		if m.MediaType.String != "image/png" {
			t.Errorf("media type = %q, want image/png", m.MediaType.String)
		}
		if len(store.saved) != 1 {
			t.Errorf("stored objects = %d, want 1", len(store.saved))
		}
	})

	t.Run("oversized attachment rejected", func(t *testing.T) {
		_, err := env.msgSvc.SendMessage(context.Background(), chatID, env.alice, SendMessageInput{
			Media: &MediaUpload{ContentType: "image/png", Size: 4096, Body: strings.NewReader("png")},
		})
		if !errors.Is(err, folio_errors.ErrTooLarge) {
			t.Fatalf("SendMessage() error = %v, want %v", err, folio_errors.ErrTooLarge)
		}
	})

	t.Run("unsupported type rejected", func(t *testing.T) {
		_, err := env.msgSvc.SendMessage(context.Background(), chatID, env.alice, SendMessageInput{
			Media: &MediaUpload{ContentType: "application/zip", Size: 128, Body: strings.NewReader("zip")},
		})
		if !errors.Is(err, folio_errors.ErrInvalidInput) {
			t.Fatalf("SendMessage() error = %v, want %v", err, folio_errors.ErrInvalidInput)
		}
	})
}

func TestGetChatMessages(t *testing.T) {
	env := newTestEnv(t)
	chatID := env.newGroupChat(t, map[uuid.UUID]string{
		env.alice: chat.RoleOwner,
		env.bob:   chat.RoleSpectator,
	})

	for _, text := range []string{"one", "two", "three"} {
		if _, err := env.msgSvc.SendMessage(context.Background(), chatID, env.alice, SendMessageInput{Content: text}); err != nil {
			t.Fatalf("SendMessage(%q) error = %v", text, err)
		}
	}

	t.Run("spectator reads in chronological order", func(t *testing.T) {
		page, err := env.msgSvc.GetChatMessages(context.Background(), chatID, env.bob, 1, 50)
		if err != nil {
			t.Fatalf("GetChatMessages() error = %v", err)
		}
		if page.Total != 3 || len(page.Messages) != 3 {
			t.Fatalf("total = %d, messages = %d, want 3 and 3", page.Total, len(page.Messages))
		}
		for i := 1; i < len(page.Messages); i++ {
			if page.Messages[i].CreatedAt.Before(page.Messages[i-1].CreatedAt) {
				t.Fatal("messages not in chronological order")
			}
		}
	})

	t.Run("reading records last_read_at", func(t *testing.T) {
		p, err := env.chats.GetActiveParticipant(context.Background(), chatID, env.bob)
		if err != nil {
			t.Fatalf("GetActiveParticipant() error = %v", err)
		}
		if !p.LastReadAt.Valid {
			t.Error("last_read_at not set after reading")
		}
	})

	t.Run("non-member sees not found", func(t *testing.T) {
		_, err := env.msgSvc.GetChatMessages(context.Background(), chatID, env.carol, 1, 50)
		if !errors.Is(err, folio_errors.ErrNotFound) {
			t.Fatalf("GetChatMessages() error = %v, want %v", err, folio_errors.ErrNotFound)
		}
	})
}

func TestEditMessage(t *testing.T) {
	env := newTestEnv(t)
	chatID := env.newGroupChat(t, map[uuid.UUID]string{
		env.alice: chat.RoleAdmin,
		env.bob:   chat.RoleChatter,
		env.carol: chat.RoleChatter,
	})

	m, err := env.msgSvc.SendMessage(context.Background(), chatID, env.bob, SendMessageInput{Content: "original"})
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}

	t.Run("sender edits own message", func(t *testing.T) {
		edited, err := env.msgSvc.EditMessage(context.Background(), chatID, m.ID, env.bob, "fixed")
		if err != nil {
			t.Fatalf("EditMessage() error = %v", err)
		}
		if edited.Content.String != "fixed" || !edited.IsEdited {
			t.Errorf("content = %q, edited = %v, want fixed/true", edited.Content.String, edited.IsEdited)
		}
	})

	t.Run("other chatter forbidden", func(t *testing.T) {
		_, err := env.msgSvc.EditMessage(context.Background(), chatID, m.ID, env.carol, "nope")
		if !errors.Is(err, folio_errors.ErrForbidden) {
			t.Fatalf("EditMessage() error = %v, want %v", err, folio_errors.ErrForbidden)
		}
	})

	t.Run("admin edits any message", func(t *testing.T) {
		if _, err := env.msgSvc.EditMessage(context.Background(), chatID, m.ID, env.alice, "moderated"); err != nil {
			t.Fatalf("EditMessage() error = %v", err)
		}
	})

	t.Run("empty content invalid", func(t *testing.T) {
		_, err := env.msgSvc.EditMessage(context.Background(), chatID, m.ID, env.bob, " ")
		if !errors.Is(err, folio_errors.ErrInvalidInput) {
			t.Fatalf("EditMessage() error = %v, want %v", err, folio_errors.ErrInvalidInput)
		}
	})
}

func TestDeleteMessage(t *testing.T) {
	env := newTestEnv(t)
	chatID := env.newGroupChat(t, map[uuid.UUID]string{
		env.alice: chat.RoleModerator,
		env.bob:   chat.RoleChatter,
		env.carol: chat.RoleChatter,
	})
	otherID := env.newGroupChat(t, map[uuid.UUID]string{env.alice: chat.RoleOwner})

	t.Run("other chatter forbidden", func(t *testing.T) {
		m, err := env.msgSvc.SendMessage(context.Background(), chatID, env.bob, SendMessageInput{Content: "x"})
		if err != nil {
			t.Fatalf("SendMessage() error = %v", err)
		}
		if err := env.msgSvc.DeleteMessage(context.Background(), chatID, m.ID, env.carol); !errors.Is(err, folio_errors.ErrForbidden) {
			t.Fatalf("DeleteMessage() error = %v, want %v", err, folio_errors.ErrForbidden)
		}
	})

	t.Run("sender deletes own", func(t *testing.T) {
		m, err := env.msgSvc.SendMessage(context.Background(), chatID, env.bob, SendMessageInput{Content: "mine"})
		if err != nil {
			t.Fatalf("SendMessage() error = %v", err)
		}
		if err := env.msgSvc.DeleteMessage(context.Background(), chatID, m.ID, env.bob); err != nil {
			t.Fatalf("DeleteMessage() error = %v", err)
		}
		if _, err := env.msgs.GetByID(context.Background(), m.ID); !errors.Is(err, folio_errors.ErrNotFound) {
			t.Error("message still present after delete")
		}
	})

	t.Run("moderator deletes any", func(t *testing.T) {
		m, err := env.msgSvc.SendMessage(context.Background(), chatID, env.bob, SendMessageInput{Content: "spam"})
		if err != nil {
			t.Fatalf("SendMessage() error = %v", err)
		}
		if err := env.msgSvc.DeleteMessage(context.Background(), chatID, m.ID, env.alice); err != nil {
			t.Fatalf("DeleteMessage() error = %v", err)
		}
	})

	t.Run("message from another chat hidden", func(t *testing.T) {
		m, err := env.msgSvc.SendMessage(context.Background(), otherID, env.alice, SendMessageInput{Content: "elsewhere"})
		if err != nil {
			t.Fatalf("SendMessage() error = %v", err)
		}
		if err := env.msgSvc.DeleteMessage(context.Background(), chatID, m.ID, env.alice); !errors.Is(err, folio_errors.ErrNotFound) {
			t.Fatalf("DeleteMessage() error = %v, want %v", err, folio_errors.ErrNotFound)
		}
	})
}

func TestPinMessage(t *testing.T) {
	env := newTestEnv(t)
	chatID := env.newGroupChat(t, map[uuid.UUID]string{
		env.alice: chat.RoleAdmin,
		env.bob:   chat.RoleChatter,
	})

	m, err := env.msgSvc.SendMessage(context.Background(), chatID, env.bob, SendMessageInput{Content: "important"})
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}

	t.Run("chatter lacks pin_messages", func(t *testing.T) {
		if err := env.msgSvc.PinMessage(context.Background(), chatID, m.ID, env.bob); !errors.Is(err, folio_errors.ErrForbidden) {
			t.Fatalf("PinMessage() error = %v, want %v", err, folio_errors.ErrForbidden)
		}
	})

	t.Run("pin is idempotent", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			if err := env.msgSvc.PinMessage(context.Background(), chatID, m.ID, env.alice); err != nil {
				t.Fatalf("PinMessage() attempt %d error = %v", i+1, err)
			}
		}
		got, _ := env.msgs.GetByID(context.Background(), m.ID)
		if !got.IsPinned {
			t.Error("message not pinned")
		}
	})

	t.Run("unpin is idempotent", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			if err := env.msgSvc.UnpinMessage(context.Background(), chatID, m.ID, env.alice); err != nil {
				t.Fatalf("UnpinMessage() attempt %d error = %v", i+1, err)
			}
		}
		got, _ := env.msgs.GetByID(context.Background(), m.ID)
		if got.IsPinned {
			t.Error("message still pinned")
		}
	})
}
