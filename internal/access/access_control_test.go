package access

import (
	"context"
	"errors"
	"testing"

	"folio-chat/internal/domain/chat"
	"folio-chat/internal/repository"
	folio_errors "folio-chat/pkg/errors"

	"github.com/google/uuid"
)

// stubChatRepo covers only the two lookups the access layer performs.
// The embedded interface panics on anything else, which is what we want:
// authorization must not touch other repository methods.
type stubChatRepo struct {
	repository.ChatRepository

	members map[uuid.UUID]string // userID -> role name
	lookups int
}

func (s *stubChatRepo) GetActiveParticipant(ctx context.Context, chatID, userID uuid.UUID) (chat.Participant, error) {
	s.lookups++
	role, ok := s.members[userID]
	if !ok {
		return chat.Participant{}, folio_errors.ErrNotFound
	}
	return chat.Participant{ChatID: chatID, UserID: userID, Role: chat.Role{Name: role}}, nil
}

func (s *stubChatRepo) ActivePermissions(ctx context.Context, chatID, userID uuid.UUID) ([]string, error) {
	role, ok := s.members[userID]
	if !ok {
		return nil, nil
	}
	return chat.RoleGrants[role], nil
}

func TestRequire(t *testing.T) {
	member := uuid.New()
	spectator := uuid.New()
	outsider := uuid.New()
	chatID := uuid.New()

	repo := &stubChatRepo{members: map[uuid.UUID]string{
		member:    chat.RoleChatter,
		spectator: chat.RoleSpectator,
	}}
	ctl := NewControl(repo)
	ctx := context.Background()

	tests := []struct {
		name    string
		userID  uuid.UUID
		perm    string
		wantErr error
	}{
		{name: "member with grant", userID: member, perm: chat.PermSendMessages},
		{name: "member without grant", userID: spectator, perm: chat.PermSendMessages, wantErr: folio_errors.ErrForbidden},
		{name: "spectator can read", userID: spectator, perm: chat.PermReadMessages},
		{name: "outsider masked as not found", userID: outsider, perm: chat.PermReadMessages, wantErr: folio_errors.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ctl.Require(ctx, chatID, tt.userID, tt.perm)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Require() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Require() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRequireParticipant(t *testing.T) {
	member := uuid.New()
	chatID := uuid.New()
	repo := &stubChatRepo{members: map[uuid.UUID]string{member: chat.RoleSpectator}}
	ctl := NewControl(repo)

	if err := ctl.RequireParticipant(context.Background(), chatID, member); err != nil {
		t.Fatalf("RequireParticipant() error = %v", err)
	}
	err := ctl.RequireParticipant(context.Background(), chatID, uuid.New())
	if !errors.Is(err, folio_errors.ErrNotFound) {
		t.Fatalf("RequireParticipant() error = %v, want %v", err, folio_errors.ErrNotFound)
	}
}

func TestRequestCacheMemoizesLookups(t *testing.T) {
	member := uuid.New()
	chatID := uuid.New()
	repo := &stubChatRepo{members: map[uuid.UUID]string{member: chat.RoleAdmin}}
	ctl := NewControl(repo)

	t.Run("without cache every check hits the repository", func(t *testing.T) {
		repo.lookups = 0
		ctx := context.Background()
		for i := 0; i < 3; i++ {
			if err := ctl.Require(ctx, chatID, member, chat.PermAddUsers); err != nil {
				t.Fatalf("Require() error = %v", err)
			}
		}
		if repo.lookups != 3 {
			t.Fatalf("lookups = %d, want 3", repo.lookups)
		}
	})

	t.Run("with cache a single lookup serves the request", func(t *testing.T) {
		repo.lookups = 0
		ctx := WithRequestCache(context.Background())
		for _, perm := range []string{chat.PermAddUsers, chat.PermRemoveUsers, chat.PermPinMessages} {
			if err := ctl.Require(ctx, chatID, member, perm); err != nil {
				t.Fatalf("Require(%s) error = %v", perm, err)
			}
		}
		if err := ctl.RequireParticipant(ctx, chatID, member); err != nil {
			t.Fatalf("RequireParticipant() error = %v", err)
		}
		if repo.lookups != 1 {
			t.Fatalf("lookups = %d, want 1", repo.lookups)
		}
	})

	t.Run("new request sees fresh data", func(t *testing.T) {
		ctx := WithRequestCache(context.Background())
		if err := ctl.Require(ctx, chatID, member, chat.PermAddUsers); err != nil {
			t.Fatalf("Require() error = %v", err)
		}

		delete(repo.members, member)
		if err := ctl.Require(ctx, chatID, member, chat.PermAddUsers); err != nil {
			t.Fatalf("Require() within same request error = %v", err)
		}

		fresh := WithRequestCache(context.Background())
		err := ctl.Require(fresh, chatID, member, chat.PermAddUsers)
		if !errors.Is(err, folio_errors.ErrNotFound) {
			t.Fatalf("Require() on new request error = %v, want %v", err, folio_errors.ErrNotFound)
		}
	})
}
