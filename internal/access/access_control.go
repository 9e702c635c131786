// Package access answers "may user U, as a participant of chat C, do P?".
// Authorization is a database lookup: active participant row joined through
// its role to the role/permission grant rows. Results are memoized per
// request only, so a role change is visible on the next request.
package access

import (
	"context"
	"errors"
	"sync"

	"folio-chat/internal/domain/chat"
	"folio-chat/internal/repository"
	folio_errors "folio-chat/pkg/errors"

	"github.com/google/uuid"
)

type Control struct {
	chatRepo repository.ChatRepository
}

func NewControl(chatRepo repository.ChatRepository) *Control {
	return &Control{chatRepo: chatRepo}
}

type membership struct {
	participant chat.Participant
	active      bool
	perms       map[string]bool
}

type cacheKeyType struct{}

var cacheKey cacheKeyType

type requestCache struct {
	mu      sync.Mutex
	entries map[string]membership
}

// WithRequestCache installs a per-request memo for permission lookups.
// Installed by the auth middleware; absence of the cache just means every
// check hits the database.
func WithRequestCache(ctx context.Context) context.Context {
	return context.WithValue(ctx, cacheKey, &requestCache{entries: make(map[string]membership)})
}

func (a *Control) load(ctx context.Context, chatID, userID uuid.UUID) (membership, error) {
	var cache *requestCache
	if v := ctx.Value(cacheKey); v != nil {
		cache = v.(*requestCache)
	}
	key := chatID.String() + "|" + userID.String()

	if cache != nil {
		cache.mu.Lock()
		if m, ok := cache.entries[key]; ok {
			cache.mu.Unlock()
			return m, nil
		}
		cache.mu.Unlock()
	}

	var m membership
	p, err := a.chatRepo.GetActiveParticipant(ctx, chatID, userID)
	switch {
	case err == nil:
		names, err := a.chatRepo.ActivePermissions(ctx, chatID, userID)
		if err != nil {
			return membership{}, err
		}
		m = membership{participant: p, active: true, perms: make(map[string]bool, len(names))}
		for _, name := range names {
			m.perms[name] = true
		}
	case errors.Is(err, folio_errors.ErrNotFound):
		m = membership{}
	default:
		return membership{}, err
	}

	if cache != nil {
		cache.mu.Lock()
		cache.entries[key] = m
		cache.mu.Unlock()
	}
	return m, nil
}

// RequireParticipant fails with ErrNotFound when the user has no active
// participant row. Non-members get the same status as a missing chat,
// which keeps chat existence unobservable to outsiders.
func (a *Control) RequireParticipant(ctx context.Context, chatID, userID uuid.UUID) error {
	m, err := a.load(ctx, chatID, userID)
	if err != nil {
		return err
	}
	if !m.active {
		return folio_errors.ErrNotFound
	}
	return nil
}

// Require fails with ErrNotFound for non-members and ErrForbidden for
// members whose role does not grant perm.
func (a *Control) Require(ctx context.Context, chatID, userID uuid.UUID, perm string) error {
	m, err := a.load(ctx, chatID, userID)
	if err != nil {
		return err
	}
	if !m.active {
		return folio_errors.ErrNotFound
	}
	if !m.perms[perm] {
		return folio_errors.ErrForbidden
	}
	return nil
}

// Has reports whether the user's active role grants perm. Unlike Require
// it does not distinguish non-membership from a missing grant.
func (a *Control) Has(ctx context.Context, chatID, userID uuid.UUID, perm string) (bool, error) {
	m, err := a.load(ctx, chatID, userID)
	if err != nil {
		return false, err
	}
	return m.active && m.perms[perm], nil
}

// Participant returns the caller's active participant row.
func (a *Control) Participant(ctx context.Context, chatID, userID uuid.UUID) (chat.Participant, error) {
	m, err := a.load(ctx, chatID, userID)
	if err != nil {
		return chat.Participant{}, err
	}
	if !m.active {
		return chat.Participant{}, folio_errors.ErrNotFound
	}
	return m.participant, nil
}
