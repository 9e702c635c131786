package services

import (
	"context"
	"sort"
	"time"

	"folio-chat/internal/domain/chat"
	"folio-chat/internal/domain/message"
	"folio-chat/internal/domain/user"
	folio_errors "folio-chat/pkg/errors"

	"github.com/google/uuid"
)

// In-memory repository fakes backing the service tests. They mirror the
// Postgres implementations' error mapping: missing rows are ErrNotFound,
// zero-row updates are ErrNotFound too.

type fakeUserRepo struct {
	users map[uuid.UUID]user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]user.User)}
}

func (r *fakeUserRepo) add(u user.User) user.User {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.ID] = u
	return u
}

func (r *fakeUserRepo) Create(ctx context.Context, u *user.User) error {
	for _, existing := range r.users {
		if u.Email.Valid && existing.Email.Valid && u.Email.String == existing.Email.String {
			return folio_errors.ErrAlreadyExists
		}
		if u.Username.Valid && existing.Username.Valid && u.Username.String == existing.Username.String {
			return folio_errors.ErrAlreadyExists
		}
	}
	r.users[u.ID] = *u
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	u, ok := r.users[id]
	if !ok {
		return user.User{}, folio_errors.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	for _, u := range r.users {
		if u.Email.Valid && u.Email.String == email {
			return u, nil
		}
	}
	return user.User{}, folio_errors.ErrNotFound
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (user.User, error) {
	for _, u := range r.users {
		if u.Username.Valid && u.Username.String == username {
			return u, nil
		}
	}
	return user.User{}, folio_errors.ErrNotFound
}

func (r *fakeUserRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]user.User, error) {
	var result []user.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			result = append(result, u)
		}
	}
	return result, nil
}

type fakeChatRepo struct {
	chats        map[uuid.UUID]chat.Chat
	participants []chat.Participant
	roles        map[string]chat.Role
}

func newFakeChatRepo() *fakeChatRepo {
	r := &fakeChatRepo{
		chats: make(map[uuid.UUID]chat.Chat),
		roles: make(map[string]chat.Role),
	}
	for _, name := range chat.RoleOrder {
		r.roles[name] = chat.Role{ID: uuid.New(), Name: name, Description: chat.RoleDescriptions[name]}
	}
	return r
}

func (r *fakeChatRepo) roleByID(id uuid.UUID) (chat.Role, bool) {
	for _, role := range r.roles {
		if role.ID == id {
			return role, true
		}
	}
	return chat.Role{}, false
}

func (r *fakeChatRepo) addMember(chatID, userID uuid.UUID, roleName string) {
	r.participants = append(r.participants, chat.Participant{
		ID:       uuid.New(),
		ChatID:   chatID,
		UserID:   userID,
		RoleID:   r.roles[roleName].ID,
		JoinedAt: time.Now(),
	})
}

func (r *fakeChatRepo) Create(ctx context.Context, c *chat.Chat) error {
	r.chats[c.ID] = *c
	return nil
}

func (r *fakeChatRepo) GetByID(ctx context.Context, id uuid.UUID) (chat.Chat, error) {
	c, ok := r.chats[id]
	if !ok {
		return chat.Chat{}, folio_errors.ErrNotFound
	}
	c.Participants = nil
	for _, p := range r.participants {
		if p.ChatID == id && !p.LeftAt.Valid {
			if role, ok := r.roleByID(p.RoleID); ok {
				p.Role = role
			}
			c.Participants = append(c.Participants, p)
		}
	}
	return c, nil
}

func (r *fakeChatRepo) Rename(ctx context.Context, chatID uuid.UUID, name string) error {
	c, ok := r.chats[chatID]
	if !ok {
		return folio_errors.ErrNotFound
	}
	c.Name.String = name
	c.Name.Valid = true
	c.UpdatedAt = time.Now()
	r.chats[chatID] = c
	return nil
}

func (r *fakeChatRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.chats[id]; !ok {
		return folio_errors.ErrNotFound
	}
	delete(r.chats, id)
	kept := r.participants[:0]
	for _, p := range r.participants {
		if p.ChatID != id {
			kept = append(kept, p)
		}
	}
	r.participants = kept
	return nil
}

func (r *fakeChatRepo) GetUserChats(ctx context.Context, userID uuid.UUID) ([]chat.Chat, error) {
	var result []chat.Chat
	for id := range r.chats {
		for _, p := range r.participants {
			if p.ChatID == id && p.UserID == userID && !p.LeftAt.Valid {
				c, _ := r.GetByID(ctx, id)
				result = append(result, c)
				break
			}
		}
	}
	sort.Slice(result, func(i, j int) bool {
		left, right := result[i], result[j]
		switch {
		case left.LastMessageAt.Valid && right.LastMessageAt.Valid:
			return left.LastMessageAt.Time.After(right.LastMessageAt.Time)
		case left.LastMessageAt.Valid:
			return true
		case right.LastMessageAt.Valid:
			return false
		default:
			return left.CreatedAt.After(right.CreatedAt)
		}
	})
	return result, nil
}

func (r *fakeChatRepo) TouchLastMessage(ctx context.Context, chatID uuid.UUID, at time.Time) error {
	c, ok := r.chats[chatID]
	if !ok {
		return folio_errors.ErrNotFound
	}
	c.LastMessageAt.Time = at
	c.LastMessageAt.Valid = true
	c.UpdatedAt = at
	r.chats[chatID] = c
	return nil
}

func (r *fakeChatRepo) AddParticipant(ctx context.Context, p *chat.Participant) error {
	r.participants = append(r.participants, *p)
	return nil
}

func (r *fakeChatRepo) GetActiveParticipant(ctx context.Context, chatID, userID uuid.UUID) (chat.Participant, error) {
	for _, p := range r.participants {
		if p.ChatID == chatID && p.UserID == userID && !p.LeftAt.Valid {
			if role, ok := r.roleByID(p.RoleID); ok {
				p.Role = role
			}
			return p, nil
		}
	}
	return chat.Participant{}, folio_errors.ErrNotFound
}

func (r *fakeChatRepo) GetActiveParticipants(ctx context.Context, chatID uuid.UUID) ([]chat.Participant, error) {
	var result []chat.Participant
	for _, p := range r.participants {
		if p.ChatID == chatID && !p.LeftAt.Valid {
			if role, ok := r.roleByID(p.RoleID); ok {
				p.Role = role
			}
			result = append(result, p)
		}
	}
	return result, nil
}

func (r *fakeChatRepo) CountActiveParticipants(ctx context.Context, chatID uuid.UUID) (int64, error) {
	participants, _ := r.GetActiveParticipants(ctx, chatID)
	return int64(len(participants)), nil
}

func (r *fakeChatRepo) UpdateParticipantRole(ctx context.Context, chatID, userID, roleID uuid.UUID) error {
	for i, p := range r.participants {
		if p.ChatID == chatID && p.UserID == userID && !p.LeftAt.Valid {
			r.participants[i].RoleID = roleID
			return nil
		}
	}
	return folio_errors.ErrNotFound
}

func (r *fakeChatRepo) MarkLeft(ctx context.Context, chatID, userID uuid.UUID, at time.Time) error {
	for i, p := range r.participants {
		if p.ChatID == chatID && p.UserID == userID && !p.LeftAt.Valid {
			r.participants[i].LeftAt.Time = at
			r.participants[i].LeftAt.Valid = true
			return nil
		}
	}
	return folio_errors.ErrNotFound
}

func (r *fakeChatRepo) UpdateLastReadAt(ctx context.Context, chatID, userID uuid.UUID, at time.Time) error {
	for i, p := range r.participants {
		if p.ChatID == chatID && p.UserID == userID && !p.LeftAt.Valid {
			r.participants[i].LastReadAt.Time = at
			r.participants[i].LastReadAt.Valid = true
			return nil
		}
	}
	return folio_errors.ErrNotFound
}

func (r *fakeChatRepo) GetRoleByID(ctx context.Context, id uuid.UUID) (chat.Role, error) {
	role, ok := r.roleByID(id)
	if !ok {
		return chat.Role{}, folio_errors.ErrNotFound
	}
	return role, nil
}

func (r *fakeChatRepo) GetRoleByName(ctx context.Context, name string) (chat.Role, error) {
	role, ok := r.roles[name]
	if !ok {
		return chat.Role{}, folio_errors.ErrNotFound
	}
	return role, nil
}

func (r *fakeChatRepo) ListRoles(ctx context.Context) ([]chat.Role, error) {
	result := make([]chat.Role, 0, len(r.roles))
	for _, name := range chat.RoleOrder {
		result = append(result, r.roles[name])
	}
	return result, nil
}

func (r *fakeChatRepo) ActivePermissions(ctx context.Context, chatID, userID uuid.UUID) ([]string, error) {
	p, err := r.GetActiveParticipant(ctx, chatID, userID)
	if err != nil {
		return nil, nil
	}
	return chat.RoleGrants[p.Role.Name], nil
}

func (r *fakeChatRepo) HasActivePermission(ctx context.Context, chatID, userID uuid.UUID, perm string) (bool, error) {
	names, _ := r.ActivePermissions(ctx, chatID, userID)
	for _, name := range names {
		if name == perm {
			return true, nil
		}
	}
	return false, nil
}

type fakeMessageRepo struct {
	messages map[uuid.UUID]message.Message
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{messages: make(map[uuid.UUID]message.Message)}
}

func (r *fakeMessageRepo) Create(ctx context.Context, m *message.Message) error {
	r.messages[m.ID] = *m
	return nil
}

func (r *fakeMessageRepo) GetByID(ctx context.Context, id uuid.UUID) (message.Message, error) {
	m, ok := r.messages[id]
	if !ok {
		return message.Message{}, folio_errors.ErrNotFound
	}
	return m, nil
}

func (r *fakeMessageRepo) UpdateContent(ctx context.Context, id uuid.UUID, content string, editedAt time.Time) error {
	m, ok := r.messages[id]
	if !ok {
		return folio_errors.ErrNotFound
	}
	m.Content.String = content
	m.Content.Valid = true
	m.IsEdited = true
	m.UpdatedAt = editedAt
	r.messages[id] = m
	return nil
}

func (r *fakeMessageRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.messages[id]; !ok {
		return folio_errors.ErrNotFound
	}
	delete(r.messages, id)
	return nil
}

func (r *fakeMessageRepo) SetPinned(ctx context.Context, id uuid.UUID, pinned bool) error {
	m, ok := r.messages[id]
	if !ok {
		return folio_errors.ErrNotFound
	}
	m.IsPinned = pinned
	m.UpdatedAt = time.Now()
	r.messages[id] = m
	return nil
}

func (r *fakeMessageRepo) chatMessages(chatID uuid.UUID) []message.Message {
	var result []message.Message
	for _, m := range r.messages {
		if m.ChatID == chatID {
			result = append(result, m)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

func (r *fakeMessageRepo) GetChatMessages(ctx context.Context, chatID uuid.UUID, page, limit int) ([]message.Message, int64, error) {
	all := r.chatMessages(chatID)
	total := int64(len(all))
	start := (page - 1) * limit
	if start >= len(all) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r *fakeMessageRepo) GetLatestMessage(ctx context.Context, chatID uuid.UUID) (message.Message, error) {
	all := r.chatMessages(chatID)
	if len(all) == 0 {
		return message.Message{}, folio_errors.ErrNotFound
	}
	return all[0], nil
}
