package chat

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Chat types
const (
	TypeDirect = "direct"
	TypeGroup  = "group"
)

// Chat represents the chats table
type Chat struct {
	ID            uuid.UUID
	Type          string
	Name          sql.NullString
	CreatedBy     uuid.NullUUID
	CreatedAt     time.Time
	UpdatedAt     time.Time
	LastMessageAt sql.NullTime

	// Relationships
	Participants []Participant `gorm:"foreignKey:ChatID"`
}

// Participant represents the chat_participants table.
// A row with LeftAt NULL is an active membership; removal and leaving
// only set LeftAt so message history keeps its authorship context.
type Participant struct {
	ID         uuid.UUID
	ChatID     uuid.UUID
	UserID     uuid.UUID
	RoleID     uuid.UUID
	JoinedAt   time.Time
	LeftAt     sql.NullTime
	LastReadAt sql.NullTime

	// Relationships
	Role Role `gorm:"foreignKey:RoleID"`
}

// Role represents the chat_roles table
type Role struct {
	ID          uuid.UUID
	Name        string `gorm:"uniqueIndex"`
	Description string
}

// Permission represents the chat_permissions table
type Permission struct {
	ID          uuid.UUID
	Name        string `gorm:"uniqueIndex"`
	Description string
}

// RolePermission is the join row between roles and permissions
type RolePermission struct {
	RoleID       uuid.UUID `gorm:"primaryKey"`
	PermissionID uuid.UUID `gorm:"primaryKey"`
}

func (Chat) TableName() string {
	return "chats"
}

func (Participant) TableName() string {
	return "chat_participants"
}

func (Role) TableName() string {
	return "chat_roles"
}

func (Permission) TableName() string {
	return "chat_permissions"
}

func (RolePermission) TableName() string {
	return "chat_role_permissions"
}

// Active reports whether the participant row is a current membership.
func (p Participant) Active() bool {
	return !p.LeftAt.Valid
}
