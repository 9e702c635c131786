package message

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Message represents the messages table
type Message struct {
	ID        uuid.UUID
	ChatID    uuid.UUID
	SenderID  uuid.UUID
	ParentID  uuid.NullUUID
	Content   sql.NullString
	MediaURL  sql.NullString
	MediaType sql.NullString
	IsEdited  bool
	IsPinned  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Message) TableName() string {
	return "messages"
}
