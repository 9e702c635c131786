package user

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// User represents the users table
type User struct {
	ID           uuid.UUID
	Email        sql.NullString `gorm:"uniqueIndex"`
	Username     sql.NullString `gorm:"uniqueIndex"`
	PasswordHash string
	DisplayName  string
	AvatarURL    string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (User) TableName() string {
	return "users"
}
