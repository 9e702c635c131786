package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"folio-chat/internal/domain/chat"
	"folio-chat/internal/domain/message"
	"folio-chat/internal/domain/user"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedConfig holds configuration for seeding the database
type SeedConfig struct {
	CreateTestUsers bool
	TestUserCount   int
}

// DefaultSeedConfig returns default seed configuration
func DefaultSeedConfig() *SeedConfig {
	return &SeedConfig{
		CreateTestUsers: false,
		TestUserCount:   4,
	}
}

// SeedResult holds the result of the seeding operation
type SeedResult struct {
	Roles       []*chat.Role
	Permissions []*chat.Permission
	TestUsers   []*user.User
	Chats       []*chat.Chat
}

// Seed writes the role/permission reference data and, when configured,
// development users and sample chats. Safe to run repeatedly.
func Seed(cfg *SeedConfig) (*SeedResult, error) {
	if cfg == nil {
		cfg = DefaultSeedConfig()
	}

	result := &SeedResult{}
	log.Println("Starting database seeding...")

	roles, perms, err := SeedRolesAndPermissions(DB)
	if err != nil {
		return nil, fmt.Errorf("failed to seed roles/permissions: %w", err)
	}
	result.Roles = roles
	result.Permissions = perms

	if cfg.CreateTestUsers {
		users, err := seedTestUsers(cfg.TestUserCount)
		if err != nil {
			return nil, fmt.Errorf("failed to seed test users: %w", err)
		}
		result.TestUsers = users

		if len(users) >= 3 {
			chats, err := seedChats(users, roles)
			if err != nil {
				return nil, fmt.Errorf("failed to seed chats: %w", err)
			}
			result.Chats = chats
		}
	}

	log.Println("Database seeding completed successfully!")
	return result, nil
}

// SeedRolesAndPermissions inserts the six fixed roles, the ten fixed
// permissions and the grant rows from chat.RoleGrants. Existing rows are
// reused, so the reference data converges to the canonical table.
func SeedRolesAndPermissions(db *gorm.DB) ([]*chat.Role, []*chat.Permission, error) {
	var roles []*chat.Role
	var perms []*chat.Permission

	err := db.Transaction(func(tx *gorm.DB) error {
		permsByName := make(map[string]*chat.Permission, len(chat.AllPermissions))
		for _, name := range chat.AllPermissions {
			p := &chat.Permission{}
			res := tx.Where("name = ?", name).First(p)
			if res.Error == gorm.ErrRecordNotFound {
				p = &chat.Permission{
					ID:          uuid.New(),
					Name:        name,
					Description: chat.PermissionDescriptions[name],
				}
				if err := tx.Create(p).Error; err != nil {
					return err
				}
			} else if res.Error != nil {
				return res.Error
			}
			permsByName[name] = p
			perms = append(perms, p)
		}

		for _, name := range chat.RoleOrder {
			r := &chat.Role{}
			res := tx.Where("name = ?", name).First(r)
			if res.Error == gorm.ErrRecordNotFound {
				r = &chat.Role{
					ID:          uuid.New(),
					Name:        name,
					Description: chat.RoleDescriptions[name],
				}
				if err := tx.Create(r).Error; err != nil {
					return err
				}
			} else if res.Error != nil {
				return res.Error
			}
			roles = append(roles, r)

			for _, permName := range chat.RoleGrants[name] {
				perm := permsByName[permName]
				var count int64
				if err := tx.Model(&chat.RolePermission{}).
					Where("role_id = ? AND permission_id = ?", r.ID, perm.ID).
					Count(&count).Error; err != nil {
					return err
				}
				if count == 0 {
					if err := tx.Create(&chat.RolePermission{RoleID: r.ID, PermissionID: perm.ID}).Error; err != nil {
						return err
					}
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	log.Printf("Seeded %d roles and %d permissions", len(roles), len(perms))
	return roles, perms, nil
}

// seedTestUsers creates development users
func seedTestUsers(count int) ([]*user.User, error) {
	users := make([]*user.User, 0, count)

	testUserData := []struct {
		email       string
		username    string
		displayName string
	}{
		{"alice@test.com", "alice", "Alice Johnson"},
		{"bob@test.com", "bob", "Bob Smith"},
		{"charlie@test.com", "charlie", "Charlie Brown"},
		{"diana@test.com", "diana", "Diana Prince"},
		{"edward@test.com", "edward", "Edward Chen"},
		{"fiona@test.com", "fiona", "Fiona Green"},
	}

	password := "Test@123!"
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	for i := 0; i < count && i < len(testUserData); i++ {
		data := testUserData[i]

		existing := &user.User{}
		if err := DB.Where("email = ?", data.email).First(existing).Error; err == nil {
			log.Printf("Test user %s already exists, skipping", data.email)
			users = append(users, existing)
			continue
		}

		newUser := &user.User{
			ID:           uuid.New(),
			Email:        sql.NullString{String: data.email, Valid: true},
			Username:     sql.NullString{String: data.username, Valid: true},
			PasswordHash: string(hashedPassword),
			DisplayName:  data.displayName,
			IsActive:     true,
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		}
		if err := DB.Create(newUser).Error; err != nil {
			return nil, fmt.Errorf("failed to create test user %s: %w", data.email, err)
		}
		users = append(users, newUser)
		log.Printf("Test user seeded: %s", data.email)
	}

	return users, nil
}

// seedChats creates one direct and one group chat for development
func seedChats(users []*user.User, roles []*chat.Role) ([]*chat.Chat, error) {
	roleByName := make(map[string]*chat.Role, len(roles))
	for _, r := range roles {
		roleByName[r.Name] = r
	}
	owner := roleByName[chat.RoleOwner]
	chatter := roleByName[chat.RoleChatter]
	if owner == nil || chatter == nil {
		return nil, fmt.Errorf("role reference data missing")
	}

	chats := make([]*chat.Chat, 0, 2)

	direct := &chat.Chat{
		ID:        uuid.New(),
		Type:      chat.TypeDirect,
		CreatedBy: uuid.NullUUID{UUID: users[0].ID, Valid: true},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	err := DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(direct).Error; err != nil {
			return err
		}
		members := []struct {
			u *user.User
			r *chat.Role
		}{{users[0], owner}, {users[1], chatter}}
		for _, m := range members {
			p := &chat.Participant{
				ID:       uuid.New(),
				ChatID:   direct.ID,
				UserID:   m.u.ID,
				RoleID:   m.r.ID,
				JoinedAt: time.Now(),
			}
			if err := tx.Create(p).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	chats = append(chats, direct)
	log.Printf("Direct chat seeded: %s", direct.ID)

	group := &chat.Chat{
		ID:        uuid.New(),
		Type:      chat.TypeGroup,
		Name:      sql.NullString{String: "Folio Team", Valid: true},
		CreatedBy: uuid.NullUUID{UUID: users[0].ID, Valid: true},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	err = DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(group).Error; err != nil {
			return err
		}
		for i, u := range users {
			role := chatter
			if i == 0 {
				role = owner
			}
			p := &chat.Participant{
				ID:       uuid.New(),
				ChatID:   group.ID,
				UserID:   u.ID,
				RoleID:   role.ID,
				JoinedAt: time.Now(),
			}
			if err := tx.Create(p).Error; err != nil {
				return err
			}
		}

		welcome := &message.Message{
			ID:        uuid.New(),
			ChatID:    group.ID,
			SenderID:  users[0].ID,
			Content:   sql.NullString{String: "Welcome to the team chat!", Valid: true},
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		if err := tx.Create(welcome).Error; err != nil {
			return err
		}
		return tx.Model(&chat.Chat{}).Where("id = ?", group.ID).
			Update("last_message_at", welcome.CreatedAt).Error
	})
	if err != nil {
		return nil, err
	}
	chats = append(chats, group)
	log.Printf("Group chat seeded: %s", group.ID)

	return chats, nil
}

// SeedDevelopment is a convenience function for development environment
func SeedDevelopment() (*SeedResult, error) {
	cfg := DefaultSeedConfig()
	cfg.CreateTestUsers = true
	cfg.TestUserCount = 6
	return Seed(cfg)
}

// SeedProduction seeds reference data only
func SeedProduction() (*SeedResult, error) {
	return Seed(DefaultSeedConfig())
}
