package database

import (
	"fmt"
	"log"
	"time"

	"folio-chat/config"
	"folio-chat/internal/domain/chat"
	"folio-chat/internal/domain/message"
	"folio-chat/internal/domain/user"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Connect(cfg *config.Config) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		log.Fatalf("Failed to get generic database object: %v", err)
	}

	// Connection pool settings
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Println("Database connection established")
}

func Close() {
	if DB == nil {
		return
	}
	if sqlDB, err := DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func Ping() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func HealthCheck() error {
	if DB == nil {
		return fmt.Errorf("database not connected")
	}
	return Ping()
}

// Migrate creates or updates the schema for every table the service owns.
func Migrate() error {
	return DB.AutoMigrate(
		&user.User{},
		&chat.Role{},
		&chat.Permission{},
		&chat.RolePermission{},
		&chat.Chat{},
		&chat.Participant{},
		&message.Message{},
	)
}

func TableExists(name string) (bool, error) {
	return DB.Migrator().HasTable(name), nil
}

func GetTableCount(name string) (int64, error) {
	var count int64
	err := DB.Table(name).Count(&count).Error
	return count, err
}

func TruncateAllTables() error {
	tables := []string{
		"messages",
		"chat_participants",
		"chats",
		"chat_role_permissions",
		"chat_permissions",
		"chat_roles",
		"users",
	}
	for _, table := range tables {
		if err := DB.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error; err != nil {
			return fmt.Errorf("failed to truncate %s: %w", table, err)
		}
	}
	return nil
}
