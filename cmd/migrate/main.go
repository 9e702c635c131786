package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"folio-chat/config"
	"folio-chat/pkg/database"
)

const usage = `
Folio Chat - Database CLI Tool

Usage:
  migrate [command]

Commands:
  up          Run schema migrations and seed reference data
  status      Show database connection status
  seed        Seed roles and permissions only
  seed-dev    Seed with development/test data
  truncate    Truncate all tables (DANGEROUS)

Examples:
  go run cmd/migrate/main.go up
  go run cmd/migrate/main.go seed
  go run cmd/migrate/main.go seed-dev
`

func main() {
	flag.Usage = func() {
		fmt.Print(usage)
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	command := flag.Arg(0)

	cfg := config.LoadConfig()
	database.Connect(cfg)
	defer database.Close()

	switch command {
	case "up":
		runMigrationsUp()
	case "status":
		showStatus()
	case "seed":
		runSeedProduction()
	case "seed-dev":
		runSeedDevelopment()
	case "truncate":
		runTruncate()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}

func runMigrationsUp() {
	log.Println("🚀 Running migrations UP...")

	if err := database.Migrate(); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}
	if _, _, err := database.SeedRolesAndPermissions(database.DB); err != nil {
		log.Fatalf("❌ Reference data seeding failed: %v", err)
	}

	log.Println("✅ Migrations completed successfully!")
}

func showStatus() {
	log.Println("🔍 Checking database status...")

	if err := database.Ping(); err != nil {
		log.Fatalf("❌ Database connection failed: %v", err)
	}
	log.Println("✅ Database connection: OK")

	tables := []string{"users", "chats", "chat_participants", "chat_roles", "chat_permissions", "chat_role_permissions", "messages"}
	for _, table := range tables {
		exists, err := database.TableExists(table)
		if err != nil {
			log.Printf("⚠️  Error checking table %s: %v", table, err)
			continue
		}
		if exists {
			count, _ := database.GetTableCount(table)
			log.Printf("✅ Table %-25s exists (%d rows)", table, count)
		} else {
			log.Printf("❌ Table %-25s does not exist", table)
		}
	}

	if err := database.HealthCheck(); err != nil {
		log.Printf("⚠️  Health check warning: %v", err)
	} else {
		log.Println("✅ Health check: PASSED")
	}
}

func runSeedProduction() {
	log.Println("🌱 Seeding database (reference data)...")

	result, err := database.SeedProduction()
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Printf("✅ Roles: %d, permissions: %d", len(result.Roles), len(result.Permissions))
	log.Println("✅ Seeding completed!")
}

func runSeedDevelopment() {
	log.Println("🌱 Seeding database (development mode)...")

	result, err := database.SeedDevelopment()
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("📊 Seed Summary:")
	log.Printf("   - Roles: %d", len(result.Roles))
	log.Printf("   - Permissions: %d", len(result.Permissions))
	log.Printf("   - Test users: %d", len(result.TestUsers))
	log.Printf("   - Chats: %d", len(result.Chats))
	log.Println("✅ Development seeding completed!")
}

func runTruncate() {
	log.Println("⚠️  WARNING: This will TRUNCATE all tables!")

	if err := database.TruncateAllTables(); err != nil {
		log.Fatalf("❌ Truncate failed: %v", err)
	}

	log.Println("✅ All tables truncated!")
}
