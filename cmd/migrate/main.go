package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"chat-rooms/config"
	"chat-rooms/internal/domain/user"
	"chat-rooms/internal/repository"
	"chat-rooms/internal/services"
	"chat-rooms/pkg/database"

	"github.com/google/uuid"
)

const usage = `
Chat Rooms - Database CLI Tool

Usage:
  migrate [flags] [command]

Commands:
  up          Create or update the schema
  status      Show database connection status, table counts and recent chats
  seed-dev    Seed a test user with chats and messages
  truncate    Truncate all tables (DANGEROUS)
  token       Print a signed access token for a user id (development)

Flags:
  -chats int       Chats to create with seed-dev (default 5)
  -messages int    Messages per chat with seed-dev (default 30)
  -username string Seed user name (default "testuser")
  -user string     User id for token
  -ttl duration    Token lifetime (default 24h)

Examples:
  go run cmd/migrate/main.go up
  go run cmd/migrate/main.go -chats 10 seed-dev
  go run cmd/migrate/main.go -user 7f1c... token
`

func main() {
	chats := flag.Int("chats", 5, "Chats to create with seed-dev")
	messages := flag.Int("messages", 30, "Messages per chat with seed-dev")
	username := flag.String("username", "testuser", "Seed user name")
	userID := flag.String("user", "", "User id for token")
	ttl := flag.Duration("ttl", 24*time.Hour, "Token lifetime")

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

	ctx := context.Background()

	switch command {
	case "up":
		runMigrationsUp()
	case "status":
		showStatus(ctx)
	case "seed-dev":
		seed := database.DefaultSeedConfig()
		seed.Username = *username
		seed.ChatCount = *chats
		seed.MessagesPerChat = *messages
		runSeedDevelopment(ctx, seed)
	case "truncate":
		runTruncate()
	case "token":
		runToken(ctx, cfg, *userID, *ttl)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}

func runMigrationsUp() {
	log.Println("🚀 Running migrations UP...")

	if err := database.Migrate(database.DB); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}

	log.Println("✅ Migrations completed successfully!")
}

func showStatus(ctx context.Context) {
	log.Println("🔍 Checking database status...")

	if err := database.Ping(); err != nil {
		log.Fatalf("❌ Database connection failed: %v", err)
	}
	log.Println("✅ Database connection: OK")

	for _, table := range database.Tables {
		exists, err := database.TableExists(table)
		if err != nil {
			log.Printf("⚠️  Error checking table %s: %v", table, err)
			continue
		}
		if exists {
			count, _ := database.GetTableCount(table)
			log.Printf("✅ Table %-20s exists (%d rows)", table, count)
		} else {
			log.Printf("❌ Table %-20s does not exist", table)
		}
	}

	if err := database.HealthCheck(); err != nil {
		log.Printf("⚠️  Health check warning: %v", err)
		return
	}
	log.Println("✅ Health check: PASSED")

	chatRepo := repository.NewChatRepository(database.DB)
	active, err := chatRepo.GetActiveChats(ctx)
	if err != nil {
		log.Printf("⚠️  Could not count active chats: %v", err)
	} else {
		log.Printf("💬 Active chats: %d", len(active))
	}

	recent, err := chatRepo.GetRecentChats(ctx, repository.DefaultRecentChats)
	if err != nil {
		log.Printf("⚠️  Could not list recent chats: %v", err)
		return
	}
	for _, c := range recent {
		log.Printf("   - %s (%d participants, updated %s)", c.DisplayTitle(), len(c.Participants), c.UpdatedAt.Format(time.RFC3339))
	}
}

func runSeedDevelopment(ctx context.Context, seed *database.SeedConfig) {
	log.Println("🌱 Seeding database (development mode)...")

	result, err := database.SeedDevelopment(ctx, database.DB, seed)
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("📊 Seed Summary:")
	log.Printf("   - User: %s (ID: %s)", result.User.Username, result.User.ID)
	log.Printf("   - Chats: %d", len(result.Chats))
	log.Printf("   - Messages: %d", result.Messages)
	log.Println("✅ Development seeding completed!")
}

func runTruncate() {
	log.Println("⚠️  WARNING: This will TRUNCATE all tables!")

	if err := database.TruncateAllTables(); err != nil {
		log.Fatalf("❌ Truncate failed: %v", err)
	}

	log.Println("✅ All tables truncated!")
}

func runToken(ctx context.Context, cfg *config.Config, rawID string, ttl time.Duration) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		log.Fatalf("❌ -user must be a user id: %v", err)
	}
	userRepo := repository.NewUserRepository(database.DB)
	u, err := userRepo.GetByID(ctx, id)
	if err != nil {
		log.Printf("⚠️  User %s not found locally, issuing a bare token", id)
		u = user.User{ID: id}
	}

	token, err := services.NewAuthService(userRepo, cfg).IssueToken(u, ttl)
	if err != nil {
		log.Fatalf("❌ Failed to sign token: %v", err)
	}
	fmt.Println(token)
}
