package database

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"strings"
	"time"

	"chat-rooms/internal/domain/chat"
	"chat-rooms/internal/domain/message"
	"chat-rooms/internal/domain/user"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedConfig holds configuration for seeding the database
type SeedConfig struct {
	Username        string
	Email           string
	ChatCount       int
	MessagesPerChat int
	MaxAge          time.Duration
}

// DefaultSeedConfig returns default seed configuration
func DefaultSeedConfig() *SeedConfig {
	return &SeedConfig{
		Username:        "testuser",
		Email:           "test@example.com",
		ChatCount:       5,
		MessagesPerChat: 30,
		MaxAge:          7 * 24 * time.Hour,
	}
}

// SeedResult holds the result of the seeding operation
type SeedResult struct {
	User     user.User
	Chats    []chat.Chat
	Messages int
}

var seedWords = strings.Fields(`agenda backlog budget customer deadline demo draft
estimate feature feedback goal launch metric milestone outline plan priority
question release review risk roadmap sprint summary task team timeline update`)

func sentence(r *rand.Rand, words int) string {
	parts := make([]string, words)
	for i := range parts {
		parts[i] = seedWords[r.IntN(len(seedWords))]
	}
	s := strings.Join(parts, " ")
	return strings.ToUpper(s[:1]) + s[1:] + "."
}

func paragraph(r *rand.Rand) string {
	n := 2 + r.IntN(3)
	out := make([]string, n)
	for i := range out {
		out[i] = sentence(r, 6+r.IntN(6))
	}
	return strings.Join(out, " ")
}

// SeedDevelopment creates a test user owning sample chats, each with messages
// indexed 0..n-1 and timestamps spread over the configured age.
func SeedDevelopment(ctx context.Context, db *gorm.DB, cfg *SeedConfig) (*SeedResult, error) {
	if cfg == nil {
		cfg = DefaultSeedConfig()
	}
	r := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	result := &SeedResult{}

	log.Println("Starting database seeding...")

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u := user.User{Username: cfg.Username, Email: cfg.Email, DisplayName: "Test User"}
		if err := tx.Where("username = ?", cfg.Username).FirstOrCreate(&u).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}
		result.User = u

		now := time.Now().UTC()
		for i := 0; i < cfg.ChatCount; i++ {
			c := chat.Chat{
				Title:       strings.TrimSuffix(sentence(r, 4), "."),
				Prompt:      paragraph(r),
				IsActive:    true,
				CreatedByID: u.ID,
			}
			if err := tx.Omit(clause.Associations).Create(&c).Error; err != nil {
				return fmt.Errorf("failed to seed chat: %w", err)
			}
			if err := tx.Create(&chat.Participant{ChatID: c.ID, UserID: u.ID}).Error; err != nil {
				return fmt.Errorf("failed to seed participant: %w", err)
			}

			msgs := make([]message.Message, cfg.MessagesPerChat)
			for j := range msgs {
				idx := j
				age := time.Duration(r.Int64N(int64(cfg.MaxAge) + 1))
				msgs[j] = message.Message{
					ID:           uuid.New(),
					ChatID:       c.ID,
					Content:      paragraph(r),
					SenderID:     u.ID,
					ContextIndex: &idx,
					CreatedAt:    now.Add(-age),
					UpdatedAt:    now,
				}
			}
			if len(msgs) > 0 {
				if err := tx.Omit(clause.Associations).CreateInBatches(msgs, 100).Error; err != nil {
					return fmt.Errorf("failed to seed messages: %w", err)
				}
			}
			result.Chats = append(result.Chats, c)
			result.Messages += len(msgs)
			log.Printf("Created chat %q with %d messages", c.Title, len(msgs))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Println("Database seeding completed successfully!")
	return result, nil
}
