package database_test

import (
	"context"
	"testing"

	"chat-rooms/internal/domain/message"
	"chat-rooms/pkg/database"
	"chat-rooms/pkg/database/databasetest"

	"github.com/stretchr/testify/require"
)

func TestSeedDevelopment(t *testing.T) {
	ctx := context.Background()
	db := databasetest.New(t)

	t.Run("should create chats with indexed messages", func(t *testing.T) {
		req := require.New(t)
		cfg := database.DefaultSeedConfig()
		cfg.ChatCount = 2
		cfg.MessagesPerChat = 4

		res, err := database.SeedDevelopment(ctx, db, cfg)
		req.NoError(err)
		req.Len(res.Chats, 2)
		req.Equal(8, res.Messages)

		var msgs []message.Message
		req.NoError(db.Where("chat_id = ?", res.Chats[0].ID).Order("context_index").Find(&msgs).Error)
		req.Len(msgs, 4)
		for i, m := range msgs {
			req.NotNil(m.ContextIndex)
			req.Equal(i, *m.ContextIndex)
			req.Equal(res.User.ID, m.SenderID)
		}
	})

	t.Run("should reuse the seed user and empty every table on truncate", func(t *testing.T) {
		req := require.New(t)
		cfg := database.DefaultSeedConfig()
		cfg.ChatCount = 1
		cfg.MessagesPerChat = 1
		first, err := database.SeedDevelopment(ctx, db, cfg)
		req.NoError(err)

		var users int64
		req.NoError(db.Table("users").Count(&users).Error)
		req.EqualValues(1, users)
		req.NotEmpty(first.User.ID)

		req.NoError(database.Truncate(db))
		for _, table := range database.Tables {
			var n int64
			req.NoError(db.Table(table).Count(&n).Error)
			req.Zero(n, table)
		}
	})
}
