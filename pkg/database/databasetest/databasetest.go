// Package databasetest opens throwaway in-memory databases for tests.
package databasetest

import (
	"testing"
	"time"

	"chat-rooms/internal/domain/chat"
	"chat-rooms/internal/domain/user"
	"chat-rooms/pkg/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// New returns a migrated in-memory database closed at the end of the test.
func New(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// User inserts a user with the given username.
func User(t testing.TB, db *gorm.DB, username string) user.User {
	t.Helper()
	u := user.User{ID: uuid.New(), Username: username, Email: username + "@example.com"}
	require.NoError(t, db.Create(&u).Error)
	return u
}

// Chat inserts an active chat created by creator with the given participants.
func Chat(t testing.TB, db *gorm.DB, title string, creator user.User, participants ...user.User) chat.Chat {
	t.Helper()
	c := chat.Chat{ID: uuid.New(), Title: title, IsActive: true, CreatedByID: creator.ID}
	require.NoError(t, db.Omit(clause.Associations).Create(&c).Error)
	for _, p := range participants {
		require.NoError(t, db.Create(&chat.Participant{ChatID: c.ID, UserID: p.ID}).Error)
	}
	c.Participants = participants
	return c
}

// Touch sets a chat's updated_at.
func Touch(t testing.TB, db *gorm.DB, chatID uuid.UUID, at time.Time) {
	t.Helper()
	require.NoError(t, db.Model(&chat.Chat{}).Where("id = ?", chatID).UpdateColumn("updated_at", at.UTC()).Error)
}
