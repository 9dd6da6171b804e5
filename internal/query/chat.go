package query

import (
	"context"

	"chat-rooms/internal/domain/chat"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChatQuery filters chats. The zero ordering is updated_at descending.
type ChatQuery struct {
	s set[chat.Chat]
}

func Chats(db *gorm.DB) ChatQuery {
	return ChatQuery{s: newSet[chat.Chat](db, "chats.updated_at DESC, chats.id")}
}

func (q ChatQuery) ByID(id uuid.UUID) ChatQuery {
	return ChatQuery{s: q.s.where(func(db *gorm.DB) *gorm.DB {
		return db.Where("chats.id = ?", id)
	})}
}

func (q ChatQuery) Active() ChatQuery {
	return ChatQuery{s: q.s.where(func(db *gorm.DB) *gorm.DB {
		return db.Where("chats.is_active = ?", true)
	})}
}

func (q ChatQuery) Inactive() ChatQuery {
	return ChatQuery{s: q.s.where(func(db *gorm.DB) *gorm.DB {
		return db.Where("chats.is_active = ?", false)
	})}
}

func (q ChatQuery) WithParticipant(userID uuid.UUID) ChatQuery {
	return ChatQuery{s: q.s.where(func(db *gorm.DB) *gorm.DB {
		return db.Where("chats.id IN (?)", participantChatIDs(db, userID))
	})}
}

func (q ChatQuery) CreatedByUser(userID uuid.UUID) ChatQuery {
	return ChatQuery{s: q.s.where(func(db *gorm.DB) *gorm.DB {
		return db.Where("chats.created_by_id = ?", userID)
	})}
}

// VisibleTo keeps chats the user created or participates in. Each chat
// appears once even when both hold.
func (q ChatQuery) VisibleTo(userID uuid.UUID) ChatQuery {
	return ChatQuery{s: q.s.where(func(db *gorm.DB) *gorm.DB {
		return db.Where("(chats.created_by_id = ? OR chats.id IN (?))", userID, participantChatIDs(db, userID))
	})}
}

func (q ChatQuery) WithTitle(term string) ChatQuery {
	return ChatQuery{s: q.s.where(func(db *gorm.DB) *gorm.DB {
		return db.Where(`LOWER(chats.title) LIKE ? ESCAPE '\'`, containsPattern(term))
	})}
}

func (q ChatQuery) Recent() ChatQuery {
	return ChatQuery{s: q.s.orderBy("chats.updated_at DESC, chats.id")}
}

func (q ChatQuery) Oldest() ChatQuery {
	return ChatQuery{s: q.s.orderBy("chats.updated_at ASC, chats.id")}
}

func (q ChatQuery) Limit(n int) ChatQuery {
	return ChatQuery{s: q.s.withLimit(n)}
}

func (q ChatQuery) Page(page, limit int) ChatQuery {
	return ChatQuery{s: q.s.page(page, limit)}
}

// WithRelations preloads creator, participants, messages (oldest first) and
// files (newest first) with their users.
func (q ChatQuery) WithRelations() ChatQuery {
	return ChatQuery{s: q.s.preload(func(db *gorm.DB) *gorm.DB {
		return db.
			Preload("CreatedBy").
			Preload("Participants", func(db *gorm.DB) *gorm.DB {
				return db.Order("users.username, users.id")
			}).
			Preload("Messages", func(db *gorm.DB) *gorm.DB {
				return db.Order("messages.created_at ASC, messages.id")
			}).
			Preload("Messages.Sender").
			Preload("Files", func(db *gorm.DB) *gorm.DB {
				return db.Order("files.uploaded_at DESC, files.id")
			}).
			Preload("Files.UploadedBy")
	})}
}

// WithParticipants preloads only the creator and participants.
func (q ChatQuery) WithParticipants() ChatQuery {
	return ChatQuery{s: q.s.preload(func(db *gorm.DB) *gorm.DB {
		return db.Preload("CreatedBy").Preload("Participants", func(db *gorm.DB) *gorm.DB {
			return db.Order("users.username, users.id")
		})
	})}
}

func (q ChatQuery) Find(ctx context.Context) ([]chat.Chat, error) {
	return q.s.find(ctx)
}

// First returns the first match or chatroom_errors.ErrNotFound.
func (q ChatQuery) First(ctx context.Context) (chat.Chat, error) {
	return q.s.first(ctx)
}

func (q ChatQuery) Count(ctx context.Context) (int64, error) {
	return q.s.count(ctx)
}

func (q ChatQuery) Exists(ctx context.Context) (bool, error) {
	n, err := q.Limit(1).Count(ctx)
	return n > 0, err
}

func participantChatIDs(db *gorm.DB, userID uuid.UUID) *gorm.DB {
	return db.Session(&gorm.Session{NewDB: true}).
		Model(&chat.Participant{}).
		Select("chat_id").
		Where("user_id = ?", userID)
}
