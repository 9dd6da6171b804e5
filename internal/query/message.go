package query

import (
	"context"
	"time"

	"chat-rooms/internal/domain/message"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MessageQuery filters messages. The zero ordering is created_at ascending.
type MessageQuery struct {
	s set[message.Message]
}

func Messages(db *gorm.DB) MessageQuery {
	return MessageQuery{s: newSet[message.Message](db, "messages.created_at ASC, messages.id")}
}

func (q MessageQuery) ByID(id uuid.UUID) MessageQuery {
	return MessageQuery{s: q.s.where(func(db *gorm.DB) *gorm.DB {
		return db.Where("messages.id = ?", id)
	})}
}

func (q MessageQuery) ForChat(chatID uuid.UUID) MessageQuery {
	return MessageQuery{s: q.s.where(func(db *gorm.DB) *gorm.DB {
		return db.Where("messages.chat_id = ?", chatID)
	})}
}

func (q MessageQuery) FromUser(userID uuid.UUID) MessageQuery {
	return MessageQuery{s: q.s.where(func(db *gorm.DB) *gorm.DB {
		return db.Where("messages.sender_id = ?", userID)
	})}
}

func (q MessageQuery) WithContext() MessageQuery {
	return MessageQuery{s: q.s.where(func(db *gorm.DB) *gorm.DB {
		return db.Where("messages.context_index IS NOT NULL")
	})}
}

func (q MessageQuery) WithoutContext() MessageQuery {
	return MessageQuery{s: q.s.where(func(db *gorm.DB) *gorm.DB {
		return db.Where("messages.context_index IS NULL")
	})}
}

func (q MessageQuery) ContextIndex(index int) MessageQuery {
	return MessageQuery{s: q.s.where(func(db *gorm.DB) *gorm.DB {
		return db.Where("messages.context_index = ?", index)
	})}
}

// BetweenDates keeps messages created in [start, end].
func (q MessageQuery) BetweenDates(start, end time.Time) MessageQuery {
	return MessageQuery{s: q.s.where(func(db *gorm.DB) *gorm.DB {
		return db.Where("messages.created_at >= ? AND messages.created_at <= ?", start.UTC(), end.UTC())
	})}
}

// VisibleTo keeps messages whose chat lists the user as a participant.
// Being the chat creator is not enough.
func (q MessageQuery) VisibleTo(userID uuid.UUID) MessageQuery {
	return MessageQuery{s: q.s.where(func(db *gorm.DB) *gorm.DB {
		return db.Where("messages.chat_id IN (?)", participantChatIDs(db, userID))
	})}
}

func (q MessageQuery) Recent() MessageQuery {
	return MessageQuery{s: q.s.orderBy("messages.created_at DESC, messages.id")}
}

func (q MessageQuery) Oldest() MessageQuery {
	return MessageQuery{s: q.s.orderBy("messages.created_at ASC, messages.id")}
}

func (q MessageQuery) Limit(n int) MessageQuery {
	return MessageQuery{s: q.s.withLimit(n)}
}

func (q MessageQuery) Page(page, limit int) MessageQuery {
	return MessageQuery{s: q.s.page(page, limit)}
}

func (q MessageQuery) WithSender() MessageQuery {
	return MessageQuery{s: q.s.preload(func(db *gorm.DB) *gorm.DB {
		return db.Preload("Sender")
	})}
}

func (q MessageQuery) Find(ctx context.Context) ([]message.Message, error) {
	return q.s.find(ctx)
}

// First returns the first match or chatroom_errors.ErrNotFound.
func (q MessageQuery) First(ctx context.Context) (message.Message, error) {
	return q.s.first(ctx)
}

func (q MessageQuery) Count(ctx context.Context) (int64, error) {
	return q.s.count(ctx)
}
