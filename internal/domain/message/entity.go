package message

import (
	"time"

	"chat-rooms/internal/domain/user"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message represents the messages table
type Message struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	ChatID       uuid.UUID `gorm:"type:uuid;not null;index"`
	Content      string    `gorm:"type:text;not null"`
	SenderID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Sender       user.User `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE"`
	ContextIndex *int      `gorm:"index"`
	CreatedAt    time.Time `gorm:"index"`
	UpdatedAt    time.Time
}

func (Message) TableName() string {
	return "messages"
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// HasContext reports whether the message carries a context index.
func (m Message) HasContext() bool {
	return m.ContextIndex != nil
}
