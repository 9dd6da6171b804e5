package chat

import (
	"time"

	"chat-rooms/internal/domain/file"
	"chat-rooms/internal/domain/message"
	"chat-rooms/internal/domain/user"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Chat represents the chats table.
// CreatedBy is not implicitly a participant; visibility is the union of both.
type Chat struct {
	ID           uuid.UUID         `gorm:"type:uuid;primaryKey"`
	Title        string            `gorm:"size:255"`
	Prompt       string            `gorm:"type:text;not null"`
	IsActive     bool              `gorm:"not null;index"`
	CreatedByID  uuid.UUID         `gorm:"type:uuid;not null;index"`
	CreatedBy    user.User         `gorm:"foreignKey:CreatedByID;constraint:OnDelete:CASCADE"`
	Participants []user.User       `gorm:"many2many:chat_participants;constraint:OnDelete:CASCADE"`
	Messages     []message.Message `gorm:"foreignKey:ChatID;constraint:OnDelete:CASCADE"`
	Files        []file.File       `gorm:"foreignKey:ChatID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time
	UpdatedAt    time.Time `gorm:"index"`
}

// Participant represents the chat_participants join table
type Participant struct {
	ChatID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID   uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	JoinedAt time.Time `gorm:"autoCreateTime"`
}

func (Chat) TableName() string {
	return "chats"
}

func (Participant) TableName() string {
	return "chat_participants"
}

func (c *Chat) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// DisplayTitle falls back to the id when the chat has no title.
func (c Chat) DisplayTitle() string {
	if c.Title != "" {
		return c.Title
	}
	return "Chat " + c.ID.String()
}

// HasParticipant reports whether userID is in the loaded participant set.
func (c Chat) HasParticipant(userID uuid.UUID) bool {
	for _, p := range c.Participants {
		if p.ID == userID {
			return true
		}
	}
	return false
}

// ParticipantIDs returns the ids of the loaded participants.
func (c Chat) ParticipantIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(c.Participants))
	for i, p := range c.Participants {
		ids[i] = p.ID
	}
	return ids
}
