package repository

import (
	"context"

	"github.com/google/uuid"

	"chat-rooms/internal/domain/chat"
	"chat-rooms/internal/domain/file"
	"chat-rooms/internal/domain/message"
	"chat-rooms/internal/domain/user"
	"chat-rooms/internal/query"
)

type UserRepository interface {
	// Upsert inserts the user or refreshes its profile fields.
	Upsert(ctx context.Context, u *user.User) error
	GetByID(ctx context.Context, id uuid.UUID) (user.User, error)
}

type ChatRepository interface {
	Create(ctx context.Context, params CreateChatParams) (chat.Chat, error)
	GetByID(ctx context.Context, id uuid.UUID) (chat.Chat, error)
	GetActiveChats(ctx context.Context) ([]chat.Chat, error)
	GetUserChats(ctx context.Context, userID uuid.UUID) ([]chat.Chat, error)
	GetRecentChats(ctx context.Context, limit int) ([]chat.Chat, error)
	UpdateChat(ctx context.Context, id uuid.UUID, upd ChatUpdate) (chat.Chat, error)
	AddParticipant(ctx context.Context, chatID, userID uuid.UUID) error
	RemoveParticipant(ctx context.Context, chatID, userID uuid.UUID) error
	SetParticipants(ctx context.Context, chatID uuid.UUID, userIDs []uuid.UUID) error
	DeleteChat(ctx context.Context, id uuid.UUID) (DeletedChat, error)
	SearchChats(ctx context.Context, term string) ([]chat.Chat, error)

	Query() query.ChatQuery
}

type MessageRepository interface {
	Create(ctx context.Context, m *message.Message) error
	Update(ctx context.Context, id uuid.UUID, upd MessageUpdate) (message.Message, error)
	Delete(ctx context.Context, id uuid.UUID) error

	Query() query.MessageQuery
}

type FileRepository interface {
	Create(ctx context.Context, f *file.File) error
	Delete(ctx context.Context, id uuid.UUID) error

	Query() query.FileQuery
}

// CreateChatParams is the input of ChatRepository.Create. IsActive defaults
// to true when nil.
type CreateChatParams struct {
	Title        string      `validate:"max=255"`
	Prompt       string
	CreatedBy    uuid.UUID   `validate:"required"`
	IsActive     *bool
	Participants []uuid.UUID `validate:"dive,required"`
}

// ChatUpdate holds the fields to change; nil fields are left untouched.
type ChatUpdate struct {
	Title    *string `validate:"omitnil,max=255"`
	Prompt   *string
	IsActive *bool
}

func (u ChatUpdate) IsEmpty() bool {
	return u.Title == nil && u.Prompt == nil && u.IsActive == nil
}

type MessageUpdate struct {
	Content      *string `validate:"omitnil,min=1"`
	ContextIndex *int    `validate:"omitnil,min=0"`
	ClearContext bool
}

// DeletedChat reports the outcome of ChatRepository.DeleteChat.
type DeletedChat struct {
	Deleted     bool
	StorageKeys []string
}
