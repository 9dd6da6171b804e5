package httpdto

import (
	"time"

	"chat-rooms/internal/domain/chat"
	"chat-rooms/internal/domain/file"
	"chat-rooms/internal/domain/message"
	"chat-rooms/internal/domain/user"

	"github.com/samber/lo"
)

// CreateChatRequest is used for POST /chats
type CreateChatRequest struct {
	Title          string   `json:"title" binding:"max=255"`
	Prompt         string   `json:"prompt"`
	IsActive       *bool    `json:"is_active"`
	ParticipantIDs []string `json:"participant_ids" binding:"omitempty,dive,anyuuid"`
}

// UpdateChatRequest is used for PUT and PATCH /chats/:id. Absent fields are
// left unchanged; participant_ids replaces the set when present.
type UpdateChatRequest struct {
	Title          *string   `json:"title" binding:"omitnil,max=255"`
	Prompt         *string   `json:"prompt"`
	IsActive       *bool     `json:"is_active"`
	ParticipantIDs *[]string `json:"participant_ids" binding:"omitnil,dive,anyuuid"`
}

// ListChatsRequest holds query parameters for GET /chats
type ListChatsRequest struct {
	Active      *bool  `form:"active"`
	Title       string `form:"title"`
	CreatedByMe bool   `form:"created_by_me"`
	Page        int    `form:"page" binding:"min=0"`
	Limit       int    `form:"limit" binding:"min=0"`
}

type ChatResponse struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	Prompt       string            `json:"prompt"`
	IsActive     bool              `json:"is_active"`
	CreatedBy    UserResponse      `json:"created_by"`
	Participants []UserResponse    `json:"participants"`
	Messages     []MessageResponse `json:"messages"`
	Files        []FileResponse    `json:"files"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

func NewChatResponse(c chat.Chat) ChatResponse {
	return ChatResponse{
		ID:        c.ID.String(),
		Title:     c.Title,
		Prompt:    c.Prompt,
		IsActive:  c.IsActive,
		CreatedBy: NewUserResponse(c.CreatedBy),
		Participants: lo.Map(c.Participants, func(u user.User, _ int) UserResponse {
			return NewUserResponse(u)
		}),
		Messages: lo.Map(c.Messages, func(m message.Message, _ int) MessageResponse {
			return NewMessageResponse(m)
		}),
		Files: lo.Map(c.Files, func(f file.File, _ int) FileResponse {
			return NewFileResponse(f)
		}),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func NewChatResponses(chats []chat.Chat) []ChatResponse {
	return lo.Map(chats, func(c chat.Chat, _ int) ChatResponse {
		return NewChatResponse(c)
	})
}

// Paginated wraps a page of items with the unpaged total.
type Paginated[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

func NewPaginated[T any](items []T, total int64, page, limit int) Paginated[T] {
	if items == nil {
		items = []T{}
	}
	return Paginated[T]{Items: items, Total: total, Page: max(page, 1), Limit: limit}
}
