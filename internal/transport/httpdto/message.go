package httpdto

import (
	"time"

	"chat-rooms/internal/domain/message"

	"github.com/samber/lo"
)

// CreateMessageRequest is used for POST /chats/:id/messages. chat_id is
// optional and must match the path when sent.
type CreateMessageRequest struct {
	ChatID       string `json:"chat_id" binding:"omitempty,anyuuid"`
	Content      string `json:"content" binding:"required"`
	ContextIndex *int   `json:"context_index" binding:"omitnil,min=0"`
}

// UpdateMessageRequest is used for PUT and PATCH /chats/:id/messages/:message_id.
// An explicit null context_index clears it.
type UpdateMessageRequest struct {
	Content      *string `json:"content" binding:"omitnil,min=1"`
	ContextIndex *int    `json:"context_index" binding:"omitnil,min=0"`
}

// ListMessagesRequest holds query parameters for GET /chats/:id/messages
type ListMessagesRequest struct {
	FromUser   string     `form:"from_user" binding:"omitempty,anyuuid"`
	HasContext *bool      `form:"has_context"`
	Start      *time.Time `form:"start" time_format:"2006-01-02T15:04:05Z07:00"`
	End        *time.Time `form:"end" time_format:"2006-01-02T15:04:05Z07:00"`
	Order      string     `form:"order" binding:"omitempty,oneof=recent oldest"`
	Page       int        `form:"page" binding:"min=0"`
	Limit      int        `form:"limit" binding:"min=0"`
}

type MessageResponse struct {
	ID           string        `json:"id"`
	ChatID       string        `json:"chat_id"`
	Content      string        `json:"content"`
	Sender       *UserResponse `json:"sender,omitempty"`
	ContextIndex *int          `json:"context_index"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

func NewMessageResponse(m message.Message) MessageResponse {
	resp := MessageResponse{
		ID:           m.ID.String(),
		ChatID:       m.ChatID.String(),
		Content:      m.Content,
		ContextIndex: m.ContextIndex,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
	if m.Sender.ID == m.SenderID {
		resp.Sender = lo.ToPtr(NewUserResponse(m.Sender))
	}
	return resp
}

func NewMessageResponses(msgs []message.Message) []MessageResponse {
	return lo.Map(msgs, func(m message.Message, _ int) MessageResponse {
		return NewMessageResponse(m)
	})
}
