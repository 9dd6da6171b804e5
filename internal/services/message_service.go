package services

import (
	"context"
	"fmt"
	"time"

	"chat-rooms/internal/domain/message"
	"chat-rooms/internal/query"
	"chat-rooms/internal/repository"
	chatroom_errors "chat-rooms/pkg/errors"
	"chat-rooms/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type MessageService struct {
	messageRepo repository.MessageRepository
	access      *AccessControl
	log         *logger.Logger
}

func NewMessageService(messageRepo repository.MessageRepository, access *AccessControl, l *logger.Logger) *MessageService {
	return &MessageService{messageRepo: messageRepo, access: access, log: l}
}

type MessageFilter struct {
	FromUser   *uuid.UUID
	HasContext *bool
	Start      *time.Time
	End        *time.Time
	Order      string
	Page       int
	Limit      int
}

type CreateMessageInput struct {
	Content      string
	ContextIndex *int
}

// visible scopes messages to chatID and to chats userID participates in.
func (s *MessageService) visible(userID, chatID uuid.UUID) query.MessageQuery {
	return s.messageRepo.Query().VisibleTo(userID).ForChat(chatID)
}

// List returns the chat's messages visible to userID and the total before
// paging. A chat the user cannot see simply has no visible messages.
func (s *MessageService) List(ctx context.Context, userID, chatID uuid.UUID, f MessageFilter) ([]message.Message, int64, error) {
	q := s.visible(userID, chatID)
	if f.FromUser != nil {
		q = q.FromUser(*f.FromUser)
	}
	if f.HasContext != nil {
		if *f.HasContext {
			q = q.WithContext()
		} else {
			q = q.WithoutContext()
		}
	}
	if f.Start != nil || f.End != nil {
		start, end := time.Time{}, time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)
		if f.Start != nil {
			start = *f.Start
		}
		if f.End != nil {
			end = *f.End
		}
		if end.Before(start) {
			return nil, 0, fmt.Errorf("%w: end is before start", chatroom_errors.ErrInvalidInput)
		}
		q = q.BetweenDates(start, end)
	}
	switch f.Order {
	case "", "oldest":
		q = q.Oldest()
	case "recent":
		q = q.Recent()
	default:
		return nil, 0, fmt.Errorf("%w: order must be recent or oldest", chatroom_errors.ErrInvalidInput)
	}

	total, err := q.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	msgs, err := q.Page(f.Page, f.Limit).WithSender().Find(ctx)
	if err != nil {
		return nil, 0, err
	}
	return msgs, total, nil
}

// Create posts a message as userID, who must participate in the chat.
func (s *MessageService) Create(ctx context.Context, userID, chatID uuid.UUID, in CreateMessageInput) (message.Message, error) {
	if err := s.access.EnsureParticipant(ctx, userID, chatID); err != nil {
		return message.Message{}, err
	}
	m := message.Message{
		ChatID:       chatID,
		SenderID:     userID,
		Content:      in.Content,
		ContextIndex: in.ContextIndex,
	}
	if err := s.messageRepo.Create(ctx, &m); err != nil {
		return message.Message{}, err
	}
	s.log.InfoCtx(ctx, "message created", zap.String("chat_id", chatID.String()), zap.String("message_id", m.ID.String()))
	return s.messageRepo.Query().ByID(m.ID).WithSender().First(ctx)
}

func (s *MessageService) Get(ctx context.Context, userID, chatID, messageID uuid.UUID) (message.Message, error) {
	return s.visible(userID, chatID).ByID(messageID).WithSender().First(ctx)
}

func (s *MessageService) Update(ctx context.Context, userID, chatID, messageID uuid.UUID, upd repository.MessageUpdate) (message.Message, error) {
	if _, err := s.Get(ctx, userID, chatID, messageID); err != nil {
		return message.Message{}, err
	}
	return s.messageRepo.Update(ctx, messageID, upd)
}

func (s *MessageService) Delete(ctx context.Context, userID, chatID, messageID uuid.UUID) error {
	if _, err := s.Get(ctx, userID, chatID, messageID); err != nil {
		return err
	}
	return s.messageRepo.Delete(ctx, messageID)
}

// ByContext returns the visible messages of the chat tagged with index.
func (s *MessageService) ByContext(ctx context.Context, userID, chatID uuid.UUID, index int) ([]message.Message, error) {
	return s.visible(userID, chatID).ContextIndex(index).WithSender().Find(ctx)
}
