package services

import (
	"context"
	"fmt"
	"strings"

	"chat-rooms/internal/domain/chat"
	"chat-rooms/internal/repository"
	"chat-rooms/internal/storage"
	chatroom_errors "chat-rooms/pkg/errors"
	"chat-rooms/pkg/logger"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
)

type ChatService struct {
	chatRepo repository.ChatRepository
	userRepo repository.UserRepository
	access   *AccessControl
	blobs    storage.BlobStore
	log      *logger.Logger
}

func NewChatService(chatRepo repository.ChatRepository, userRepo repository.UserRepository, access *AccessControl, blobs storage.BlobStore, l *logger.Logger) *ChatService {
	return &ChatService{chatRepo: chatRepo, userRepo: userRepo, access: access, blobs: blobs, log: l}
}

type ChatFilter struct {
	Active      *bool
	Title       string
	CreatedByMe bool
	Page        int
	Limit       int
}

type CreateChatInput struct {
	Title          string
	Prompt         string
	IsActive       *bool
	ParticipantIDs []uuid.UUID
}

// UpdateChatInput carries optional fields. A non-nil ParticipantIDs replaces
// the participant set.
type UpdateChatInput struct {
	Title          *string
	Prompt         *string
	IsActive       *bool
	ParticipantIDs *[]uuid.UUID
}

// List returns the chats visible to userID and the total before paging.
func (s *ChatService) List(ctx context.Context, userID uuid.UUID, f ChatFilter) ([]chat.Chat, int64, error) {
	q := s.chatRepo.Query().VisibleTo(userID)
	if f.Active != nil {
		if *f.Active {
			q = q.Active()
		} else {
			q = q.Inactive()
		}
	}
	if t := strings.TrimSpace(f.Title); t != "" {
		q = q.WithTitle(t)
	}
	if f.CreatedByMe {
		q = q.CreatedByUser(userID)
	}

	total, err := q.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	chats, err := q.Recent().Page(f.Page, f.Limit).WithParticipants().Find(ctx)
	if err != nil {
		return nil, 0, err
	}
	return chats, total, nil
}

func (s *ChatService) Create(ctx context.Context, userID uuid.UUID, in CreateChatInput) (chat.Chat, error) {
	c, err := s.chatRepo.Create(ctx, repository.CreateChatParams{
		Title:        strings.TrimSpace(in.Title),
		Prompt:       in.Prompt,
		CreatedBy:    userID,
		IsActive:     in.IsActive,
		Participants: in.ParticipantIDs,
	})
	if err != nil {
		return chat.Chat{}, err
	}
	s.log.InfoCtx(ctx, "chat created", zap.String("chat_id", c.ID.String()), zap.Int("participants", len(c.Participants)))
	return c, nil
}

func (s *ChatService) Get(ctx context.Context, userID, chatID uuid.UUID) (chat.Chat, error) {
	return s.access.VisibleChat(ctx, userID, chatID)
}

// Recent returns the most recently updated visible chats.
func (s *ChatService) Recent(ctx context.Context, userID uuid.UUID, limit int) ([]chat.Chat, error) {
	if limit <= 0 {
		limit = repository.DefaultRecentChats
	}
	return s.chatRepo.Query().VisibleTo(userID).Recent().Limit(limit).WithParticipants().Find(ctx)
}

func (s *ChatService) Search(ctx context.Context, userID uuid.UUID, term string) ([]chat.Chat, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, fmt.Errorf("%w: query is required", chatroom_errors.ErrInvalidInput)
	}
	return s.chatRepo.Query().VisibleTo(userID).WithTitle(term).Recent().WithParticipants().Find(ctx)
}

func (s *ChatService) Update(ctx context.Context, userID, chatID uuid.UUID, in UpdateChatInput) (chat.Chat, error) {
	if _, err := s.access.VisibleChat(ctx, userID, chatID); err != nil {
		return chat.Chat{}, err
	}
	if in.ParticipantIDs != nil {
		if err := s.chatRepo.SetParticipants(ctx, chatID, *in.ParticipantIDs); err != nil {
			return chat.Chat{}, err
		}
	}
	upd := repository.ChatUpdate{
		Title:    in.Title,
		Prompt:   in.Prompt,
		IsActive: in.IsActive,
	}
	if upd.IsEmpty() {
		return s.chatRepo.GetByID(ctx, chatID)
	}
	return s.chatRepo.UpdateChat(ctx, chatID, upd)
}

// AddParticipant is a no-op when participantID already participates.
func (s *ChatService) AddParticipant(ctx context.Context, userID, chatID, participantID uuid.UUID) error {
	c, err := s.access.VisibleChat(ctx, userID, chatID)
	if err != nil {
		return err
	}
	if _, err := s.userRepo.GetByID(ctx, participantID); err != nil {
		return err
	}
	if c.HasParticipant(participantID) {
		return nil
	}
	return s.chatRepo.AddParticipant(ctx, chatID, participantID)
}

func (s *ChatService) RemoveParticipant(ctx context.Context, userID, chatID, participantID uuid.UUID) error {
	c, err := s.access.VisibleChat(ctx, userID, chatID)
	if err != nil {
		return err
	}
	if _, err := s.userRepo.GetByID(ctx, participantID); err != nil {
		return err
	}
	if !c.HasParticipant(participantID) {
		return nil
	}
	return s.chatRepo.RemoveParticipant(ctx, chatID, participantID)
}

// Delete removes the chat and everything it owns. Blob cleanup happens after
// the rows are gone and only logs failures.
func (s *ChatService) Delete(ctx context.Context, userID, chatID uuid.UUID) error {
	if _, err := s.access.VisibleChat(ctx, userID, chatID); err != nil {
		return err
	}
	out, err := s.chatRepo.DeleteChat(ctx, chatID)
	if err != nil {
		return err
	}
	if !out.Deleted {
		return chatroom_errors.ErrNotFound
	}
	if err := deleteBlobs(ctx, s.blobs, out.StorageKeys); err != nil {
		s.log.WarnCtx(ctx, "failed to delete chat files", zap.String("chat_id", chatID.String()), zap.Error(err))
	}
	s.log.InfoCtx(ctx, "chat deleted", zap.String("chat_id", chatID.String()), zap.Int("files", len(out.StorageKeys)))
	return nil
}

func deleteBlobs(ctx context.Context, blobs storage.BlobStore, keys []string) error {
	var result *multierror.Error
	for _, key := range keys {
		if err := blobs.Delete(ctx, key); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", key, err))
		}
	}
	return result.ErrorOrNil()
}
