package services

import (
	"context"

	"chat-rooms/internal/domain/chat"
	"chat-rooms/internal/repository"

	"github.com/google/uuid"
)

// AccessControl answers whether a requester may see a chat. Chats are
// visible to their creator and participants; messages and files only to
// participants. Both failures read as ErrNotFound so a chat's existence is
// never leaked.
type AccessControl struct {
	chatRepo repository.ChatRepository
}

func NewAccessControl(chatRepo repository.ChatRepository) *AccessControl {
	return &AccessControl{chatRepo: chatRepo}
}

// VisibleChat loads a chat with all relations if userID created it or
// participates in it.
func (a *AccessControl) VisibleChat(ctx context.Context, userID, chatID uuid.UUID) (chat.Chat, error) {
	return a.chatRepo.Query().ByID(chatID).VisibleTo(userID).WithRelations().First(ctx)
}

// ParticipantChat loads a chat only if userID is one of its participants.
func (a *AccessControl) ParticipantChat(ctx context.Context, userID, chatID uuid.UUID) (chat.Chat, error) {
	return a.chatRepo.Query().ByID(chatID).WithParticipant(userID).First(ctx)
}

func (a *AccessControl) EnsureParticipant(ctx context.Context, userID, chatID uuid.UUID) error {
	_, err := a.ParticipantChat(ctx, userID, chatID)
	return err
}
