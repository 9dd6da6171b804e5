package repository

import (
	"context"
	"fmt"

	"chat-rooms/internal/domain/chat"
	"chat-rooms/internal/domain/file"
	"chat-rooms/internal/domain/message"
	"chat-rooms/internal/domain/user"
	"chat-rooms/internal/query"
	chatroom_errors "chat-rooms/pkg/errors"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const DefaultRecentChats = 10

type PostgresChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &PostgresChatRepository{db: db}
}

func (r *PostgresChatRepository) Query() query.ChatQuery {
	return query.Chats(r.db)
}

func (r *PostgresChatRepository) Create(ctx context.Context, params CreateChatParams) (chat.Chat, error) {
	if err := validateStruct(params); err != nil {
		return chat.Chat{}, err
	}

	c := chat.Chat{
		Title:       params.Title,
		Prompt:      params.Prompt,
		IsActive:    lo.FromPtrOr(params.IsActive, true),
		CreatedByID: params.CreatedBy,
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&c).Error; err != nil {
			return mapWriteError(err)
		}
		return insertParticipants(tx, c.ID, params.Participants)
	})
	if err != nil {
		return chat.Chat{}, err
	}
	return r.GetByID(ctx, c.ID)
}

// GetByID loads the chat with its users, messages and files. A missing id
// yields chatroom_errors.ErrNotFound.
func (r *PostgresChatRepository) GetByID(ctx context.Context, id uuid.UUID) (chat.Chat, error) {
	return query.Chats(r.db).ByID(id).WithRelations().First(ctx)
}

func (r *PostgresChatRepository) GetActiveChats(ctx context.Context) ([]chat.Chat, error) {
	return query.Chats(r.db).Active().WithParticipants().Find(ctx)
}

// GetUserChats returns chats the user created or participates in, once each.
func (r *PostgresChatRepository) GetUserChats(ctx context.Context, userID uuid.UUID) ([]chat.Chat, error) {
	return query.Chats(r.db).VisibleTo(userID).WithParticipants().Find(ctx)
}

func (r *PostgresChatRepository) GetRecentChats(ctx context.Context, limit int) ([]chat.Chat, error) {
	if limit <= 0 {
		limit = DefaultRecentChats
	}
	return query.Chats(r.db).Recent().Limit(limit).WithParticipants().Find(ctx)
}

// UpdateChat writes the present fields and updated_at in one statement.
func (r *PostgresChatRepository) UpdateChat(ctx context.Context, id uuid.UUID, upd ChatUpdate) (chat.Chat, error) {
	if err := validateStruct(upd); err != nil {
		return chat.Chat{}, err
	}

	updates := map[string]any{"updated_at": now(r.db)}
	if upd.Title != nil {
		updates["title"] = *upd.Title
	}
	if upd.Prompt != nil {
		updates["prompt"] = *upd.Prompt
	}
	if upd.IsActive != nil {
		updates["is_active"] = *upd.IsActive
	}

	res := r.db.WithContext(ctx).Model(&chat.Chat{}).Where("id = ?", id).UpdateColumns(updates)
	if res.Error != nil {
		return chat.Chat{}, res.Error
	}
	if res.RowsAffected == 0 {
		return chat.Chat{}, chatroom_errors.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// AddParticipant is a no-op for an existing participant.
func (r *PostgresChatRepository) AddParticipant(ctx context.Context, chatID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := touchChat(tx, chatID); err != nil {
			return err
		}
		return insertParticipants(tx, chatID, []uuid.UUID{userID})
	})
}

// RemoveParticipant is a no-op for a user who is not a participant.
func (r *PostgresChatRepository) RemoveParticipant(ctx context.Context, chatID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := touchChat(tx, chatID); err != nil {
			return err
		}
		return tx.Where("chat_id = ? AND user_id = ?", chatID, userID).Delete(&chat.Participant{}).Error
	})
}

// SetParticipants replaces the participant set.
func (r *PostgresChatRepository) SetParticipants(ctx context.Context, chatID uuid.UUID, userIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := touchChat(tx, chatID); err != nil {
			return err
		}
		if err := tx.Where("chat_id = ?", chatID).Delete(&chat.Participant{}).Error; err != nil {
			return err
		}
		return insertParticipants(tx, chatID, userIDs)
	})
}

// DeleteChat removes the chat with its files, messages and participant rows.
// The returned storage keys belong to the deleted files; a missing chat is
// reported as Deleted=false without an error.
func (r *PostgresChatRepository) DeleteChat(ctx context.Context, id uuid.UUID) (DeletedChat, error) {
	var out DeletedChat
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var keys []string
		if err := tx.Model(&file.File{}).Where("chat_id = ?", id).Pluck("storage_key", &keys).Error; err != nil {
			return err
		}
		if err := tx.Where("chat_id = ?", id).Delete(&file.File{}).Error; err != nil {
			return err
		}
		if err := tx.Where("chat_id = ?", id).Delete(&message.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("chat_id = ?", id).Delete(&chat.Participant{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&chat.Chat{})
		if res.Error != nil {
			return res.Error
		}
		out = DeletedChat{Deleted: res.RowsAffected > 0, StorageKeys: keys}
		return nil
	})
	if err != nil {
		return DeletedChat{}, err
	}
	return out, nil
}

func (r *PostgresChatRepository) SearchChats(ctx context.Context, term string) ([]chat.Chat, error) {
	return query.Chats(r.db).WithTitle(term).WithParticipants().Find(ctx)
}

// touchChat bumps updated_at and reports a missing chat as ErrNotFound.
func touchChat(tx *gorm.DB, chatID uuid.UUID) error {
	res := tx.Model(&chat.Chat{}).Where("id = ?", chatID).UpdateColumn("updated_at", now(tx))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return chatroom_errors.ErrNotFound
	}
	return nil
}

func insertParticipants(tx *gorm.DB, chatID uuid.UUID, userIDs []uuid.UUID) error {
	userIDs = lo.Uniq(userIDs)
	if len(userIDs) == 0 {
		return nil
	}
	var found int64
	if err := tx.Model(&user.User{}).Where("id IN ?", userIDs).Count(&found).Error; err != nil {
		return err
	}
	if found != int64(len(userIDs)) {
		return fmt.Errorf("%w: unknown user", chatroom_errors.ErrNotFound)
	}
	rows := lo.Map(userIDs, func(id uuid.UUID, _ int) chat.Participant {
		return chat.Participant{ChatID: chatID, UserID: id}
	})
	err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
	return mapWriteError(err)
}
