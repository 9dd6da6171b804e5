package repository

import (
	"context"
	"fmt"
	"strings"

	"chat-rooms/internal/domain/message"
	"chat-rooms/internal/query"
	chatroom_errors "chat-rooms/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &PostgresMessageRepository{db: db}
}

func (r *PostgresMessageRepository) Query() query.MessageQuery {
	return query.Messages(r.db)
}

func (r *PostgresMessageRepository) Create(ctx context.Context, m *message.Message) error {
	if strings.TrimSpace(m.Content) == "" {
		return fmt.Errorf("%w: content is required", chatroom_errors.ErrInvalidInput)
	}
	if m.ContextIndex != nil && *m.ContextIndex < 0 {
		return fmt.Errorf("%w: context_index must be non-negative", chatroom_errors.ErrInvalidInput)
	}
	res := r.db.WithContext(ctx).Omit(clause.Associations).Create(m)
	return mapWriteError(res.Error)
}

func (r *PostgresMessageRepository) Update(ctx context.Context, id uuid.UUID, upd MessageUpdate) (message.Message, error) {
	if err := validateStruct(upd); err != nil {
		return message.Message{}, err
	}
	if upd.Content != nil && strings.TrimSpace(*upd.Content) == "" {
		return message.Message{}, fmt.Errorf("%w: content is required", chatroom_errors.ErrInvalidInput)
	}

	updates := map[string]any{"updated_at": now(r.db)}
	if upd.Content != nil {
		updates["content"] = *upd.Content
	}
	switch {
	case upd.ClearContext:
		updates["context_index"] = gorm.Expr("NULL")
	case upd.ContextIndex != nil:
		updates["context_index"] = *upd.ContextIndex
	}

	res := r.db.WithContext(ctx).Model(&message.Message{}).Where("id = ?", id).UpdateColumns(updates)
	if res.Error != nil {
		return message.Message{}, res.Error
	}
	if res.RowsAffected == 0 {
		return message.Message{}, chatroom_errors.ErrNotFound
	}
	return query.Messages(r.db).ByID(id).WithSender().First(ctx)
}

func (r *PostgresMessageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&message.Message{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return chatroom_errors.ErrNotFound
	}
	return nil
}
