package repository

import (
	"context"

	"chat-rooms/internal/domain/file"
	"chat-rooms/internal/query"
	chatroom_errors "chat-rooms/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresFileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) FileRepository {
	return &PostgresFileRepository{db: db}
}

func (r *PostgresFileRepository) Query() query.FileQuery {
	return query.Files(r.db)
}

func (r *PostgresFileRepository) Create(ctx context.Context, f *file.File) error {
	res := r.db.WithContext(ctx).Omit(clause.Associations).Create(f)
	return mapWriteError(res.Error)
}

func (r *PostgresFileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&file.File{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return chatroom_errors.ErrNotFound
	}
	return nil
}
