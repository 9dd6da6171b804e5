package query

import (
	"context"

	"chat-rooms/internal/domain/file"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FileQuery filters files. The zero ordering is uploaded_at descending.
type FileQuery struct {
	s set[file.File]
}

func Files(db *gorm.DB) FileQuery {
	return FileQuery{s: newSet[file.File](db, "files.uploaded_at DESC, files.id")}
}

func (q FileQuery) ByID(id uuid.UUID) FileQuery {
	return FileQuery{s: q.s.where(func(db *gorm.DB) *gorm.DB {
		return db.Where("files.id = ?", id)
	})}
}

func (q FileQuery) ForChat(chatID uuid.UUID) FileQuery {
	return FileQuery{s: q.s.where(func(db *gorm.DB) *gorm.DB {
		return db.Where("files.chat_id = ?", chatID)
	})}
}

func (q FileQuery) UploadedByUser(userID uuid.UUID) FileQuery {
	return FileQuery{s: q.s.where(func(db *gorm.DB) *gorm.DB {
		return db.Where("files.uploaded_by_id = ?", userID)
	})}
}

func (q FileQuery) ByFileType(fileType string) FileQuery {
	return FileQuery{s: q.s.where(func(db *gorm.DB) *gorm.DB {
		return db.Where("files.file_type = ?", fileType)
	})}
}

func (q FileQuery) WithName(term string) FileQuery {
	return FileQuery{s: q.s.where(func(db *gorm.DB) *gorm.DB {
		return db.Where(`LOWER(files.file_name) LIKE ? ESCAPE '\'`, containsPattern(term))
	})}
}

func (q FileQuery) LargerThan(sizeBytes int64) FileQuery {
	return FileQuery{s: q.s.where(func(db *gorm.DB) *gorm.DB {
		return db.Where("files.file_size > ?", sizeBytes)
	})}
}

func (q FileQuery) SmallerThan(sizeBytes int64) FileQuery {
	return FileQuery{s: q.s.where(func(db *gorm.DB) *gorm.DB {
		return db.Where("files.file_size < ?", sizeBytes)
	})}
}

// VisibleTo keeps files whose chat lists the user as a participant.
func (q FileQuery) VisibleTo(userID uuid.UUID) FileQuery {
	return FileQuery{s: q.s.where(func(db *gorm.DB) *gorm.DB {
		return db.Where("files.chat_id IN (?)", participantChatIDs(db, userID))
	})}
}

func (q FileQuery) Recent() FileQuery {
	return FileQuery{s: q.s.orderBy("files.uploaded_at DESC, files.id")}
}

func (q FileQuery) Oldest() FileQuery {
	return FileQuery{s: q.s.orderBy("files.uploaded_at ASC, files.id")}
}

func (q FileQuery) Limit(n int) FileQuery {
	return FileQuery{s: q.s.withLimit(n)}
}

func (q FileQuery) Page(page, limit int) FileQuery {
	return FileQuery{s: q.s.page(page, limit)}
}

func (q FileQuery) WithUploader() FileQuery {
	return FileQuery{s: q.s.preload(func(db *gorm.DB) *gorm.DB {
		return db.Preload("UploadedBy")
	})}
}

func (q FileQuery) Find(ctx context.Context) ([]file.File, error) {
	return q.s.find(ctx)
}

// First returns the first match or chatroom_errors.ErrNotFound.
func (q FileQuery) First(ctx context.Context) (file.File, error) {
	return q.s.first(ctx)
}

func (q FileQuery) Count(ctx context.Context) (int64, error) {
	return q.s.count(ctx)
}

// StorageKeys returns the stored handles of every match.
func (q FileQuery) StorageKeys(ctx context.Context) ([]string, error) {
	var keys []string
	if err := q.s.base(ctx).Pluck("files.storage_key", &keys).Error; err != nil {
		return nil, err
	}
	return keys, nil
}
