package file

import (
	"fmt"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"chat-rooms/internal/domain/user"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// File represents an attachment whose bytes live in the blob store.
// FileName, FileType and FileSize are derived from the stored blob.
type File struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	ChatID       uuid.UUID `gorm:"type:uuid;not null;index"`
	StorageKey   string    `gorm:"size:1024;not null"`
	FileName     string    `gorm:"size:500;not null"`
	FileType     string    `gorm:"size:100;not null"`
	FileSize     int64     `gorm:"not null"`
	UploadedByID uuid.UUID `gorm:"type:uuid;not null;index"`
	UploadedBy   user.User `gorm:"foreignKey:UploadedByID;constraint:OnDelete:CASCADE"`
	UploadedAt   time.Time `gorm:"autoCreateTime;index"`
}

func (File) TableName() string {
	return "files"
}

func (f *File) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// ObjectKey builds the blob key for an upload: chat_files/{chat}/{file}/{name}.
func ObjectKey(chatID, fileID uuid.UUID, fileName string) string {
	return fmt.Sprintf("chat_files/%s/%s/%s", chatID, fileID, SanitizeName(fileName))
}

// SanitizeName reduces a client supplied name to a safe basename.
func SanitizeName(name string) string {
	base := path.Base(path.Clean("/" + strings.ReplaceAll(name, "\\", "/")))
	if base == "/" || base == "." || base == "" {
		return "upload"
	}
	if len(base) > 255 {
		ext := path.Ext(base)
		if len(ext) > 16 {
			ext = ""
		}
		n := 255 - len(ext)
		for n > 0 && !utf8.RuneStart(base[n]) {
			n--
		}
		base = base[:n] + ext
	}
	return base
}

// NameFromKey returns the basename of a stored handle.
func NameFromKey(key string) string {
	return path.Base(key)
}
