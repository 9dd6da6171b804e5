package services

import (
	"context"
	"fmt"
	"io"

	"chat-rooms/internal/domain/file"
	"chat-rooms/internal/query"
	"chat-rooms/internal/repository"
	"chat-rooms/internal/storage"
	chatroom_errors "chat-rooms/pkg/errors"
	"chat-rooms/pkg/logger"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type FileService struct {
	fileRepo repository.FileRepository
	access   *AccessControl
	blobs    storage.BlobStore
	maxBytes int64
	log      *logger.Logger
}

func NewFileService(fileRepo repository.FileRepository, access *AccessControl, blobs storage.BlobStore, maxBytes int64, l *logger.Logger) *FileService {
	return &FileService{fileRepo: fileRepo, access: access, blobs: blobs, maxBytes: maxBytes, log: l}
}

type FileFilter struct {
	FileType    string
	Name        string
	LargerThan  *int64
	SmallerThan *int64
	UploadedBy  *uuid.UUID
	Order       string
	Page        int
	Limit       int
}

// UploadInput is an uploaded body. Content must be seekable so the type can
// be sniffed before the bytes are stored.
type UploadInput struct {
	FileName string
	Content  io.ReadSeeker
	Size     int64
}

func (s *FileService) visible(userID, chatID uuid.UUID) query.FileQuery {
	return s.fileRepo.Query().VisibleTo(userID).ForChat(chatID)
}

func (s *FileService) List(ctx context.Context, userID, chatID uuid.UUID, f FileFilter) ([]file.File, int64, error) {
	q := s.visible(userID, chatID)
	if f.FileType != "" {
		q = q.ByFileType(f.FileType)
	}
	if f.Name != "" {
		q = q.WithName(f.Name)
	}
	if f.LargerThan != nil {
		q = q.LargerThan(*f.LargerThan)
	}
	if f.SmallerThan != nil {
		q = q.SmallerThan(*f.SmallerThan)
	}
	if f.UploadedBy != nil {
		q = q.UploadedByUser(*f.UploadedBy)
	}
	switch f.Order {
	case "", "recent":
		q = q.Recent()
	case "oldest":
		q = q.Oldest()
	default:
		return nil, 0, fmt.Errorf("%w: order must be recent or oldest", chatroom_errors.ErrInvalidInput)
	}

	total, err := q.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	files, err := q.Page(f.Page, f.Limit).WithUploader().Find(ctx)
	if err != nil {
		return nil, 0, err
	}
	return files, total, nil
}

// Upload stores the bytes and records the file. Name, type and size are
// taken from the stored blob, never from the client.
func (s *FileService) Upload(ctx context.Context, userID, chatID uuid.UUID, in UploadInput) (file.File, error) {
	if in.Content == nil {
		return file.File{}, fmt.Errorf("%w: file is required", chatroom_errors.ErrInvalidInput)
	}
	if s.maxBytes > 0 && in.Size > s.maxBytes {
		return file.File{}, chatroom_errors.ErrTooLarge
	}
	if err := s.access.EnsureParticipant(ctx, userID, chatID); err != nil {
		return file.File{}, err
	}

	mt, err := mimetype.DetectReader(in.Content)
	if err != nil {
		return file.File{}, fmt.Errorf("%w: %v", chatroom_errors.ErrInvalidInput, err)
	}
	if _, err := in.Content.Seek(0, io.SeekStart); err != nil {
		return file.File{}, err
	}

	f := file.File{ID: uuid.New(), ChatID: chatID, UploadedByID: userID}
	f.StorageKey = file.ObjectKey(chatID, f.ID, in.FileName)

	info, err := s.blobs.Put(ctx, f.StorageKey, in.Content, in.Size, mt.String())
	if err != nil {
		return file.File{}, fmt.Errorf("%w: %v", chatroom_errors.ErrStorage, err)
	}
	f.FileName = file.NameFromKey(f.StorageKey)
	f.FileType = info.ContentType
	if f.FileType == "" {
		f.FileType = mt.String()
	}
	f.FileSize = info.Size

	if err := s.fileRepo.Create(ctx, &f); err != nil {
		if derr := s.blobs.Delete(ctx, f.StorageKey); derr != nil {
			s.log.WarnCtx(ctx, "failed to remove orphaned blob", zap.String("key", f.StorageKey), zap.Error(derr))
		}
		return file.File{}, err
	}
	s.log.InfoCtx(ctx, "file uploaded",
		zap.String("chat_id", chatID.String()),
		zap.String("file_id", f.ID.String()),
		zap.String("file_type", f.FileType),
		zap.Int64("file_size", f.FileSize),
	)
	return s.fileRepo.Query().ByID(f.ID).WithUploader().First(ctx)
}

func (s *FileService) Get(ctx context.Context, userID, chatID, fileID uuid.UUID) (file.File, error) {
	return s.visible(userID, chatID).ByID(fileID).WithUploader().First(ctx)
}

func (s *FileService) Delete(ctx context.Context, userID, chatID, fileID uuid.UUID) error {
	f, err := s.Get(ctx, userID, chatID, fileID)
	if err != nil {
		return err
	}
	if err := s.fileRepo.Delete(ctx, f.ID); err != nil {
		return err
	}
	if err := deleteBlobs(ctx, s.blobs, []string{f.StorageKey}); err != nil {
		s.log.WarnCtx(ctx, "failed to delete file blob", zap.String("file_id", f.ID.String()), zap.Error(err))
	}
	return nil
}

// Download opens the stored bytes of a visible file. Any blob failure is
// reported as ErrStorage.
func (s *FileService) Download(ctx context.Context, userID, chatID, fileID uuid.UUID) (file.File, io.ReadCloser, storage.ObjectInfo, error) {
	f, err := s.Get(ctx, userID, chatID, fileID)
	if err != nil {
		return file.File{}, nil, storage.ObjectInfo{}, err
	}
	body, info, err := s.blobs.Get(ctx, f.StorageKey)
	if err != nil {
		return file.File{}, nil, storage.ObjectInfo{}, fmt.Errorf("%w: %v", chatroom_errors.ErrStorage, err)
	}
	return f, body, info, nil
}
