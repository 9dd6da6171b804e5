package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"chat-rooms/config"
	"chat-rooms/internal/domain/user"
	"chat-rooms/internal/repository"
	"chat-rooms/internal/storage"
	"chat-rooms/internal/storage/mocks"
	"chat-rooms/pkg/database/databasetest"
	chatroom_errors "chat-rooms/pkg/errors"
	"chat-rooms/pkg/logger"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	blobs    *mocks.MockBlobStore
	users    repository.UserRepository
	chats    *ChatService
	messages *MessageService
	files    *FileService
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	db := databasetest.New(t)
	blobs := mocks.NewMockBlobStore(ctrl)
	l := logger.Nop()

	chatRepo := repository.NewChatRepository(db)
	userRepo := repository.NewUserRepository(db)
	access := NewAccessControl(chatRepo)
	return fixture{
		db:       db,
		blobs:    blobs,
		users:    userRepo,
		chats:    NewChatService(chatRepo, userRepo, access, blobs, l),
		messages: NewMessageService(repository.NewMessageRepository(db), access, l),
		files:    NewFileService(repository.NewFileRepository(db), access, blobs, 1<<20, l),
	}
}

func TestChatService_Visibility(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	u1 := databasetest.User(t, fx.db, "u1")
	u2 := databasetest.User(t, fx.db, "u2")
	u3 := databasetest.User(t, fx.db, "u3")

	c, err := fx.chats.Create(ctx, u1.ID, CreateChatInput{Title: "Sprint Planning"})
	require.NoError(t, err)

	t.Run("should show an added participant the chat and hide it from others", func(t *testing.T) {
		req := require.New(t)
		req.NoError(fx.chats.AddParticipant(ctx, u1.ID, c.ID, u2.ID))

		chats, total, err := fx.chats.List(ctx, u2.ID, ChatFilter{})
		req.NoError(err)
		req.EqualValues(1, total)
		req.Equal(c.ID, chats[0].ID)

		_, err = fx.chats.Get(ctx, u3.ID, c.ID)
		req.ErrorIs(err, chatroom_errors.ErrNotFound)
	})

	t.Run("should let the creator see the chat without being a participant", func(t *testing.T) {
		req := require.New(t)
		got, err := fx.chats.Get(ctx, u1.ID, c.ID)
		req.NoError(err)
		req.False(got.HasParticipant(u1.ID))
	})

	t.Run("should hide participant management from outsiders", func(t *testing.T) {
		req := require.New(t)
		req.ErrorIs(fx.chats.AddParticipant(ctx, u3.ID, c.ID, u3.ID), chatroom_errors.ErrNotFound)
		req.ErrorIs(fx.chats.AddParticipant(ctx, u1.ID, c.ID, uuid.New()), chatroom_errors.ErrNotFound)
		req.ErrorIs(fx.chats.RemoveParticipant(ctx, u1.ID, uuid.New(), u2.ID), chatroom_errors.ErrNotFound)
	})

	t.Run("should leave the chat untouched for redundant participant changes", func(t *testing.T) {
		req := require.New(t)
		before, err := fx.chats.Get(ctx, u1.ID, c.ID)
		req.NoError(err)

		req.NoError(fx.chats.AddParticipant(ctx, u1.ID, c.ID, u2.ID))
		req.NoError(fx.chats.RemoveParticipant(ctx, u1.ID, c.ID, u3.ID))

		after, err := fx.chats.Get(ctx, u1.ID, c.ID)
		req.NoError(err)
		req.True(before.UpdatedAt.Equal(after.UpdatedAt))
		req.Equal([]uuid.UUID{u2.ID}, after.ParticipantIDs())

		same, err := fx.chats.Update(ctx, u1.ID, c.ID, UpdateChatInput{})
		req.NoError(err)
		req.True(before.UpdatedAt.Equal(same.UpdatedAt))
		req.Equal("Sprint Planning", same.Title)
	})

	t.Run("should filter the list", func(t *testing.T) {
		req := require.New(t)
		_, err := fx.chats.Create(ctx, u2.ID, CreateChatInput{Title: "Backlog", IsActive: lo.ToPtr(false)})
		req.NoError(err)

		mine, _, err := fx.chats.List(ctx, u2.ID, ChatFilter{CreatedByMe: true})
		req.NoError(err)
		req.Len(mine, 1)
		req.Equal("Backlog", mine[0].Title)

		active, _, err := fx.chats.List(ctx, u2.ID, ChatFilter{Active: lo.ToPtr(true)})
		req.NoError(err)
		req.Len(active, 1)
		req.Equal(c.ID, active[0].ID)

		found, err := fx.chats.Search(ctx, u2.ID, "sprint")
		req.NoError(err)
		req.Len(found, 1)

		_, err = fx.chats.Search(ctx, u2.ID, "  ")
		req.ErrorIs(err, chatroom_errors.ErrInvalidInput)
	})

	t.Run("should replace participants on update", func(t *testing.T) {
		req := require.New(t)
		got, err := fx.chats.Update(ctx, u1.ID, c.ID, UpdateChatInput{
			Prompt:         lo.ToPtr("plan the sprint"),
			ParticipantIDs: &[]uuid.UUID{u3.ID},
		})
		req.NoError(err)
		req.Equal("Sprint Planning", got.Title)
		req.Equal("plan the sprint", got.Prompt)
		req.Equal([]uuid.UUID{u3.ID}, got.ParticipantIDs())

		_, err = fx.chats.Get(ctx, u2.ID, c.ID)
		req.ErrorIs(err, chatroom_errors.ErrNotFound)
	})
}

func TestChatService_Delete(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	u1 := databasetest.User(t, fx.db, "u1")
	u2 := databasetest.User(t, fx.db, "u2")

	c, err := fx.chats.Create(ctx, u1.ID, CreateChatInput{Title: "Shared", ParticipantIDs: []uuid.UUID{u1.ID}})
	require.NoError(t, err)

	fx.blobs.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, key string, r io.Reader, _ int64, ct string) (storage.ObjectInfo, error) {
			b, _ := io.ReadAll(r)
			return storage.ObjectInfo{Key: key, Size: int64(len(b)), ContentType: ct}, nil
		}).Times(2)
	for _, name := range []string{"a.txt", "b.txt"} {
		_, err := fx.files.Upload(ctx, u1.ID, c.ID, UploadInput{FileName: name, Content: strings.NewReader("hello"), Size: 5})
		require.NoError(t, err)
	}
	_, err = fx.messages.Create(ctx, u1.ID, c.ID, CreateMessageInput{Content: "hi"})
	require.NoError(t, err)

	t.Run("should hide the chat from outsiders", func(t *testing.T) {
		req := require.New(t)
		req.ErrorIs(fx.chats.Delete(ctx, u2.ID, c.ID), chatroom_errors.ErrNotFound)
	})

	t.Run("should delete rows and attempt every blob even when one fails", func(t *testing.T) {
		req := require.New(t)
		gomock.InOrder(
			fx.blobs.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(errors.New("boom")),
			fx.blobs.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil),
		)
		req.NoError(fx.chats.Delete(ctx, u1.ID, c.ID))

		msgs, _, err := fx.messages.List(ctx, u1.ID, c.ID, MessageFilter{})
		req.NoError(err)
		req.Empty(msgs)
		files, _, err := fx.files.List(ctx, u1.ID, c.ID, FileFilter{})
		req.NoError(err)
		req.Empty(files)

		req.ErrorIs(fx.chats.Delete(ctx, u1.ID, c.ID), chatroom_errors.ErrNotFound)
	})
}

func TestMessageService(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	u1 := databasetest.User(t, fx.db, "u1")
	u2 := databasetest.User(t, fx.db, "u2")

	c, err := fx.chats.Create(ctx, u1.ID, CreateChatInput{Title: "Room", ParticipantIDs: []uuid.UUID{u2.ID}})
	require.NoError(t, err)

	t.Run("should require participation to post", func(t *testing.T) {
		req := require.New(t)
		_, err := fx.messages.Create(ctx, u1.ID, c.ID, CreateMessageInput{Content: "creator only"})
		req.ErrorIs(err, chatroom_errors.ErrNotFound)

		_, err = fx.messages.Create(ctx, u2.ID, uuid.New(), CreateMessageInput{Content: "nowhere"})
		req.ErrorIs(err, chatroom_errors.ErrNotFound)
	})

	t.Run("should reject empty content and negative context", func(t *testing.T) {
		req := require.New(t)
		_, err := fx.messages.Create(ctx, u2.ID, c.ID, CreateMessageInput{Content: "   "})
		req.ErrorIs(err, chatroom_errors.ErrInvalidInput)
		_, err = fx.messages.Create(ctx, u2.ID, c.ID, CreateMessageInput{Content: "x", ContextIndex: lo.ToPtr(-1)})
		req.ErrorIs(err, chatroom_errors.ErrInvalidInput)
	})

	hi, err := fx.messages.Create(ctx, u2.ID, c.ID, CreateMessageInput{Content: "hi"})
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	tagged, err := fx.messages.Create(ctx, u2.ID, c.ID, CreateMessageInput{Content: "tagged", ContextIndex: lo.ToPtr(3)})
	require.NoError(t, err)

	t.Run("should split on context presence", func(t *testing.T) {
		req := require.New(t)
		without, _, err := fx.messages.List(ctx, u2.ID, c.ID, MessageFilter{HasContext: lo.ToPtr(false)})
		req.NoError(err)
		req.Len(without, 1)
		req.Equal(hi.ID, without[0].ID)
		req.Equal("u2", without[0].Sender.Username)

		with, _, err := fx.messages.List(ctx, u2.ID, c.ID, MessageFilter{HasContext: lo.ToPtr(true)})
		req.NoError(err)
		req.Len(with, 1)
		req.Equal(tagged.ID, with[0].ID)

		byCtx, err := fx.messages.ByContext(ctx, u2.ID, c.ID, 3)
		req.NoError(err)
		req.Len(byCtx, 1)
	})

	t.Run("should hide messages from the non participant creator", func(t *testing.T) {
		req := require.New(t)
		msgs, total, err := fx.messages.List(ctx, u1.ID, c.ID, MessageFilter{})
		req.NoError(err)
		req.Zero(total)
		req.Empty(msgs)

		_, err = fx.messages.Get(ctx, u1.ID, c.ID, hi.ID)
		req.ErrorIs(err, chatroom_errors.ErrNotFound)
	})

	t.Run("should validate list options", func(t *testing.T) {
		req := require.New(t)
		_, _, err := fx.messages.List(ctx, u2.ID, c.ID, MessageFilter{Order: "sideways"})
		req.ErrorIs(err, chatroom_errors.ErrInvalidInput)

		now := time.Now()
		_, _, err = fx.messages.List(ctx, u2.ID, c.ID, MessageFilter{Start: &now, End: lo.ToPtr(now.Add(-time.Hour))})
		req.ErrorIs(err, chatroom_errors.ErrInvalidInput)

		recent, total, err := fx.messages.List(ctx, u2.ID, c.ID, MessageFilter{Order: "recent", Limit: 1})
		req.NoError(err)
		req.EqualValues(2, total)
		req.Equal(tagged.ID, recent[0].ID)
	})

	t.Run("should update and clear the context index", func(t *testing.T) {
		req := require.New(t)
		m, err := fx.messages.Update(ctx, u2.ID, c.ID, tagged.ID, repository.MessageUpdate{Content: lo.ToPtr("edited"), ClearContext: true})
		req.NoError(err)
		req.Equal("edited", m.Content)
		req.Nil(m.ContextIndex)

		req.NoError(fx.messages.Delete(ctx, u2.ID, c.ID, tagged.ID))
		req.ErrorIs(fx.messages.Delete(ctx, u2.ID, c.ID, tagged.ID), chatroom_errors.ErrNotFound)
	})
}

func TestFileService(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	u1 := databasetest.User(t, fx.db, "u1")
	u2 := databasetest.User(t, fx.db, "u2")

	c, err := fx.chats.Create(ctx, u1.ID, CreateChatInput{Title: "Docs", ParticipantIDs: []uuid.UUID{u1.ID}})
	require.NoError(t, err)

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	t.Run("should derive metadata from the stored blob", func(t *testing.T) {
		req := require.New(t)
		var key string
		fx.blobs.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any(), int64(999), "image/png").
			DoAndReturn(func(_ context.Context, k string, r io.Reader, _ int64, _ string) (storage.ObjectInfo, error) {
				key = k
				b, err := io.ReadAll(r)
				req.NoError(err)
				req.Equal(png, b)
				return storage.ObjectInfo{Key: k, Size: int64(len(b)), ContentType: "image/png"}, nil
			})

		f, err := fx.files.Upload(ctx, u1.ID, c.ID, UploadInput{FileName: `..\..\evil\photo.jpg`, Content: bytes.NewReader(png), Size: 999})
		req.NoError(err)
		req.Equal(key, f.StorageKey)
		req.True(strings.HasPrefix(f.StorageKey, "chat_files/"+c.ID.String()+"/"))
		req.Equal("photo.jpg", f.FileName)
		req.Equal("image/png", f.FileType)
		req.EqualValues(len(png), f.FileSize)
		req.Equal("u1", f.UploadedBy.Username)
	})

	t.Run("should reject uploads from non participants before storing", func(t *testing.T) {
		req := require.New(t)
		_, err := fx.files.Upload(ctx, u2.ID, c.ID, UploadInput{FileName: "x.txt", Content: strings.NewReader("x"), Size: 1})
		req.ErrorIs(err, chatroom_errors.ErrNotFound)
	})

	t.Run("should reject oversized uploads", func(t *testing.T) {
		req := require.New(t)
		_, err := fx.files.Upload(ctx, u1.ID, c.ID, UploadInput{FileName: "big.bin", Content: strings.NewReader("x"), Size: 2 << 20})
		req.ErrorIs(err, chatroom_errors.ErrTooLarge)
	})

	t.Run("should surface blob write failures as storage errors", func(t *testing.T) {
		req := require.New(t)
		fx.blobs.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(storage.ObjectInfo{}, errors.New("bucket unavailable"))
		_, err := fx.files.Upload(ctx, u1.ID, c.ID, UploadInput{FileName: "x.txt", Content: strings.NewReader("x"), Size: 1})
		req.ErrorIs(err, chatroom_errors.ErrStorage)
		req.Contains(err.Error(), "bucket unavailable")
	})

	t.Run("should stream downloads and map failures", func(t *testing.T) {
		req := require.New(t)
		files, _, err := fx.files.List(ctx, u1.ID, c.ID, FileFilter{Name: "photo"})
		req.NoError(err)
		req.Len(files, 1)
		f := files[0]

		fx.blobs.EXPECT().Get(gomock.Any(), f.StorageKey).
			Return(io.NopCloser(bytes.NewReader(png)), storage.ObjectInfo{Key: f.StorageKey, Size: int64(len(png)), ContentType: "image/png"}, nil)
		got, body, info, err := fx.files.Download(ctx, u1.ID, c.ID, f.ID)
		req.NoError(err)
		defer body.Close()
		req.Equal(f.ID, got.ID)
		req.EqualValues(len(png), info.Size)

		fx.blobs.EXPECT().Get(gomock.Any(), f.StorageKey).Return(nil, storage.ObjectInfo{}, storage.ErrObjectNotFound)
		_, _, _, err = fx.files.Download(ctx, u1.ID, c.ID, f.ID)
		req.ErrorIs(err, chatroom_errors.ErrStorage)

		_, _, _, err = fx.files.Download(ctx, u2.ID, c.ID, f.ID)
		req.ErrorIs(err, chatroom_errors.ErrNotFound)
	})

	t.Run("should filter by size and order", func(t *testing.T) {
		req := require.New(t)
		files, _, err := fx.files.List(ctx, u1.ID, c.ID, FileFilter{LargerThan: lo.ToPtr(int64(1))})
		req.NoError(err)
		req.Len(files, 1)

		files, _, err = fx.files.List(ctx, u1.ID, c.ID, FileFilter{SmallerThan: lo.ToPtr(int64(1))})
		req.NoError(err)
		req.Empty(files)

		_, _, err = fx.files.List(ctx, u1.ID, c.ID, FileFilter{Order: "largest"})
		req.ErrorIs(err, chatroom_errors.ErrInvalidInput)
	})

	t.Run("should delete the row and the blob", func(t *testing.T) {
		req := require.New(t)
		files, _, err := fx.files.List(ctx, u1.ID, c.ID, FileFilter{})
		req.NoError(err)
		f := files[0]

		fx.blobs.EXPECT().Delete(gomock.Any(), f.StorageKey).Return(nil)
		req.NoError(fx.files.Delete(ctx, u1.ID, c.ID, f.ID))
		_, err = fx.files.Get(ctx, u1.ID, c.ID, f.ID)
		req.ErrorIs(err, chatroom_errors.ErrNotFound)
	})
}

func TestAuthService(t *testing.T) {
	ctx := context.Background()
	db := databasetest.New(t)
	users := repository.NewUserRepository(db)
	svc := NewAuthService(users, &config.Config{JWTSecret: "secret", JWTIssuer: "https://id.example.com"})

	t.Run("should verify a token and provision the user", func(t *testing.T) {
		req := require.New(t)
		id := uuid.New()
		token, err := svc.IssueToken(user.User{ID: id, Username: "dana", Email: "dana@example.com"}, time.Hour)
		req.NoError(err)

		u, err := svc.Authenticate(ctx, token)
		req.NoError(err)
		req.Equal(id, u.ID)

		stored, err := users.GetByID(ctx, id)
		req.NoError(err)
		req.Equal("dana", stored.Username)

		token, err = svc.IssueToken(user.User{ID: id, Username: "dana2"}, time.Hour)
		req.NoError(err)
		_, err = svc.Authenticate(ctx, token)
		req.NoError(err)
		stored, err = users.GetByID(ctx, id)
		req.NoError(err)
		req.Equal("dana2", stored.Username)
	})

	t.Run("should reject bad tokens", func(t *testing.T) {
		req := require.New(t)
		_, err := svc.Authenticate(ctx, "")
		req.ErrorIs(err, chatroom_errors.ErrUnauthorized)

		expired, err := svc.IssueToken(user.User{ID: uuid.New()}, -time.Minute)
		req.NoError(err)
		_, err = svc.Authenticate(ctx, expired)
		req.ErrorIs(err, chatroom_errors.ErrUnauthorized)

		other := NewAuthService(users, &config.Config{JWTSecret: "other", JWTIssuer: "https://id.example.com"})
		forged, err := other.IssueToken(user.User{ID: uuid.New()}, time.Hour)
		req.NoError(err)
		_, err = svc.Authenticate(ctx, forged)
		req.ErrorIs(err, chatroom_errors.ErrUnauthorized)

		wrongIssuer := NewAuthService(users, &config.Config{JWTSecret: "secret", JWTIssuer: "https://elsewhere"})
		token, err := wrongIssuer.IssueToken(user.User{ID: uuid.New()}, time.Hour)
		req.NoError(err)
		_, err = svc.Authenticate(ctx, token)
		req.ErrorIs(err, chatroom_errors.ErrUnauthorized)
	})

	t.Run("should map errors to statuses and codes", func(t *testing.T) {
		req := require.New(t)
		req.Equal(404, HTTPStatus(chatroom_errors.ErrNotFound))
		req.Equal(400, HTTPStatus(chatroom_errors.ErrInvalidInput))
		req.Equal(500, HTTPStatus(chatroom_errors.ErrStorage))
		req.Equal("STORAGE_ERROR", ErrorCode(chatroom_errors.ErrStorage))
		req.Equal("NOT_FOUND", ErrorCode(chatroom_errors.ErrNotFound))
	})
}
