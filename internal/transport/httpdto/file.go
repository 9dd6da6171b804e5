package httpdto

import (
	"time"

	"chat-rooms/internal/domain/file"

	"github.com/samber/lo"
)

// ListFilesRequest holds query parameters for GET /chats/:id/files
type ListFilesRequest struct {
	FileType    string `form:"file_type"`
	Name        string `form:"name"`
	LargerThan  *int64 `form:"larger_than" binding:"omitnil,min=0"`
	SmallerThan *int64 `form:"smaller_than" binding:"omitnil,min=0"`
	UploadedBy  string `form:"uploaded_by" binding:"omitempty,anyuuid"`
	Order       string `form:"order" binding:"omitempty,oneof=recent oldest"`
	Page        int    `form:"page" binding:"min=0"`
	Limit       int    `form:"limit" binding:"min=0"`
}

type FileResponse struct {
	ID         string        `json:"id"`
	ChatID     string        `json:"chat_id"`
	File       string        `json:"file"`
	FileName   string        `json:"file_name"`
	FileType   string        `json:"file_type"`
	FileSize   int64         `json:"file_size"`
	UploadedBy *UserResponse `json:"uploaded_by,omitempty"`
	UploadedAt time.Time     `json:"uploaded_at"`
}

func NewFileResponse(f file.File) FileResponse {
	resp := FileResponse{
		ID:         f.ID.String(),
		ChatID:     f.ChatID.String(),
		File:       f.StorageKey,
		FileName:   f.FileName,
		FileType:   f.FileType,
		FileSize:   f.FileSize,
		UploadedAt: f.UploadedAt,
	}
	if f.UploadedBy.ID == f.UploadedByID {
		resp.UploadedBy = lo.ToPtr(NewUserResponse(f.UploadedBy))
	}
	return resp
}

func NewFileResponses(files []file.File) []FileResponse {
	return lo.Map(files, func(f file.File, _ int) FileResponse {
		return NewFileResponse(f)
	})
}
