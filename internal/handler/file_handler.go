package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"chat-rooms/internal/services"
	"chat-rooms/internal/transport/httpdto"
	chatroom_errors "chat-rooms/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// multipartOverhead is allowed on top of the file limit for headers and
// boundaries.
const multipartOverhead = 1 << 20

type FileHandler struct {
	service  *services.FileService
	maxBytes int64
}

func NewFileHandler(service *services.FileService, maxBytes int64) *FileHandler {
	return &FileHandler{service: service, maxBytes: maxBytes}
}

func (h *FileHandler) List(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}
	chatID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req httpdto.ListFilesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	filter := services.FileFilter{
		FileType:    req.FileType,
		Name:        req.Name,
		LargerThan:  req.LargerThan,
		SmallerThan: req.SmallerThan,
		Order:       req.Order,
		Page:        req.Page,
		Limit:       req.Limit,
	}
	if req.UploadedBy != "" {
		filter.UploadedBy = lo.ToPtr(uuid.MustParse(req.UploadedBy))
	}
	files, total, err := h.service.List(c.Request.Context(), userID, chatID, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(
		httpdto.NewPaginated(httpdto.NewFileResponses(files), total, req.Page, pageLimit(req.Limit)),
	))
}

// Upload accepts a multipart form with the bytes in field "file".
func (h *FileHandler) Upload(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}
	chatID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if h.maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartOverhead)
	}
	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, chatroom_errors.ErrTooLarge)
			return
		}
		badRequest(c, "file is required")
		return
	}
	content, err := header.Open()
	if err != nil {
		badRequest(c, "unreadable file")
		return
	}
	defer content.Close()

	f, err := h.service.Upload(c.Request.Context(), userID, chatID, services.UploadInput{
		FileName: header.Filename,
		Content:  content,
		Size:     header.Size,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(httpdto.NewFileResponse(f)))
}

func (h *FileHandler) Get(c *gin.Context) {
	userID, chatID, fileID, ok := h.fileParams(c)
	if !ok {
		return
	}
	f, err := h.service.Get(c.Request.Context(), userID, chatID, fileID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.NewFileResponse(f)))
}

func (h *FileHandler) Delete(c *gin.Context) {
	userID, chatID, fileID, ok := h.fileParams(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), userID, chatID, fileID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}

// Download streams the stored bytes as an attachment.
func (h *FileHandler) Download(c *gin.Context) {
	userID, chatID, fileID, ok := h.fileParams(c)
	if !ok {
		return
	}
	f, body, info, err := h.service.Download(c.Request.Context(), userID, chatID, fileID)
	if err != nil {
		respondError(c, err)
		return
	}
	defer body.Close()

	size := info.Size
	if size <= 0 {
		size = f.FileSize
	}
	contentType := f.FileType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, size, contentType, body, map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="%s"`, strings.ReplaceAll(f.FileName, `"`, "")),
		"X-Accel-Buffering":   "no",
	})
}

func (h *FileHandler) fileParams(c *gin.Context) (userID, chatID, fileID uuid.UUID, ok bool) {
	if userID, ok = requesterID(c); !ok {
		return
	}
	if chatID, ok = pathUUID(c, "id"); !ok {
		return
	}
	fileID, ok = pathUUID(c, "file_id")
	return
}
