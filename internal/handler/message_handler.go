package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	"chat-rooms/internal/repository"
	"chat-rooms/internal/services"
	"chat-rooms/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

type MessageHandler struct {
	service *services.MessageService
}

func NewMessageHandler(service *services.MessageService) *MessageHandler {
	return &MessageHandler{service: service}
}

func (h *MessageHandler) List(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}
	chatID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req httpdto.ListMessagesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	filter := services.MessageFilter{
		HasContext: req.HasContext,
		Start:      req.Start,
		End:        req.End,
		Order:      req.Order,
		Page:       req.Page,
		Limit:      req.Limit,
	}
	if req.FromUser != "" {
		filter.FromUser = lo.ToPtr(uuid.MustParse(req.FromUser))
	}
	msgs, total, err := h.service.List(c.Request.Context(), userID, chatID, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(
		httpdto.NewPaginated(httpdto.NewMessageResponses(msgs), total, req.Page, pageLimit(req.Limit)),
	))
}

func (h *MessageHandler) Create(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}
	chatID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req httpdto.CreateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if req.ChatID != "" && uuid.MustParse(req.ChatID) != chatID {
		badRequest(c, "chat_id does not match the chat in the path")
		return
	}
	msg, err := h.service.Create(c.Request.Context(), userID, chatID, services.CreateMessageInput{
		Content:      req.Content,
		ContextIndex: req.ContextIndex,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(httpdto.NewMessageResponse(msg)))
}

// ByContext serves GET /chats/:id/messages/context?context_index=N.
func (h *MessageHandler) ByContext(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}
	chatID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	raw, present := c.GetQuery("context_index")
	if !present || raw == "" {
		badRequest(c, "context_index is required")
		return
	}
	index, err := strconv.Atoi(raw)
	if err != nil {
		badRequest(c, "context_index must be an integer")
		return
	}
	msgs, err := h.service.ByContext(c.Request.Context(), userID, chatID, index)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.NewMessageResponses(msgs)))
}

func (h *MessageHandler) Get(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}
	chatID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	messageID, ok := pathUUID(c, "message_id")
	if !ok {
		return
	}
	msg, err := h.service.Get(c.Request.Context(), userID, chatID, messageID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.NewMessageResponse(msg)))
}

// Update serves both PUT and PATCH. Sending "context_index": null clears the
// index; omitting it keeps the current one.
func (h *MessageHandler) Update(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}
	chatID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	messageID, ok := pathUUID(c, "message_id")
	if !ok {
		return
	}
	var req httpdto.UpdateMessageRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		badRequest(c, err.Error())
		return
	}
	var fields map[string]json.RawMessage
	if err := c.ShouldBindBodyWith(&fields, binding.JSON); err != nil {
		badRequest(c, err.Error())
		return
	}
	upd := repository.MessageUpdate{Content: req.Content, ContextIndex: req.ContextIndex}
	if v, sent := fields["context_index"]; sent && bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
		upd.ClearContext = true
	}
	msg, err := h.service.Update(c.Request.Context(), userID, chatID, messageID, upd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.NewMessageResponse(msg)))
}

func (h *MessageHandler) Delete(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}
	chatID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	messageID, ok := pathUUID(c, "message_id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), userID, chatID, messageID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}
