package handler

import (
	"context"
	"net/http"

	"chat-rooms/internal/services"
	"chat-rooms/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ChatHandler struct {
	service *services.ChatService
}

func NewChatHandler(service *services.ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

func (h *ChatHandler) List(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}
	var req httpdto.ListChatsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	chats, total, err := h.service.List(c.Request.Context(), userID, services.ChatFilter{
		Active:      req.Active,
		Title:       req.Title,
		CreatedByMe: req.CreatedByMe,
		Page:        req.Page,
		Limit:       req.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(
		httpdto.NewPaginated(httpdto.NewChatResponses(chats), total, req.Page, pageLimit(req.Limit)),
	))
}

func (h *ChatHandler) Create(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}
	var req httpdto.CreateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	participants, err := parseUUIDs(req.ParticipantIDs)
	if err != nil {
		badRequest(c, "invalid participant_ids")
		return
	}
	chat, err := h.service.Create(c.Request.Context(), userID, services.CreateChatInput{
		Title:          req.Title,
		Prompt:         req.Prompt,
		IsActive:       req.IsActive,
		ParticipantIDs: participants,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(httpdto.NewChatResponse(chat)))
}

func (h *ChatHandler) Recent(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}
	limit, err := parseInt(c.Query("limit"))
	if err != nil || limit < 0 {
		badRequest(c, "invalid limit")
		return
	}
	chats, err := h.service.Recent(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.NewChatResponses(chats)))
}

func (h *ChatHandler) Search(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}
	chats, err := h.service.Search(c.Request.Context(), userID, c.Query("query"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.NewChatResponses(chats)))
}

func (h *ChatHandler) Get(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}
	chatID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	chat, err := h.service.Get(c.Request.Context(), userID, chatID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.NewChatResponse(chat)))
}

// Update serves both PUT and PATCH; absent fields are kept.
func (h *ChatHandler) Update(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}
	chatID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req httpdto.UpdateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	in := services.UpdateChatInput{Title: req.Title, Prompt: req.Prompt, IsActive: req.IsActive}
	if req.ParticipantIDs != nil {
		ids, err := parseUUIDs(*req.ParticipantIDs)
		if err != nil {
			badRequest(c, "invalid participant_ids")
			return
		}
		in.ParticipantIDs = &ids
	}
	chat, err := h.service.Update(c.Request.Context(), userID, chatID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.NewChatResponse(chat)))
}

func (h *ChatHandler) Delete(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}
	chatID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), userID, chatID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}

func (h *ChatHandler) AddParticipant(c *gin.Context) {
	h.changeParticipant(c, h.service.AddParticipant, "participant added")
}

func (h *ChatHandler) RemoveParticipant(c *gin.Context) {
	h.changeParticipant(c, h.service.RemoveParticipant, "participant removed")
}

func (h *ChatHandler) changeParticipant(c *gin.Context, apply func(ctx context.Context, userID, chatID, participantID uuid.UUID) error, status string) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}
	chatID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req httpdto.ParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "user_id is required")
		return
	}
	participantID, err := uuid.Parse(req.UserID)
	if err != nil {
		badRequest(c, "invalid user_id")
		return
	}
	if err := apply(c.Request.Context(), userID, chatID, participantID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.StatusResponse{Status: status}))
}
