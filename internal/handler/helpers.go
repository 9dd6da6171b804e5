package handler

import (
	"errors"
	"net/http"
	"strconv"

	"chat-rooms/internal/query"
	"chat-rooms/internal/services"
	"chat-rooms/internal/transport/httpdto"
	chatroom_errors "chat-rooms/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// respondError writes the envelope for err. Storage failures keep their
// message; other server errors do not.
func respondError(c *gin.Context, err error) {
	status := services.HTTPStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError && !errors.Is(err, chatroom_errors.ErrStorage) {
		msg = "internal server error"
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, httpdto.NewErrorResponse(msg, services.ErrorCode(err)))
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, httpdto.NewErrorResponse(msg, "INVALID_REQUEST"))
}

func requesterID(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return uuid.Nil, false
	}
	return userID, true
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func parseUUIDs(values []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(values))
	for _, v := range values {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseInt(value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	return strconv.Atoi(value)
}

// pageLimit reports the page size the query layer applies for limit.
func pageLimit(limit int) int {
	if limit <= 0 {
		return query.DefaultPageSize
	}
	return min(limit, query.MaxPageSize)
}
