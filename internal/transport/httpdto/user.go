package httpdto

import (
	"chat-rooms/internal/domain/user"
)

type UserResponse struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

func NewUserResponse(u user.User) UserResponse {
	return UserResponse{
		ID:          u.ID.String(),
		Username:    u.Username,
		Email:       u.Email,
		DisplayName: u.DisplayName,
	}
}

// ParticipantRequest is used for POST /chats/:id/add_participant and
// /chats/:id/remove_participant
type ParticipantRequest struct {
	UserID string `json:"user_id" binding:"required,anyuuid"`
}

type StatusResponse struct {
	Status string `json:"status"`
}
