package dto

import (
	"time"

	"github.com/hugh/docvault/internal/database/models"
)

// UpdateUserRequest is a partial update; absent fields are left alone.
type UpdateUserRequest struct {
	Name *string `json:"name" validate:"omitempty,min=1,max=255"`
	Role *string `json:"role" validate:"omitempty,role"`
}

type UserResponse struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	Name      string      `json:"name"`
	Role      models.Role `json:"role"`
	IsActive  bool        `json:"is_active"`
	CreatedAt string      `json:"created_at"`
	UpdatedAt string      `json:"updated_at"`
}

func UserToResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID.String(),
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
		UpdatedAt: u.UpdatedAt.Format(time.RFC3339),
	}
}

func UsersToResponse(users []models.User) []UserResponse {
	out := make([]UserResponse, len(users))
	for i := range users {
		out[i] = UserToResponse(&users[i])
	}
	return out
}
