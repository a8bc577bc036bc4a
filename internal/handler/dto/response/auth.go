package response

import (
	"time"

	"bookmarket/internal/domain/user"

	"github.com/google/uuid"
)

type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	DisplayName string     `json:"display_name"`
	LastLogin   *time.Time `json:"last_login,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

func FromUser(u *user.User) UserResponse {
	return UserResponse{
		ID:          u.ID(),
		Email:       u.Email().Value(),
		Role:        u.Role().String(),
		DisplayName: u.DisplayName(),
		LastLogin:   u.LastLogin(),
		CreatedAt:   u.CreatedAt(),
	}
}
