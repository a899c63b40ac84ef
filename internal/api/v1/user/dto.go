package user

import (
	"time"

	"bank-backend/internal/models"
)

// UserResponse defines the response structure for user information.
type UserResponse struct {
	ID         uint      `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	NationalID string    `json:"national_id"`
	Phone      string    `json:"phone,omitempty"`
	Address    string    `json:"address,omitempty"`
	Role       string    `json:"role"`
	Version    int       `json:"version"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		NationalID: u.NationalID,
		Phone:      u.Phone,
		Address:    u.Address,
		Role:       u.Role,
		Version:    u.Version,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

type UserListResponse struct {
	Users []UserResponse `json:"users"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

// UpdateUserRequest carries a partial update. Omitted fields stay unchanged.
type UpdateUserRequest struct {
	Name       *string `json:"name" binding:"omitempty,min=2,max=100"`
	Email      *string `json:"email" binding:"omitempty,email"`
	Password   *string `json:"password" binding:"omitempty,password"`
	NationalID *string `json:"national_id" binding:"omitempty,nationalid"`
	Phone      *string `json:"phone" binding:"omitempty,phone"`
	Address    *string `json:"address" binding:"omitempty,max=200"`
	Role       *string `json:"role" binding:"omitempty,oneof=client admin"`
}
