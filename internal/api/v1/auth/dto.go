package auth

import "bank-backend/internal/api/v1/user"

type RegisterInput struct {
	Name       string `json:"name" binding:"required,min=2,max=100"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,password"`
	NationalID string `json:"national_id" binding:"required,nationalid"`
	Phone      string `json:"phone" binding:"omitempty,phone"`
	Address    string `json:"address" binding:"omitempty,max=200"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	User  user.UserResponse `json:"user"`
	Token string            `json:"token"`
}
