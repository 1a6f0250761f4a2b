package model

import "time"

// User represents an account in the system
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never exposed in JSON responses
	PhoneNumber  int64     `json:"phone_number"`
	CreatedAt    time.Time `json:"created_at"`
}

// RegisterRequest is the payload for POST /register/
type RegisterRequest struct {
	Username        string `json:"username" binding:"required,max=100"`
	Email           string `json:"email" binding:"required,email,max=100"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
	PhoneNumber     int64  `json:"phone_number" binding:"required,gt=0"`
}

// LoginRequest is the payload for POST /login/
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ChangePasswordRequest is the payload for PUT/PATCH /change-password/
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// UserResponse is the public projection of a User
type UserResponse struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	PhoneNumber int64  `json:"phone_number"`
}

// NewUserResponse projects a User without its credentials
func NewUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
	}
}

type RegisterResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

type LoginResponse struct {
	UserID      int64  `json:"user_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber int64  `json:"phone_number"`
	Token       string `json:"token"`
}

type ChangePasswordResponse struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
}
