package handler

import (
	"time"

	"github.com/workdesk/accounts-api/internal/core/domain"
)

// --- Request types ---

// registerRequest is the public sign-up payload. Admin accounts cannot be
// self-registered.
type registerRequest struct {
	Email    string `json:"email"     validate:"required,email"`
	FullName string `json:"full_name" validate:"required"`
	Phone    string `json:"phone"`
	Password string `json:"password"  validate:"required,min=6"`
	Role     string `json:"role"      validate:"omitempty,self_role"`
}

// loginRequest accepts JSON or an OAuth2 password-grant form, where the
// email travels in the "username" field.
type loginRequest struct {
	Email    string `json:"email"    form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type updateProfileRequest struct {
	Email    *string `json:"email"     validate:"omitempty,email"`
	FullName *string `json:"full_name" validate:"omitempty,min=1"`
	Phone    *string `json:"phone"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=6"`
}

type setStatusRequest struct {
	Status string `json:"status" validate:"required,status"`
}

type setRoleRequest struct {
	Role string `json:"role" validate:"required,role"`
}

// --- Response types ---

type userResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type tokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        userResponse `json:"user"`
}

// ErrorResponse is the envelope every failed request is rendered with.
type ErrorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Phone:     u.Phone,
		Role:      string(u.Role),
		Status:    string(u.Status),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toUserResponses(users []*domain.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}
