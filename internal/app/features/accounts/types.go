package accounts

import (
	"time"

	"github.com/dalemusser/campaignhub/internal/domain/models"
)

type registerRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100" label:"Name"`
	Email    string `json:"email" validate:"required,email" label:"Email"`
	Password string `json:"password" validate:"required,min=8,max=72" label:"Password"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email" label:"Email"`
	Password string `json:"password" validate:"required" label:"Password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required" label:"Current password"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=72" label:"New password"`
}

// updateUserRequest carries the admin-editable fields; nil leaves a field as is.
type updateUserRequest struct {
	Role   *string `json:"role" validate:"omitempty,role" label:"Role"`
	Active *bool   `json:"active"`
}

// sessionResponse is returned by register and login.
type sessionResponse struct {
	User      models.User `json:"user"`
	Token     string      `json:"token,omitempty"`
	ExpiresAt *time.Time  `json:"expiresAt,omitempty"`
}
