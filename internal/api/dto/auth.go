package dto

import (
	"time"

	"github.com/clipsum/backend/internal/api/validation"
	"github.com/clipsum/backend/internal/database/models"
)

type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

func (r RegisterRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	} else if !validation.IsValidEmail(r.Email) {
		errors["email"] = "Invalid email address"
	}
	if ok, msg := validation.IsValidPassword(r.Password); !ok {
		errors["password"] = msg
	}
	if r.FirstName != "" && len(r.FirstName) < 2 {
		errors["first_name"] = "First name must be at least 2 characters long"
	}
	if r.LastName != "" && len(r.LastName) < 2 {
		errors["last_name"] = "Last name must be at least 2 characters long"
	}

	return errors
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	} else if !validation.IsValidEmail(r.Email) {
		errors["email"] = "Invalid email address"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	}

	return errors
}

type VerifyEmailRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

func (r VerifyEmailRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	} else if !validation.IsValidEmail(r.Email) {
		errors["email"] = "Invalid email address"
	}
	if !validation.IsValidOTP(r.OTP) {
		errors["otp"] = "OTP must be exactly 6 digits"
	}

	return errors
}

type RequestPasswordResetRequest struct {
	Email string `json:"email"`
}

func (r RequestPasswordResetRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	} else if !validation.IsValidEmail(r.Email) {
		errors["email"] = "Invalid email address"
	}

	return errors
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"new_password"`
}

func (r ResetPasswordRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	} else if !validation.IsValidEmail(r.Email) {
		errors["email"] = "Invalid email address"
	}
	if !validation.IsValidOTP(r.OTP) {
		errors["otp"] = "OTP must be exactly 6 digits"
	}
	if ok, msg := validation.IsValidPassword(r.NewPassword); !ok {
		errors["new_password"] = msg
	}

	return errors
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (r ChangePasswordRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.CurrentPassword == "" {
		errors["current_password"] = "Current password is required"
	}
	if ok, msg := validation.IsValidPassword(r.NewPassword); !ok {
		errors["new_password"] = msg
	}

	return errors
}

type AuthResponse struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

// UserDTO is the public projection of a user; the password hash never leaves
// the model layer.
type UserDTO struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	FirstName  string `json:"first_name,omitempty"`
	LastName   string `json:"last_name,omitempty"`
	IsVerified bool   `json:"is_verified"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

func UserToDTO(user *models.User) UserDTO {
	return UserDTO{
		ID:         user.ID.String(),
		Email:      user.Email,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		IsVerified: user.IsVerified,
		CreatedAt:  user.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  user.UpdatedAt.Format(time.RFC3339),
	}
}
