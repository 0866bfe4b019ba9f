package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/clipsum/backend/internal/api/dto"
	"github.com/clipsum/backend/internal/api/middleware"
	"github.com/clipsum/backend/internal/auth"
)

type AuthHandler struct {
	authService auth.Authenticator
	dev         bool
}

func NewAuthHandler(authService auth.Authenticator, dev bool) *AuthHandler {
	return &AuthHandler{authService: authService, dev: dev}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationErrors(w, map[string]string{"body": "Invalid request body"})
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeValidationErrors(w, errors)
		return
	}

	message, err := h.authService.Register(r.Context(), auth.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeError(w, err, h.dev)
		return
	}

	writeSuccess(w, http.StatusCreated, nil, message)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationErrors(w, map[string]string{"body": "Invalid request body"})
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeValidationErrors(w, errors)
		return
	}

	resp, err := h.authService.Login(r.Context(), auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, err, h.dev)
		return
	}

	writeSuccess(w, http.StatusOK, dto.AuthResponse{
		Token: resp.Token,
		User:  dto.UserToDTO(resp.User),
	}, "Login successful")
}

func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationErrors(w, map[string]string{"body": "Invalid request body"})
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeValidationErrors(w, errors)
		return
	}

	user, err := h.authService.VerifyEmail(r.Context(), req.Email, req.OTP)
	if err != nil {
		writeError(w, err, h.dev)
		return
	}

	writeSuccess(w, http.StatusOK, dto.UserToDTO(user), "Email verified successfully")
}

func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req dto.RequestPasswordResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationErrors(w, map[string]string{"body": "Invalid request body"})
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeValidationErrors(w, errors)
		return
	}

	if err := h.authService.RequestPasswordReset(r.Context(), req.Email); err != nil {
		writeError(w, err, h.dev)
		return
	}

	writeSuccess(w, http.StatusOK, nil, "Password reset OTP sent to your email")
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationErrors(w, map[string]string{"body": "Invalid request body"})
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeValidationErrors(w, errors)
		return
	}

	if err := h.authService.ResetPassword(r.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		writeError(w, err, h.dev)
		return
	}

	writeSuccess(w, http.StatusOK, nil, "Password reset successful")
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req dto.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationErrors(w, map[string]string{"body": "Invalid request body"})
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeValidationErrors(w, errors)
		return
	}

	if err := h.authService.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, err, h.dev)
		return
	}

	writeSuccess(w, http.StatusOK, nil, "Password changed successfully")
}
