package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/clipsum/backend/internal/api/dto"
	"github.com/clipsum/backend/internal/api/middleware"
	"github.com/clipsum/backend/internal/users"
)

type UserHandler struct {
	userService *users.Service
	dev         bool
}

func NewUserHandler(userService *users.Service, dev bool) *UserHandler {
	return &UserHandler{userService: userService, dev: dev}
}

// Me handles GET /api/v1/user/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	user, err := h.userService.GetUser(r.Context(), userID)
	if err != nil {
		writeError(w, err, h.dev)
		return
	}

	writeSuccess(w, http.StatusOK, dto.UserToDTO(user), "User retrieved successfully")
}

// UpdateMe handles PATCH /api/v1/user/me
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req dto.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationErrors(w, map[string]string{"body": "Invalid request body"})
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeValidationErrors(w, errors)
		return
	}

	user, err := h.userService.UpdateUser(r.Context(), userID, users.UpdateInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeError(w, err, h.dev)
		return
	}

	writeSuccess(w, http.StatusOK, dto.UserToDTO(user), "User updated successfully")
}
