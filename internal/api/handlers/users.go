package handlers

import (
	"net/http"

	"github.com/hugh/docvault/internal/api/dto"
	"github.com/hugh/docvault/internal/api/middleware"
	"github.com/hugh/docvault/internal/database/models"
	"github.com/hugh/docvault/internal/users"
)

type UserHandler struct {
	users *users.Store
}

func NewUserHandler(store *users.Store) *UserHandler {
	return &UserHandler{users: store}
}

// List handles GET /users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	all, err := h.users.FindAllActive(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.UsersToResponse(all))
}

// Get handles GET /users/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, users.ErrUserNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.users.FindActiveByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.UserToResponse(user))
}

// Update handles PUT /users/{id}
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, users.ErrUserNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req dto.UpdateUserRequest
	if err := decodeAndValidate(r, &req, "name", "role"); err != nil {
		writeError(w, r, err)
		return
	}

	patch := users.Patch{Name: req.Name}
	if req.Role != nil {
		role := models.Role(*req.Role)
		patch.Role = &role
	}

	user, err := h.users.Update(r.Context(), id, patch, middleware.CallerFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.UserToResponse(user))
}

// Delete handles DELETE /users/{id}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, users.ErrUserNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.users.SoftDelete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "User deactivated"})
}
