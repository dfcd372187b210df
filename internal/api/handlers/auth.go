package handlers

import (
	"net/http"
	"time"

	"github.com/hugh/docvault/internal/api/dto"
	"github.com/hugh/docvault/internal/api/middleware"
	"github.com/hugh/docvault/internal/auth"
)

type AuthHandler struct {
	authService auth.Authenticator
	tokenTTL    time.Duration
	secure      bool
}

// NewAuthHandler builds the login surface. tokenTTL sets the session cookie
// lifetime; secure marks the cookie HTTPS-only.
func NewAuthHandler(authService auth.Authenticator, tokenTTL time.Duration, secure bool) *AuthHandler {
	return &AuthHandler{authService: authService, tokenTTL: tokenTTL, secure: secure}
}

// Register handles POST /auth/register and POST /users.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := decodeAndValidate(r, &req, "password", "email", "name"); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.authService.Register(r.Context(), auth.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.UserToResponse(user))
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeAndValidate(r, &req, "email", "password"); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.authService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	token, err := h.authService.Login(r.Context(), user)
	if err != nil {
		writeError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.tokenTTL.Seconds()),
	})

	writeJSON(w, http.StatusOK, dto.LoginResponse{
		Message:     "Login successful",
		AccessToken: token,
	})
}

// Logout handles POST /auth/logout. The token itself stays valid until it
// expires.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Logout successful"})
}
