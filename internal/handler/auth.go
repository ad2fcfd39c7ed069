package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"blogpulse/internal/config"
	"blogpulse/internal/httputil"
	"blogpulse/internal/model"
	"blogpulse/internal/service"
)

// AuthHandler serves the admin login endpoint.
type AuthHandler struct {
	authService *service.AuthService
	config      *config.Config
}

func NewAuthHandler(authService *service.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		config:      cfg,
	}
}

// Login handles POST /admin/login
// On success the token is returned in the body and set as a cookie for the
// admin web UI.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.AdminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	if req.Username == "" || req.Password == "" {
		httputil.WriteBadRequest(w, "Username and password are required")
		return
	}

	tokens, err := h.authService.Login(req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrInvalidCredentials):
			httputil.WriteUnauthorized(w, "Invalid username or password")
		default:
			log.Printf("[ERROR] Admin login handler: err=%v", err)
			httputil.WriteInternalError(w, "Failed to log in")
		}
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    tokens.AccessToken,
		Path:     "/",
		MaxAge:   tokens.ExpiresIn,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})

	httputil.WriteJSON(w, http.StatusOK, tokens)
}
