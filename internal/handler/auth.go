package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/classfund/classfund/internal/handler/dto"
	"github.com/classfund/classfund/internal/service"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "classfund_session"

// AuthHandler handles account registration and sessions.
type AuthHandler struct {
	svc        *service.IdentityService
	logger     *slog.Logger
	sessionTTL time.Duration
	secure     bool
}

// NewAuthHandler creates a new AuthHandler. secure controls the
// cookie's Secure flag and should be true outside local development.
func NewAuthHandler(svc *service.IdentityService, logger *slog.Logger, sessionTTL time.Duration, secure bool) *AuthHandler {
	return &AuthHandler{
		svc:        svc,
		logger:     logger,
		sessionTTL: sessionTTL,
		secure:     secure,
	}
}

// Register handles POST /api/v1/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "Invalid request body")
		return
	}

	input := service.RegisterInput{
		Email:                req.Email,
		DisplayName:          req.DisplayName,
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
	}

	user, err := h.svc.Register(r.Context(), input)
	if err != nil {
		h.handleIdentityError(w, err)
		return
	}

	h.logger.Info("account_created", "email", user.Email)

	writeJSON(w, http.StatusCreated, dto.RegisterResponse{
		Status:      "welcome",
		Email:       user.Email,
		DisplayName: user.DisplayName,
	})
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "Invalid request body")
		return
	}

	token, session, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.handleIdentityError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	h.logger.Info("login", "email", session.Email)

	writeJSON(w, http.StatusOK, dto.LoginResponse{
		Status:      "ok",
		Email:       session.Email,
		DisplayName: session.DisplayName,
	})
}

// Logout handles POST /api/v1/auth/logout.
// Revoking an absent or unknown session still succeeds.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := SessionToken(r); token != "" {
		if err := h.svc.Logout(r.Context(), token); err != nil {
			h.logger.Warn("logout_failed", "error", err.Error())
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleIdentityError maps identity service errors to HTTP responses.
func (h *AuthHandler) handleIdentityError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidEmail):
		writeError(w, http.StatusUnprocessableEntity, "email", "Email address is not valid")
	case errors.Is(err, service.ErrPasswordMismatch):
		writeError(w, http.StatusUnprocessableEntity, "pass", "Passwords do not match")
	case errors.Is(err, service.ErrEmptyName):
		writeError(w, http.StatusUnprocessableEntity, "name", "Display name is required")
	case errors.Is(err, service.ErrEmptyPassword), errors.Is(err, service.ErrPasswordTooShort):
		writeError(w, http.StatusUnprocessableEntity, "short_pass", "Password must be at least 5 characters")
	case errors.Is(err, service.ErrEmailTaken):
		writeError(w, http.StatusConflict, "used", "Email address is already registered")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "bad_login", "Email or password is incorrect")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "critical", "An internal error occurred")
	}
}

// SessionToken extracts the session token from the request, preferring
// the cookie and falling back to an Authorization bearer header.
func SessionToken(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	const prefix = "Bearer "
	if header := r.Header.Get("Authorization"); len(header) > len(prefix) && header[:len(prefix)] == prefix {
		return header[len(prefix):]
	}
	return ""
}
