package handlers

import (
	"net/http"
	"time"

	"shootdesk-backend/internal/middleware"
	"shootdesk-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// AuthHandler handles account and session HTTP requests
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// SignInRequest represents the request body for signing in
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PasswordResetRequest represents the request body for starting a password reset
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// PasswordResetConfirmRequest represents the request body for completing a password reset
type PasswordResetConfirmRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// PushTokenRequest represents the request body for registering a device
type PushTokenRequest struct {
	PushToken string `json:"push_token"`
}

// SignUp handles POST /api/v1/auth/signup
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req services.SignUpInput
	if !decodeJSON(w, r, &req) {
		return
	}

	profile, err := h.authService.SignUp(r.Context(), req)
	if err != nil {
		respondServiceError(w, r, err, "sign up")
		return
	}

	respondJSON(w, http.StatusCreated, profile)
}

// SignIn handles POST /api/v1/auth/signin
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.authService.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(w, r, err, "sign in")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    result.Token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  result.Session.ExpiresAt,
	})

	respondJSON(w, http.StatusOK, result)
}

// SignOut handles POST /api/v1/auth/signout
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())
	h.authService.SignOut(session)

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})

	w.WriteHeader(http.StatusNoContent)
}

// RequestPasswordReset handles POST /api/v1/auth/password-reset
func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req PasswordResetRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if _, err := h.authService.RequestPasswordReset(r.Context(), req.Email); err != nil {
		respondServiceError(w, r, err, "request password reset")
		return
	}

	// Same answer whether or not the email exists.
	respondJSON(w, http.StatusAccepted, map[string]string{
		"status": "If an account exists for this email, a reset link has been sent",
	})
}

// ConfirmPasswordReset handles POST /api/v1/auth/password-reset/confirm
func (h *AuthHandler) ConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req PasswordResetConfirmRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.authService.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		respondServiceError(w, r, err, "reset password")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/v1/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())

	profile, err := h.authService.Profile(r.Context(), session)
	if err != nil {
		respondServiceError(w, r, err, "get profile")
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

// UpdatePushToken handles PUT /api/v1/me/push-token
func (h *AuthHandler) UpdatePushToken(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())

	var req PushTokenRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.authService.UpdatePushToken(r.Context(), session, req.PushToken); err != nil {
		respondServiceError(w, r, err, "update push token")
		return
	}

	log.Info().Str("profile_id", session.ProfileID).Msg("Push token updated")
	w.WriteHeader(http.StatusNoContent)
}
