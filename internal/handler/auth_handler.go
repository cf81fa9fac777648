package handler

import (
	"encoding/json"
	"net/http"

	"evote/internal/domain"
	"evote/internal/middleware"
	"evote/internal/service"
	apperrors "evote/pkg/errors"
	"evote/pkg/logger"
)

// AuthHandler serves registration, login and password recovery.
type AuthHandler struct {
	authService service.AuthService
	logger      *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService service.AuthService, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, apperrors.NewValidationError("Invalid request body", nil))
		return
	}

	if err := h.authService.Register(r.Context(), &req); err != nil {
		respondError(w, r, toAppError(err))
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{
		"message": "Voter registered successfully",
	})
}

// RegisterBulk handles POST /api/auth/registerBulk
func (h *AuthHandler) RegisterBulk(w http.ResponseWriter, r *http.Request) {
	var reqs []domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		respondError(w, r, apperrors.NewValidationError("Provide an array of students", nil))
		return
	}

	results, err := h.authService.RegisterBulk(r.Context(), reqs)
	if err != nil {
		respondError(w, r, toAppError(err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"results": results,
	})
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, apperrors.NewValidationError("Invalid request body", nil))
		return
	}

	resp, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		respondError(w, r, toAppError(err))
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.VoterFromContext(r.Context())
	if claims == nil {
		respondError(w, r, apperrors.NewAuthenticationError("Please authenticate"))
		return
	}

	resp, err := h.authService.Me(r.Context(), claims.VoterID)
	if err != nil {
		respondError(w, r, toAppError(err))
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// ForgotPassword handles POST /api/auth/forgot-password
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req domain.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, apperrors.NewValidationError("Invalid request body", nil))
		return
	}

	if err := h.authService.ForgotPassword(r.Context(), &req); err != nil {
		respondError(w, r, toAppError(err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Password reset email sent",
	})
}

// ResetPassword handles POST /api/auth/reset-password
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req domain.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, apperrors.NewValidationError("Invalid request body", nil))
		return
	}

	if err := h.authService.ResetPassword(r.Context(), &req); err != nil {
		respondError(w, r, toAppError(err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Password has been reset successfully",
	})
}
