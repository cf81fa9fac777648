package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"evote/internal/domain"
	"evote/internal/service"
	apperrors "evote/pkg/errors"
	"evote/pkg/logger"
)

// ContextKey represents keys used in request context
type ContextKey string

const (
	// VoterContextKey is the key for the authenticated voter's claims
	VoterContextKey ContextKey = "voter"
	// RequestIDContextKey is the key for request ID in context
	RequestIDContextKey ContextKey = "request_id"
)

// VoterFromContext returns the authenticated voter's claims, if any.
func VoterFromContext(ctx context.Context) *domain.AuthClaims {
	claims, _ := ctx.Value(VoterContextKey).(*domain.AuthClaims)
	return claims
}

// Auth creates an authentication middleware resolving the voter identity
// from a bearer token. Handlers behind it trust the identity
// unconditionally.
func Auth(authService service.AuthService, logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeErrorResponse(w, apperrors.NewAuthenticationError("Authorization header is required"), logger)
				return
			}

			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeErrorResponse(w, apperrors.NewAuthenticationError("Invalid authorization header format"), logger)
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			if token == "" {
				writeErrorResponse(w, apperrors.NewAuthenticationError("Token is required"), logger)
				return
			}

			ctx := r.Context()
			claims, err := authService.ValidateToken(ctx, token)
			if err != nil {
				logger.WithError(err).Warn("Token validation failed")
				writeErrorResponse(w, apperrors.NewAuthenticationError("Please authenticate"), logger)
				return
			}

			ctx = context.WithValue(ctx, VoterContextKey, claims)
			r = r.WithContext(ctx)

			logger.WithField("voter_id", claims.VoterID).Debug("Voter authenticated")

			next.ServeHTTP(w, r)
		})
	}
}

// AdmissionNumberLookup resolves a voter id to an admission number.
type AdmissionNumberLookup func(ctx context.Context, voterID string) (string, error)

// Admin restricts a route to configured election administrators. Must run
// after Auth.
func Admin(lookup AdmissionNumberLookup, isAdmin func(admissionNumber string) bool, logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := VoterFromContext(r.Context())
			if claims == nil {
				writeErrorResponse(w, apperrors.NewAuthenticationError("Please authenticate"), logger)
				return
			}

			admissionNumber, err := lookup(r.Context(), claims.VoterID)
			if err != nil {
				writeErrorResponse(w, apperrors.NewInternalError("Failed to verify administrator", err), logger)
				return
			}
			if !isAdmin(admissionNumber) {
				logger.WithField("voter_id", claims.VoterID).Warn("Admin access denied")
				writeErrorResponse(w, apperrors.NewAuthorizationError("Administrator access required"), logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ResultsGate rejects result reads while voting is open.
func ResultsGate(election service.ElectionService, logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			closed, err := election.IsVotingClosed(r.Context())
			if err != nil {
				writeErrorResponse(w, apperrors.NewInternalError("Failed to read election state", err), logger)
				return
			}
			if !closed {
				writeErrorResponse(w, apperrors.NewAuthorizationError("Results are not available yet"), logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequestID creates a middleware that adds a unique request ID to each request
func RequestID(logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := generateRequestID()

			ctx := context.WithValue(r.Context(), RequestIDContextKey, requestID)
			r = r.WithContext(ctx)

			w.Header().Set("X-Request-ID", requestID)

			next.ServeHTTP(w, r)
		})
	}
}

func generateRequestID() string {
	return fmt.Sprintf("%d-%d", time.Now().Unix(), time.Now().Nanosecond())
}

// writeErrorResponse writes an error response to the client
func writeErrorResponse(w http.ResponseWriter, appErr *apperrors.AppError, logger *logger.Logger) {
	logger.WithError(appErr).Debug("Request rejected")

	response := &apperrors.ErrorResponse{}
	response.Error.Type = appErr.Type
	response.Error.Message = appErr.Message
	response.Error.Details = appErr.Details
	response.Error.Timestamp = time.Now().UTC().Format(time.RFC3339)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)
	_ = json.NewEncoder(w).Encode(response)
}
