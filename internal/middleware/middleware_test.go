package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"evote/internal/domain"
	"evote/internal/middleware"
	apperrors "evote/pkg/errors"
	"evote/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthService struct {
	claims *domain.AuthClaims
	err    error
}

func (f *fakeAuthService) Register(ctx context.Context, req *domain.RegisterRequest) error {
	return nil
}

func (f *fakeAuthService) RegisterBulk(ctx context.Context, reqs []domain.RegisterRequest) ([]domain.BulkRegisterResult, error) {
	return nil, nil
}

func (f *fakeAuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	return nil, nil
}

func (f *fakeAuthService) ValidateToken(ctx context.Context, token string) (*domain.AuthClaims, error) {
	return f.claims, f.err
}

func (f *fakeAuthService) Me(ctx context.Context, voterID string) (*domain.MeResponse, error) {
	return nil, nil
}

func (f *fakeAuthService) ForgotPassword(ctx context.Context, req *domain.ForgotPasswordRequest) error {
	return nil
}

func (f *fakeAuthService) ResetPassword(ctx context.Context, req *domain.ResetPasswordRequest) error {
	return nil
}

type fakeElectionService struct {
	closed bool
	err    error
}

func (f *fakeElectionService) EnsureSettings(ctx context.Context) error { return nil }

func (f *fakeElectionService) IsVotingClosed(ctx context.Context) (bool, error) {
	return f.closed, f.err
}

func (f *fakeElectionService) CloseVoting(ctx context.Context) error { return nil }

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("error")
	require.NoError(t, err)
	return log
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error.Message
}

func TestAuthMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := middleware.VoterFromContext(r.Context())
		require.NotNil(t, claims)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(claims.VoterID))
	})

	t.Run("valid token passes claims through", func(t *testing.T) {
		mw := middleware.Auth(&fakeAuthService{claims: &domain.AuthClaims{VoterID: "voter-1"}}, testLogger(t))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer some-token")
		rec := httptest.NewRecorder()
		mw(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "voter-1", rec.Body.String())
	})

	t.Run("missing header rejected", func(t *testing.T) {
		mw := middleware.Auth(&fakeAuthService{}, testLogger(t))

		rec := httptest.NewRecorder()
		mw(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed header rejected", func(t *testing.T) {
		mw := middleware.Auth(&fakeAuthService{}, testLogger(t))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Token abc")
		rec := httptest.NewRecorder()
		mw(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid token rejected", func(t *testing.T) {
		mw := middleware.Auth(&fakeAuthService{err: errors.New("expired")}, testLogger(t))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer stale-token")
		rec := httptest.NewRecorder()
		mw(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Please authenticate", errorMessage(t, rec))
	})
}

func TestResultsGate(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("open election seals results", func(t *testing.T) {
		mw := middleware.ResultsGate(&fakeElectionService{closed: false}, testLogger(t))

		rec := httptest.NewRecorder()
		mw(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "Results are not available yet", errorMessage(t, rec))
	})

	t.Run("closed election admits the request", func(t *testing.T) {
		mw := middleware.ResultsGate(&fakeElectionService{closed: true}, testLogger(t))

		rec := httptest.NewRecorder()
		mw(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("gate read failure is a server error", func(t *testing.T) {
		mw := middleware.ResultsGate(&fakeElectionService{err: errors.New("down")}, testLogger(t))

		rec := httptest.NewRecorder()
		mw(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestAdminMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	lookup := func(ctx context.Context, voterID string) (string, error) {
		if voterID == "voter-admin" {
			return "CT101-0001", nil
		}
		return "CT101-0002", nil
	}
	isAdmin := func(admissionNumber string) bool {
		return admissionNumber == "CT101-0001"
	}

	withClaims := func(voterID string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		ctx := context.WithValue(req.Context(), middleware.VoterContextKey, &domain.AuthClaims{VoterID: voterID})
		return req.WithContext(ctx)
	}

	t.Run("admin admitted", func(t *testing.T) {
		mw := middleware.Admin(lookup, isAdmin, testLogger(t))

		rec := httptest.NewRecorder()
		mw(next).ServeHTTP(rec, withClaims("voter-admin"))

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("non-admin rejected", func(t *testing.T) {
		mw := middleware.Admin(lookup, isAdmin, testLogger(t))

		rec := httptest.NewRecorder()
		mw(next).ServeHTTP(rec, withClaims("voter-2"))

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unauthenticated rejected", func(t *testing.T) {
		mw := middleware.Admin(lookup, isAdmin, testLogger(t))

		rec := httptest.NewRecorder()
		mw(next).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequestID(t *testing.T) {
	mw := middleware.RequestID(testLogger(t))

	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = r.Context().Value(middleware.RequestIDContextKey).(string)
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	mw(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))
}

func TestCORS(t *testing.T) {
	cfg := middleware.DefaultCORSConfig([]string{"http://localhost:5173"})
	mw := middleware.CORS(cfg)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("allowed origin echoed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		rec := httptest.NewRecorder()
		mw(next).ServeHTTP(rec, req)

		assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("unknown origin not echoed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "http://evil.example")
		rec := httptest.NewRecorder()
		mw(next).ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight short-circuits", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		rec := httptest.NewRecorder()
		mw(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
	})
}
