package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"evote/internal/domain"
	"evote/internal/handler"
	apperrors "evote/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthService struct {
	registerErr error
	bulkResults []domain.BulkRegisterResult
	bulkErr     error
	loginResp   *domain.LoginResponse
	loginErr    error
	meResp      *domain.MeResponse
	meErr       error
}

func (f *fakeAuthService) Register(ctx context.Context, req *domain.RegisterRequest) error {
	return f.registerErr
}

func (f *fakeAuthService) RegisterBulk(ctx context.Context, reqs []domain.RegisterRequest) ([]domain.BulkRegisterResult, error) {
	return f.bulkResults, f.bulkErr
}

func (f *fakeAuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	return f.loginResp, f.loginErr
}

func (f *fakeAuthService) ValidateToken(ctx context.Context, token string) (*domain.AuthClaims, error) {
	return nil, nil
}

func (f *fakeAuthService) Me(ctx context.Context, voterID string) (*domain.MeResponse, error) {
	return f.meResp, f.meErr
}

func (f *fakeAuthService) ForgotPassword(ctx context.Context, req *domain.ForgotPasswordRequest) error {
	return nil
}

func (f *fakeAuthService) ResetPassword(ctx context.Context, req *domain.ResetPasswordRequest) error {
	return nil
}

func TestRegisterHandler(t *testing.T) {
	body := `{"email":"jane@example.com","admissionNumber":"CT101-0001","name":"Jane Wanjiru",
		"course":"CS","phone":"0712345678","password":"pw","confirmPassword":"pw"}`

	t.Run("created", func(t *testing.T) {
		h := handler.NewAuthHandler(&fakeAuthService{}, testLogger(t))

		rec := httptest.NewRecorder()
		h.Register(rec, httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body)))

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), "Voter registered successfully")
	})

	t.Run("service error surfaces its status", func(t *testing.T) {
		h := handler.NewAuthHandler(&fakeAuthService{
			registerErr: apperrors.NewValidationError("Voter already exists", nil),
		}, testLogger(t))

		rec := httptest.NewRecorder()
		h.Register(rec, httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Voter already exists", decodeErrorResponse(t, rec).Error.Message)
	})

	t.Run("bad body rejected", func(t *testing.T) {
		h := handler.NewAuthHandler(&fakeAuthService{}, testLogger(t))

		rec := httptest.NewRecorder()
		h.Register(rec, httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader("{")))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRegisterBulkHandler(t *testing.T) {
	t.Run("returns per-entry results", func(t *testing.T) {
		h := handler.NewAuthHandler(&fakeAuthService{
			bulkResults: []domain.BulkRegisterResult{
				{AdmissionNumber: "CT101-0001", Status: "success"},
				{AdmissionNumber: "CT101-0002", Status: "failed", Reason: "Voter already exists"},
			},
		}, testLogger(t))

		body := `[{"admissionNumber":"CT101-0001"},{"admissionNumber":"CT101-0002"}]`
		rec := httptest.NewRecorder()
		h.RegisterBulk(rec, httptest.NewRequest(http.MethodPost, "/api/auth/registerBulk", strings.NewReader(body)))

		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Results []domain.BulkRegisterResult `json:"results"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Results, 2)
		assert.Equal(t, "success", resp.Results[0].Status)
		assert.Equal(t, "Voter already exists", resp.Results[1].Reason)
	})

	t.Run("non-array body rejected", func(t *testing.T) {
		h := handler.NewAuthHandler(&fakeAuthService{}, testLogger(t))

		rec := httptest.NewRecorder()
		h.RegisterBulk(rec, httptest.NewRequest(http.MethodPost, "/api/auth/registerBulk", strings.NewReader(`{"admissionNumber":"x"}`)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Provide an array of students", decodeErrorResponse(t, rec).Error.Message)
	})

	t.Run("empty batch rejected by the service", func(t *testing.T) {
		h := handler.NewAuthHandler(&fakeAuthService{
			bulkErr: apperrors.NewValidationError("Provide an array of students", nil),
		}, testLogger(t))

		rec := httptest.NewRecorder()
		h.RegisterBulk(rec, httptest.NewRequest(http.MethodPost, "/api/auth/registerBulk", strings.NewReader(`[]`)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestLoginHandler(t *testing.T) {
	body := `{"admissionNumber":"CT101-0001","password":"pw"}`

	t.Run("returns token", func(t *testing.T) {
		h := handler.NewAuthHandler(&fakeAuthService{
			loginResp: &domain.LoginResponse{
				Message: "Login successful",
				Token:   "jwt-token",
				Voter:   domain.VoterProfile{ID: "voter-1", AdmissionNumber: "CT101-0001"},
			},
		}, testLogger(t))

		rec := httptest.NewRecorder()
		h.Login(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body)))

		require.Equal(t, http.StatusOK, rec.Code)

		var resp domain.LoginResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "jwt-token", resp.Token)
	})

	t.Run("invalid credentials", func(t *testing.T) {
		h := handler.NewAuthHandler(&fakeAuthService{
			loginErr: apperrors.NewAuthenticationError("Invalid credentials"),
		}, testLogger(t))

		rec := httptest.NewRecorder()
		h.Login(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body)))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestMeHandler(t *testing.T) {
	t.Run("returns both vote-status signals", func(t *testing.T) {
		h := handler.NewAuthHandler(&fakeAuthService{
			meResp: &domain.MeResponse{ID: "voter-1", HasVoted: true, VoteRecord: true},
		}, testLogger(t))

		rec := httptest.NewRecorder()
		h.Me(rec, authenticatedRequest(http.MethodGet, "/api/auth/me", ""))

		require.Equal(t, http.StatusOK, rec.Code)

		var resp domain.MeResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.HasVoted)
		assert.True(t, resp.VoteRecord)
	})

	t.Run("requires authentication", func(t *testing.T) {
		h := handler.NewAuthHandler(&fakeAuthService{}, testLogger(t))

		rec := httptest.NewRecorder()
		h.Me(rec, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
