package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"evote/internal/domain"
	"evote/internal/repository"
	apperrors "evote/pkg/errors"
	"evote/pkg/logger"
	"evote/pkg/mail"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	bcryptCost       = 10
	resetTokenExpiry = time.Hour
)

// Service implements credential issuance, verification and password
// recovery for voters.
type Service struct {
	voterRepo  repository.VoterRepository
	ballotRepo repository.BallotRepository
	mailer     *mail.Mailer
	jwtSecret  []byte
	jwtExpiry  time.Duration
	clientURL  string
	log        *logger.Logger
}

// NewService creates the auth service
func NewService(
	voterRepo repository.VoterRepository,
	ballotRepo repository.BallotRepository,
	mailer *mail.Mailer,
	jwtSecret string,
	jwtExpiryHours int,
	clientURL string,
	log *logger.Logger,
) *Service {
	return &Service{
		voterRepo:  voterRepo,
		ballotRepo: ballotRepo,
		mailer:     mailer,
		jwtSecret:  []byte(jwtSecret),
		jwtExpiry:  time.Duration(jwtExpiryHours) * time.Hour,
		clientURL:  clientURL,
		log:        log,
	}
}

// Register creates a voter account
func (s *Service) Register(ctx context.Context, req *domain.RegisterRequest) error {
	if err := validateRegisterRequest(req); err != nil {
		return err
	}

	exists, err := s.voterRepo.ExistsByAdmissionNumberOrEmail(ctx, req.AdmissionNumber, req.Email)
	if err != nil {
		return apperrors.NewInternalError("Registration failed", err)
	}
	if exists {
		return apperrors.NewValidationError("Voter already exists", nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return apperrors.NewInternalError("Registration failed", err)
	}

	voter := &domain.Voter{
		AdmissionNumber: req.AdmissionNumber,
		Name:            req.Name,
		Email:           req.Email,
		Course:          req.Course,
		Phone:           req.Phone,
		PasswordHash:    string(hash),
	}
	if err := s.voterRepo.Create(ctx, voter); err != nil {
		// A concurrent registration can win past the existence check; the
		// store's unique constraint reports it as a duplicate, not a failure.
		if errors.Is(err, repository.ErrDuplicateVoter) {
			return apperrors.NewValidationError("Voter already exists", nil)
		}
		return apperrors.NewInternalError("Registration failed", err)
	}

	s.log.WithField("admission_number", req.AdmissionNumber).Info("Voter registered")
	return nil
}

// RegisterBulk registers a batch of voters. Each entry is validated and
// created independently; failures are recorded per admission number and
// never abort the rest of the batch.
func (s *Service) RegisterBulk(ctx context.Context, reqs []domain.RegisterRequest) ([]domain.BulkRegisterResult, error) {
	if len(reqs) == 0 {
		return nil, apperrors.NewValidationError("Provide an array of students", nil)
	}

	results := make([]domain.BulkRegisterResult, 0, len(reqs))
	var succeeded int
	for i := range reqs {
		req := &reqs[i]
		if err := s.Register(ctx, req); err != nil {
			reason := "Registration failed"
			var appErr *apperrors.AppError
			if errors.As(err, &appErr) && appErr.Type == apperrors.ErrorTypeValidation {
				reason = appErr.Message
			}
			results = append(results, domain.BulkRegisterResult{
				AdmissionNumber: req.AdmissionNumber,
				Status:          "failed",
				Reason:          reason,
			})
			continue
		}
		succeeded++
		results = append(results, domain.BulkRegisterResult{
			AdmissionNumber: req.AdmissionNumber,
			Status:          "success",
		})
	}

	s.log.WithFields(map[string]interface{}{
		"total":     len(reqs),
		"succeeded": succeeded,
	}).Info("Bulk registration processed")
	return results, nil
}

// Login verifies credentials and issues a token
func (s *Service) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	if req.AdmissionNumber == "" || req.Password == "" {
		return nil, apperrors.NewValidationError("Please provide admission number and password", nil)
	}

	voter, err := s.voterRepo.GetByAdmissionNumber(ctx, req.AdmissionNumber)
	if err != nil {
		return nil, apperrors.NewInternalError("Login failed", err)
	}
	if voter == nil {
		return nil, apperrors.NewAuthenticationError("Invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(voter.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperrors.NewAuthenticationError("Invalid credentials")
	}

	token, err := s.issueToken(voter.ID)
	if err != nil {
		return nil, apperrors.NewInternalError("Login failed", err)
	}

	return &domain.LoginResponse{
		Message: "Login successful",
		Token:   token,
		Voter: domain.VoterProfile{
			ID:              voter.ID,
			Name:            voter.Name,
			AdmissionNumber: voter.AdmissionNumber,
			Email:           voter.Email,
		},
	}, nil
}

// ValidateToken verifies a token and returns its claims
func (s *Service) ValidateToken(ctx context.Context, tokenString string) (*domain.AuthClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, apperrors.NewAuthenticationError("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, apperrors.NewAuthenticationError("Invalid token claims")
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, apperrors.NewAuthenticationError("Invalid token claims")
	}

	return &domain.AuthClaims{VoterID: sub}, nil
}

// Me returns the voter's profile with both vote-status signals
func (s *Service) Me(ctx context.Context, voterID string) (*domain.MeResponse, error) {
	voter, err := s.voterRepo.GetByID(ctx, voterID)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to load voter", err)
	}
	if voter == nil {
		return nil, apperrors.NewNotFoundError("Voter not found")
	}

	hasBallot, err := s.ballotRepo.ExistsForVoter(ctx, voterID)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to load vote status", err)
	}

	return &domain.MeResponse{
		ID:              voter.ID,
		Name:            voter.Name,
		AdmissionNumber: voter.AdmissionNumber,
		Email:           voter.Email,
		HasVoted:        voter.HasVoted,
		VoteRecord:      hasBallot,
	}, nil
}

// ForgotPassword issues a reset token and mails the reset link. The raw
// token goes into the link; only its SHA-256 hash is stored.
func (s *Service) ForgotPassword(ctx context.Context, req *domain.ForgotPasswordRequest) error {
	voter, err := s.voterRepo.GetByAdmissionNumberAndPhone(ctx, req.AdmissionNumber, req.Phone)
	if err != nil {
		return apperrors.NewInternalError("Password reset failed", err)
	}
	if voter == nil {
		return apperrors.NewNotFoundError("Voter not found")
	}

	rawToken, err := randomToken()
	if err != nil {
		return apperrors.NewInternalError("Password reset failed", err)
	}

	expires := time.Now().Add(resetTokenExpiry).UnixMilli()
	if err := s.voterRepo.SetResetToken(ctx, voter.ID, hashToken(rawToken), expires); err != nil {
		return apperrors.NewInternalError("Password reset failed", err)
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.clientURL, rawToken)
	body := fmt.Sprintf(
		`<p>You requested a password reset for your voting account.</p>
<p>Click this link to reset your password:</p>
<a href="%s">%s</a>
<p>This link expires in 1 hour.</p>`, resetURL, resetURL)

	if err := s.mailer.Send(ctx, voter.Email, "Password Reset Request - Voting System", body); err != nil {
		s.log.WithError(err).Error("Failed to send reset email")
		return apperrors.NewInternalError("Password reset failed", err)
	}

	return nil
}

// ResetPassword consumes a reset token and sets a new password
func (s *Service) ResetPassword(ctx context.Context, req *domain.ResetPasswordRequest) error {
	if req.NewPassword != req.ConfirmPassword {
		return apperrors.NewValidationError("Passwords do not match", nil)
	}

	voter, err := s.voterRepo.GetByActiveResetToken(ctx, hashToken(req.Token))
	if err != nil {
		return apperrors.NewInternalError("Password reset failed", err)
	}
	if voter == nil {
		return apperrors.NewValidationError("Invalid or expired token", nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
	if err != nil {
		return apperrors.NewInternalError("Password reset failed", err)
	}

	if err := s.voterRepo.UpdatePassword(ctx, voter.ID, string(hash)); err != nil {
		return apperrors.NewInternalError("Password reset failed", err)
	}

	s.log.WithField("voter_id", voter.ID).Info("Password reset")
	return nil
}

func (s *Service) issueToken(voterID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": voterID,
		"iat": now.Unix(),
		"exp": now.Add(s.jwtExpiry).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func validateRegisterRequest(req *domain.RegisterRequest) error {
	if req.Email == "" || req.AdmissionNumber == "" || req.Name == "" ||
		req.Course == "" || req.Phone == "" || req.Password == "" {
		return apperrors.NewValidationError("All fields are required", nil)
	}
	if !strings.Contains(req.Email, "@") {
		return apperrors.NewValidationError("Invalid email address", nil)
	}
	if len(req.Phone) < 10 {
		return apperrors.NewValidationError("Invalid phone number format", nil)
	}
	if req.Password != req.ConfirmPassword {
		return apperrors.NewValidationError("Passwords do not match", nil)
	}
	return nil
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
