package service

import (
	"context"

	"evote/internal/domain"
)

// VotingService coordinates one ballot submission attempt end to end.
type VotingService interface {
	// SubmitBallot validates the gate, the voter, and the selections, then
	// commits the ballot and the voter's state transition atomically.
	// Failures are *domain.VoteError values.
	SubmitBallot(ctx context.Context, voterID string, selections domain.Selections) (*domain.BallotReceipt, error)
}

// TallyService derives candidate counts from committed ballots.
type TallyService interface {
	// ComputeTally returns per-position candidate counts; empty maps when
	// no ballots exist
	ComputeTally(ctx context.Context) (domain.Tally, error)

	// InvalidateCache drops the cached tally after a commit
	InvalidateCache(ctx context.Context)
}

// ElectionService owns the open/closed gate.
type ElectionService interface {
	// EnsureSettings idempotently creates the gate record, default open
	EnsureSettings(ctx context.Context) error

	// IsVotingClosed reads the gate
	IsVotingClosed(ctx context.Context) (bool, error)

	// CloseVoting idempotently closes the gate
	CloseVoting(ctx context.Context) error
}

// Notifier publishes tally updates to live observers. Delivery is
// best-effort; Publish must never block a committed submission.
type Notifier interface {
	Publish(ctx context.Context, tally domain.Tally) error
}

// AuthService defines identity operations: credential issuance,
// verification, and password recovery.
type AuthService interface {
	// Register creates a voter account
	Register(ctx context.Context, req *domain.RegisterRequest) error

	// RegisterBulk registers a batch of voters, continuing past failed
	// entries and reporting a per-entry outcome
	RegisterBulk(ctx context.Context, reqs []domain.RegisterRequest) ([]domain.BulkRegisterResult, error)

	// Login verifies credentials and issues a token
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error)

	// ValidateToken verifies a token and returns its claims
	ValidateToken(ctx context.Context, token string) (*domain.AuthClaims, error)

	// Me returns the voter's profile with vote status
	Me(ctx context.Context, voterID string) (*domain.MeResponse, error)

	// ForgotPassword issues a reset token and mails the reset link
	ForgotPassword(ctx context.Context, req *domain.ForgotPasswordRequest) error

	// ResetPassword consumes a reset token and sets a new password
	ResetPassword(ctx context.Context, req *domain.ResetPasswordRequest) error
}
