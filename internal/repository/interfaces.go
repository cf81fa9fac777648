package repository

import (
	"context"

	"evote/internal/domain"
)

// VoterRepository defines the interface for voter registry operations.
// Nothing here mutates has_voted; that flip happens only inside
// BallotRepository.CommitBallot.
type VoterRepository interface {
	// GetByID retrieves a voter by primary key
	GetByID(ctx context.Context, id string) (*domain.Voter, error)

	// GetByAdmissionNumber retrieves a voter by admission number
	GetByAdmissionNumber(ctx context.Context, admissionNumber string) (*domain.Voter, error)

	// GetByAdmissionNumberAndPhone retrieves a voter matching both fields
	GetByAdmissionNumberAndPhone(ctx context.Context, admissionNumber, phone string) (*domain.Voter, error)

	// ExistsByAdmissionNumberOrEmail reports whether a voter with either
	// identity field is already registered
	ExistsByAdmissionNumberOrEmail(ctx context.Context, admissionNumber, email string) (bool, error)

	// Create registers a new voter
	Create(ctx context.Context, voter *domain.Voter) error

	// SetResetToken stores a hashed password-reset token with its expiry
	SetResetToken(ctx context.Context, voterID, hashedToken string, expiresUnixMilli int64) error

	// GetByActiveResetToken finds the voter holding an unexpired reset token
	GetByActiveResetToken(ctx context.Context, hashedToken string) (*domain.Voter, error)

	// UpdatePassword replaces the password hash and clears any reset token
	UpdatePassword(ctx context.Context, voterID, passwordHash string) error
}

// BallotRepository defines the interface for the append-only ballot store.
type BallotRepository interface {
	// CommitBallot atomically inserts the ballot and flips the voter's
	// has_voted flag; either both persist or neither does. Returns
	// domain.ErrAlreadyVoted or domain.ErrVoterNotFound without writing
	// anything when the preconditions fail at commit time.
	CommitBallot(ctx context.Context, voterID string, selections domain.Selections) (*domain.Ballot, error)

	// ExistsForVoter reports whether a committed ballot references the voter
	ExistsForVoter(ctx context.Context, voterID string) (bool, error)

	// CountSelections derives per-position candidate counts from all
	// committed ballots
	CountSelections(ctx context.Context) (domain.Tally, error)
}

// CandidateRepository defines the interface for candidate reference data.
type CandidateRepository interface {
	// GetAllGrouped returns candidate names grouped by position
	GetAllGrouped(ctx context.Context) (domain.CandidatesByPosition, error)
}

// ElectionRepository defines the interface for the election gate record.
type ElectionRepository interface {
	// EnsureSettings idempotently creates the single settings row, open
	EnsureSettings(ctx context.Context) error

	// IsVotingClosed reads the gate
	IsVotingClosed(ctx context.Context) (bool, error)

	// CloseVoting flips the gate closed; closing a closed gate is a no-op
	CloseVoting(ctx context.Context) error
}
