package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"evote/internal/domain"
	"evote/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrDuplicateVoter reports a registration whose admission number or email
// is already taken. Returned from Create when the unique constraint fires,
// which catches the race two concurrent registrations can win past the
// existence check.
var ErrDuplicateVoter = errors.New("voter already exists")

const voterColumns = `id, admission_number, name, email, course, phone, password_hash,
       has_voted, COALESCE(reset_token, ''), reset_expires, created_at`

type PostgresVoterRepository struct {
	db *database.PostgresDB
}

func NewVoterRepository(db *database.PostgresDB) *PostgresVoterRepository {
	return &PostgresVoterRepository{db: db}
}

func (r *PostgresVoterRepository) scanVoter(row pgx.Row) (*domain.Voter, error) {
	var voter domain.Voter
	err := row.Scan(
		&voter.ID,
		&voter.AdmissionNumber,
		&voter.Name,
		&voter.Email,
		&voter.Course,
		&voter.Phone,
		&voter.PasswordHash,
		&voter.HasVoted,
		&voter.ResetToken,
		&voter.ResetExpires,
		&voter.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get voter: %w", err)
	}
	return &voter, nil
}

// GetByID gets a voter by primary key
func (r *PostgresVoterRepository) GetByID(ctx context.Context, id string) (*domain.Voter, error) {
	query := `SELECT ` + voterColumns + ` FROM voters WHERE id = $1`
	return r.scanVoter(r.db.Pool.QueryRow(ctx, query, id))
}

// GetByAdmissionNumber gets a voter by admission number
func (r *PostgresVoterRepository) GetByAdmissionNumber(ctx context.Context, admissionNumber string) (*domain.Voter, error) {
	query := `SELECT ` + voterColumns + ` FROM voters WHERE admission_number = $1`
	return r.scanVoter(r.db.Pool.QueryRow(ctx, query, admissionNumber))
}

// GetByAdmissionNumberAndPhone gets a voter matching both identity fields
func (r *PostgresVoterRepository) GetByAdmissionNumberAndPhone(ctx context.Context, admissionNumber, phone string) (*domain.Voter, error) {
	query := `SELECT ` + voterColumns + ` FROM voters WHERE admission_number = $1 AND phone = $2`
	return r.scanVoter(r.db.Pool.QueryRow(ctx, query, admissionNumber, phone))
}

// ExistsByAdmissionNumberOrEmail reports whether either identity field is taken
func (r *PostgresVoterRepository) ExistsByAdmissionNumberOrEmail(ctx context.Context, admissionNumber, email string) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM voters WHERE admission_number = $1 OR email = $2)`,
		admissionNumber, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check voter existence: %w", err)
	}
	return exists, nil
}

// Create registers a new voter
func (r *PostgresVoterRepository) Create(ctx context.Context, voter *domain.Voter) error {
	if voter.ID == "" {
		voter.ID = uuid.NewString()
	}

	err := r.db.Pool.QueryRow(ctx,
		`INSERT INTO voters (id, admission_number, name, email, course, phone, password_hash)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at`,
		voter.ID,
		voter.AdmissionNumber,
		voter.Name,
		voter.Email,
		voter.Course,
		voter.Phone,
		voter.PasswordHash,
	).Scan(&voter.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateVoter
		}
		return fmt.Errorf("failed to create voter: %w", err)
	}

	return nil
}

// SetResetToken stores a hashed password-reset token with its expiry
func (r *PostgresVoterRepository) SetResetToken(ctx context.Context, voterID, hashedToken string, expiresUnixMilli int64) error {
	expires := time.UnixMilli(expiresUnixMilli)
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE voters SET reset_token = $2, reset_expires = $3 WHERE id = $1`,
		voterID, hashedToken, expires)
	if err != nil {
		return fmt.Errorf("failed to set reset token: %w", err)
	}
	return nil
}

// GetByActiveResetToken finds the voter holding an unexpired reset token
func (r *PostgresVoterRepository) GetByActiveResetToken(ctx context.Context, hashedToken string) (*domain.Voter, error) {
	query := `SELECT ` + voterColumns + ` FROM voters WHERE reset_token = $1 AND reset_expires > NOW()`
	return r.scanVoter(r.db.Pool.QueryRow(ctx, query, hashedToken))
}

// UpdatePassword replaces the password hash and clears any reset token
func (r *PostgresVoterRepository) UpdatePassword(ctx context.Context, voterID, passwordHash string) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE voters SET password_hash = $2, reset_token = NULL, reset_expires = NULL WHERE id = $1`,
		voterID, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}
