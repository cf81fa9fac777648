package repository

import (
	"context"
	"fmt"

	"evote/pkg/database"
)

// PostgresElectionRepository stores the single election gate record. The
// table is constrained to one row (id = 1); the gate defaults open and
// only ever moves open -> closed.
type PostgresElectionRepository struct {
	db *database.PostgresDB
}

func NewElectionRepository(db *database.PostgresDB) *PostgresElectionRepository {
	return &PostgresElectionRepository{db: db}
}

// EnsureSettings idempotently creates the settings row, default open
func (r *PostgresElectionRepository) EnsureSettings(ctx context.Context) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO election_settings (id, is_voting_closed)
		 VALUES (1, false)
		 ON CONFLICT (id) DO NOTHING`)
	if err != nil {
		return fmt.Errorf("failed to ensure election settings: %w", err)
	}
	return nil
}

// IsVotingClosed reads the gate
func (r *PostgresElectionRepository) IsVotingClosed(ctx context.Context) (bool, error) {
	var closed bool
	err := r.db.Pool.QueryRow(ctx,
		`SELECT is_voting_closed FROM election_settings WHERE id = 1`).Scan(&closed)
	if err != nil {
		return false, fmt.Errorf("failed to read election settings: %w", err)
	}
	return closed, nil
}

// CloseVoting flips the gate closed; closing a closed gate is a no-op
func (r *PostgresElectionRepository) CloseVoting(ctx context.Context) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO election_settings (id, is_voting_closed)
		 VALUES (1, true)
		 ON CONFLICT (id) DO UPDATE SET is_voting_closed = true`)
	if err != nil {
		return fmt.Errorf("failed to close voting: %w", err)
	}
	return nil
}
