package repository

import (
	"context"
	"errors"
	"fmt"

	"evote/internal/domain"
	"evote/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type PostgresBallotRepository struct {
	db *database.PostgresDB
}

func NewBallotRepository(db *database.PostgresDB) *PostgresBallotRepository {
	return &PostgresBallotRepository{db: db}
}

// CommitBallot applies the ballot insert and the voter's has_voted flip as
// one transaction. The flag flip is a conditional update ("set true only
// if currently false"), so of N concurrent attempts for the same voter
// exactly one sees an affected row; the unique constraint on
// ballots.voter_id backstops the same guarantee on the insert side.
func (r *PostgresBallotRepository) CommitBallot(ctx context.Context, voterID string, selections domain.Selections) (*domain.Ballot, error) {
	ballot := &domain.Ballot{
		ID:         uuid.NewString(),
		VoterID:    voterID,
		Selections: selections,
	}

	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE voters SET has_voted = true WHERE id = $1 AND has_voted = false`,
			voterID)
		if err != nil {
			return fmt.Errorf("failed to update voter flag: %w", err)
		}

		if tag.RowsAffected() == 0 {
			// Either the voter does not exist or the flag is already set.
			var hasVoted bool
			err := tx.QueryRow(ctx, `SELECT has_voted FROM voters WHERE id = $1`, voterID).Scan(&hasVoted)
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrVoterNotFound
			}
			if err != nil {
				return fmt.Errorf("failed to check voter: %w", err)
			}
			return domain.ErrAlreadyVoted
		}

		err = tx.QueryRow(ctx,
			`INSERT INTO ballots (id, voter_id, president, vice_president, secretary_general, finance_secretary)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING created_at`,
			ballot.ID,
			voterID,
			selections[domain.PositionPresident],
			selections[domain.PositionVicePresident],
			selections[domain.PositionSecretaryGeneral],
			selections[domain.PositionFinanceSecretary],
		).Scan(&ballot.SubmittedAt)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				return domain.ErrAlreadyVoted
			}
			return fmt.Errorf("failed to insert ballot: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return ballot, nil
}

// ExistsForVoter reports whether a committed ballot references the voter.
func (r *PostgresBallotRepository) ExistsForVoter(ctx context.Context, voterID string) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM ballots WHERE voter_id = $1)`,
		voterID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check ballot existence: %w", err)
	}
	return exists, nil
}

// CountSelections aggregates all committed ballots into per-position
// candidate counts. Positions with no ballots yield empty maps.
func (r *PostgresBallotRepository) CountSelections(ctx context.Context) (domain.Tally, error) {
	query := `
		SELECT 'president', president, COUNT(*) FROM ballots GROUP BY president
		UNION ALL
		SELECT 'vicePresident', vice_president, COUNT(*) FROM ballots GROUP BY vice_president
		UNION ALL
		SELECT 'secretaryGeneral', secretary_general, COUNT(*) FROM ballots GROUP BY secretary_general
		UNION ALL
		SELECT 'financeSecretary', finance_secretary, COUNT(*) FROM ballots GROUP BY finance_secretary
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count selections: %w", err)
	}
	defer rows.Close()

	tally := domain.EmptyTally()
	for rows.Next() {
		var position, candidate string
		var count int
		if err := rows.Scan(&position, &candidate, &count); err != nil {
			return nil, fmt.Errorf("failed to scan tally row: %w", err)
		}
		tally[domain.Position(position)][candidate] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tally rows: %w", err)
	}

	return tally, nil
}
