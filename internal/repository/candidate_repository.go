package repository

import (
	"context"
	"fmt"

	"evote/internal/domain"
	"evote/pkg/database"
)

type PostgresCandidateRepository struct {
	db *database.PostgresDB
}

func NewCandidateRepository(db *database.PostgresDB) *PostgresCandidateRepository {
	return &PostgresCandidateRepository{db: db}
}

// GetAllGrouped returns candidate names grouped by position
func (r *PostgresCandidateRepository) GetAllGrouped(ctx context.Context) (domain.CandidatesByPosition, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT name, position FROM candidates ORDER BY position, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to get candidates: %w", err)
	}
	defer rows.Close()

	grouped := make(domain.CandidatesByPosition)
	for rows.Next() {
		var name string
		var position domain.Position
		if err := rows.Scan(&name, &position); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		grouped[position] = append(grouped[position], name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read candidates: %w", err)
	}

	return grouped, nil
}
