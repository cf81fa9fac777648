package service

import (
	"context"

	"evote/internal/repository"

	"go.uber.org/zap"
)

// electionService owns the voting gate. Gate reads go straight to the
// store (a single-row read) so decisions never trail the last close.
type electionService struct {
	electionRepo repository.ElectionRepository
	logger       *zap.Logger
}

func NewElectionService(electionRepo repository.ElectionRepository, logger *zap.Logger) ElectionService {
	return &electionService{
		electionRepo: electionRepo,
		logger:       logger,
	}
}

// EnsureSettings idempotently creates the gate record, default open
func (s *electionService) EnsureSettings(ctx context.Context) error {
	return s.electionRepo.EnsureSettings(ctx)
}

// IsVotingClosed reads the gate
func (s *electionService) IsVotingClosed(ctx context.Context) (bool, error) {
	return s.electionRepo.IsVotingClosed(ctx)
}

// CloseVoting idempotently closes the gate. Submissions that already
// passed their gate check may still commit after this returns; the
// results endpoint reads the tally from committed ballots, so those late
// commits are counted.
func (s *electionService) CloseVoting(ctx context.Context) error {
	if err := s.electionRepo.CloseVoting(ctx); err != nil {
		return err
	}
	s.logger.Info("voting closed")
	return nil
}
