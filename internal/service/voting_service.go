package service

import (
	"context"
	"errors"
	"time"

	"evote/internal/domain"
	"evote/internal/repository"
	"evote/pkg/redis"

	"go.uber.org/zap"
)

// commitTimeout bounds how long a submission may hold the persistence
// transaction before it is aborted and surfaced as a Timeout.
const commitTimeout = 10 * time.Second

type votingService struct {
	voterRepo    repository.VoterRepository
	ballotRepo   repository.BallotRepository
	electionRepo repository.ElectionRepository
	tally        TallyService
	notifier     Notifier
	redis        *redis.Client
	logger       *zap.Logger
}

// NewVotingService builds the submission coordinator. redisClient and
// notifier may be nil; caching and broadcasting are then skipped.
func NewVotingService(
	voterRepo repository.VoterRepository,
	ballotRepo repository.BallotRepository,
	electionRepo repository.ElectionRepository,
	tally TallyService,
	notifier Notifier,
	redisClient *redis.Client,
	logger *zap.Logger,
) VotingService {
	return &votingService{
		voterRepo:    voterRepo,
		ballotRepo:   ballotRepo,
		electionRepo: electionRepo,
		tally:        tally,
		notifier:     notifier,
		redis:        redisClient,
		logger:       logger,
	}
}

// SubmitBallot handles one vote-submission attempt.
//
// Preconditions are checked in a fixed order: gate open, voter exists and
// has not voted, selections complete. The commit itself re-checks the
// voter's flag under the transaction, so concurrent attempts for the same
// voter resolve to exactly one success and AlreadyVoted for the rest.
// Selections are deliberately not checked against the candidate table;
// the tally counts whatever names committed ballots carry.
func (s *votingService) SubmitBallot(ctx context.Context, voterID string, selections domain.Selections) (*domain.BallotReceipt, error) {
	closed, err := s.electionRepo.IsVotingClosed(ctx)
	if err != nil {
		return nil, domain.NewPersistenceError(err)
	}
	if closed {
		return nil, domain.ErrVotingClosed
	}

	voter, err := s.voterRepo.GetByID(ctx, voterID)
	if err != nil {
		return nil, domain.NewPersistenceError(err)
	}
	if voter == nil {
		return nil, domain.ErrVoterNotFound
	}
	if voter.HasVoted {
		return nil, domain.ErrAlreadyVoted
	}

	if err := selections.Validate(); err != nil {
		return nil, err
	}

	commitCtx, cancel := context.WithTimeout(ctx, commitTimeout)
	defer cancel()

	ballot, err := s.ballotRepo.CommitBallot(commitCtx, voterID, selections)
	if err != nil {
		var voteErr *domain.VoteError
		if errors.As(err, &voteErr) {
			return nil, voteErr
		}
		if errors.Is(err, context.DeadlineExceeded) {
			s.logger.Warn("ballot commit timed out",
				zap.String("voter_id", voterID))
			return nil, domain.ErrTimeout
		}
		s.logger.Error("ballot commit failed",
			zap.String("voter_id", voterID),
			zap.Error(err))
		return nil, domain.NewPersistenceError(err)
	}

	s.logger.Info("ballot committed",
		zap.String("voter_id", voterID),
		zap.String("ballot_id", ballot.ID))

	// Caching failure must not fail the committed vote. The status flips
	// at most once per voter, so the first write wins and stays.
	if s.redis != nil {
		voteKey := s.redis.KeyBuilder.KeyVoterVoted(voterID)
		if _, err := s.redis.SetNX(ctx, voteKey, ballot.ID, redis.TTLVoterVote); err != nil {
			s.logger.Warn("failed to cache vote status",
				zap.String("voter_id", voterID),
				zap.Error(err))
		}
	}

	s.broadcastTally(ctx)

	return &domain.BallotReceipt{
		BallotID:    ballot.ID,
		SubmittedAt: ballot.SubmittedAt,
		Message:     "Vote submitted successfully",
	}, nil
}

// broadcastTally recomputes the tally and publishes it to live observers.
// Best-effort: the ballot is already committed, so every failure here is
// logged and swallowed. The gate is re-read so no update goes out after
// closure.
func (s *votingService) broadcastTally(ctx context.Context) {
	if s.tally != nil {
		s.tally.InvalidateCache(ctx)
	}
	if s.notifier == nil || s.tally == nil {
		return
	}

	closed, err := s.electionRepo.IsVotingClosed(ctx)
	if err != nil {
		s.logger.Warn("skipping tally broadcast, gate read failed", zap.Error(err))
		return
	}
	if closed {
		return
	}

	tally, err := s.tally.ComputeTally(ctx)
	if err != nil {
		s.logger.Warn("skipping tally broadcast, recompute failed", zap.Error(err))
		return
	}

	if err := s.notifier.Publish(ctx, tally); err != nil {
		s.logger.Warn("tally broadcast failed", zap.Error(err))
	}
}
