package service

import (
	"context"
	"encoding/json"

	"evote/internal/domain"
	"evote/internal/repository"
	"evote/pkg/redis"

	"go.uber.org/zap"
)

type tallyService struct {
	ballotRepo repository.BallotRepository
	redis      *redis.Client
	logger     *zap.Logger
}

// NewTallyService builds the tally aggregator. redisClient may be nil;
// every read then goes straight to the ballot store.
func NewTallyService(ballotRepo repository.BallotRepository, redisClient *redis.Client, logger *zap.Logger) TallyService {
	return &tallyService{
		ballotRepo: ballotRepo,
		redis:      redisClient,
		logger:     logger,
	}
}

// ComputeTally returns candidate counts per position, derived from all
// committed ballots. A short-TTL cache sits in front of the aggregation;
// the cache is invalidated on every commit, so staleness stays within one
// commit.
func (s *tallyService) ComputeTally(ctx context.Context) (domain.Tally, error) {
	if s.redis != nil {
		cached, err := s.redis.Get(ctx, s.redis.KeyBuilder.KeyTally())
		switch {
		case err == nil && cached != "":
			var tally domain.Tally
			if err := json.Unmarshal([]byte(cached), &tally); err == nil {
				return tally, nil
			}
		case err != nil && !redis.IsNil(err):
			s.logger.Debug("tally cache read failed", zap.Error(err))
		}
	}

	tally, err := s.ballotRepo.CountSelections(ctx)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if data, err := json.Marshal(tally); err == nil {
			if err := s.redis.Set(ctx, s.redis.KeyBuilder.KeyTally(), string(data), redis.TTLTally); err != nil {
				s.logger.Debug("failed to cache tally", zap.Error(err))
			}
		}
	}

	return tally, nil
}

// InvalidateCache drops the cached tally after a commit
func (s *tallyService) InvalidateCache(ctx context.Context) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Delete(ctx, s.redis.KeyBuilder.KeyTally()); err != nil {
		s.logger.Debug("failed to invalidate tally cache", zap.Error(err))
	}
}
