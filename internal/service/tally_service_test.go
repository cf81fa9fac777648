package service_test

import (
	"context"
	"testing"

	"evote/internal/domain"
	"evote/internal/service"
	"evote/pkg/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	mr := miniredis.RunT(t)
	client, err := redis.NewClient("redis://"+mr.Addr(), "test", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client
}

func TestComputeTallyEmpty(t *testing.T) {
	store := newMemStore()
	tally := service.NewTallyService(&memBallotRepo{store: store}, nil, zap.NewNop())

	result, err := tally.ComputeTally(context.Background())
	require.NoError(t, err)

	// Every position present, every count map empty.
	require.Len(t, result, len(domain.AllPositions()))
	for _, p := range domain.AllPositions() {
		require.Contains(t, result, p)
		assert.Empty(t, result[p])
	}
}

func TestComputeTallyCounts(t *testing.T) {
	store := newMemStore("voter-1", "voter-2")
	ballotRepo := &memBallotRepo{store: store}
	tally := service.NewTallyService(ballotRepo, nil, zap.NewNop())

	_, err := ballotRepo.CommitBallot(context.Background(), "voter-1", validSelections())
	require.NoError(t, err)

	other := validSelections()
	other[domain.PositionSecretaryGeneral] = "Wanjiku Nduta"
	_, err = ballotRepo.CommitBallot(context.Background(), "voter-2", other)
	require.NoError(t, err)

	result, err := tally.ComputeTally(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result[domain.PositionPresident]["Mwangi Njoroge"])
	assert.Equal(t, 1, result[domain.PositionSecretaryGeneral]["Kamau Karanja"])
	assert.Equal(t, 1, result[domain.PositionSecretaryGeneral]["Wanjiku Nduta"])
}

func TestComputeTallyCaching(t *testing.T) {
	redisClient := newTestRedis(t)
	store := newMemStore("voter-1", "voter-2")
	ballotRepo := &memBallotRepo{store: store}
	tally := service.NewTallyService(ballotRepo, redisClient, zap.NewNop())
	ctx := context.Background()

	_, err := ballotRepo.CommitBallot(ctx, "voter-1", validSelections())
	require.NoError(t, err)

	first, err := tally.ComputeTally(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, first[domain.PositionPresident]["Mwangi Njoroge"])

	// A commit without invalidation is invisible while the cache holds.
	_, err = ballotRepo.CommitBallot(ctx, "voter-2", validSelections())
	require.NoError(t, err)

	cached, err := tally.ComputeTally(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cached[domain.PositionPresident]["Mwangi Njoroge"])

	tally.InvalidateCache(ctx)

	fresh, err := tally.ComputeTally(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, fresh[domain.PositionPresident]["Mwangi Njoroge"])
}
