package service_test

import (
	"context"
	"testing"

	"evote/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestElectionServiceGateLifecycle(t *testing.T) {
	store := newMemStore()
	svc := service.NewElectionService(&memElectionRepo{store: store}, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, svc.EnsureSettings(ctx))

	closed, err := svc.IsVotingClosed(ctx)
	require.NoError(t, err)
	assert.False(t, closed, "gate must start open")

	require.NoError(t, svc.CloseVoting(ctx))

	closed, err = svc.IsVotingClosed(ctx)
	require.NoError(t, err)
	assert.True(t, closed)

	// Closing again is a no-op, not an error.
	require.NoError(t, svc.CloseVoting(ctx))

	closed, err = svc.IsVotingClosed(ctx)
	require.NoError(t, err)
	assert.True(t, closed)
}
