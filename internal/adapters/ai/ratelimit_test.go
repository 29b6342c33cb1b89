package ai

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maxwell/pkg/errors"
)

func TestRateLimitError_MatchesSentinel(t *testing.T) {
	err := &RateLimitError{
		Provider: ProviderNameClaude,
		Limit:    60,
		Err:      context.DeadlineExceeded,
	}

	assert.True(t, errors.Is(err, errors.ErrRateLimitExceeded))
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "the underlying wait error stays in the chain")
	assert.Contains(t, err.Error(), string(ProviderNameClaude))
}

func TestNewRateLimiter_ZeroIsNoOp(t *testing.T) {
	limiter := NewRateLimiter(0)

	assert.Equal(t, float64(0), limiter.Limit())
	require.NoError(t, limiter.Wait(context.Background()))
}

func TestNewRateLimiter_ReportsConfiguredRate(t *testing.T) {
	limiter := NewRateLimiter(120)
	assert.InDelta(t, 120, limiter.Limit(), 0.01)
}

func TestTokenLimiter_WaitHonorsCancellation(t *testing.T) {
	limiter := NewRateLimiter(1) // 1 req/min, burst 1

	require.NoError(t, limiter.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, limiter.Wait(ctx), "an exhausted limiter must fail once the context expires")
}
