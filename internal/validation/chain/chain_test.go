package chain

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credval/internal/validation/models"
	"credval/internal/validation/providers"
)

func failing(provider string, code models.ErrorCode, calls *[]string) Step[string] {
	return Step[string]{
		Provider: provider,
		Run: func(ctx context.Context) (string, error) {
			*calls = append(*calls, provider)
			return "", providers.NewError(code, provider, models.CapabilityCURP, "stub failure", nil)
		},
	}
}

func succeeding(provider, value string, calls *[]string) Step[string] {
	return Step[string]{
		Provider: provider,
		Run: func(ctx context.Context) (string, error) {
			*calls = append(*calls, provider)
			return value, nil
		},
	}
}

func TestExecuteFirstSuccessWins(t *testing.T) {
	var calls []string
	steps := []Step[string]{
		succeeding("a", "value-a", &calls),
		succeeding("b", "value-b", &calls),
	}

	result := Execute(context.Background(), models.CapabilityCURP, steps, nil, nil, nil)

	require.NoError(t, result.Err)
	assert.Equal(t, "value-a", result.Value)
	assert.Equal(t, []string{"a"}, calls)
	assert.True(t, result.Fallback.Success)
	require.NotNil(t, result.Fallback.Winner)
	assert.Equal(t, "a", result.Fallback.Winner.Provider)
	assert.Len(t, result.Fallback.Attempts, 1)
}

func TestExecuteAdvancesPastRetryableFailure(t *testing.T) {
	var calls []string
	steps := []Step[string]{
		failing("a", models.ErrNotFound, &calls),
		succeeding("b", "value-b", &calls),
		succeeding("c", "value-c", &calls),
	}

	result := Execute(context.Background(), models.CapabilityCURP, steps, nil, nil, nil)

	require.NoError(t, result.Err)
	assert.Equal(t, "value-b", result.Value)
	// c is never invoked once b wins
	assert.Equal(t, []string{"a", "b"}, calls)
	require.Len(t, result.Fallback.Attempts, 2)
	assert.Equal(t, models.OutcomeFailure, result.Fallback.Attempts[0].Outcome)
	assert.Equal(t, models.ErrNotFound, result.Fallback.Attempts[0].ErrorCode)
	assert.Equal(t, models.OutcomeSuccess, result.Fallback.Attempts[1].Outcome)
	require.NotNil(t, result.Fallback.Winner)
	assert.Equal(t, "b", result.Fallback.Winner.Provider)
}

func TestExecuteRetryableCodes(t *testing.T) {
	for _, code := range []models.ErrorCode{
		models.ErrNotFound,
		models.ErrServiceUnavailable,
		models.ErrTimeout,
		models.ErrNetwork,
		models.ErrUnknown,
	} {
		t.Run(string(code), func(t *testing.T) {
			var calls []string
			steps := []Step[string]{
				failing("a", code, &calls),
				succeeding("b", "value-b", &calls),
			}
			result := Execute(context.Background(), models.CapabilityCURP, steps, nil, nil, nil)
			assert.True(t, result.Fallback.Success, "chain should advance past %s", code)
			assert.Equal(t, []string{"a", "b"}, calls)
		})
	}
}

func TestExecuteAuthoritativeFailureStopsChain(t *testing.T) {
	for _, code := range []models.ErrorCode{models.ErrInvalidFormat, models.ErrChecksumMismatch} {
		t.Run(string(code), func(t *testing.T) {
			var calls []string
			steps := []Step[string]{
				failing("a", code, &calls),
				succeeding("b", "value-b", &calls),
			}

			result := Execute(context.Background(), models.CapabilityCURP, steps, nil, nil, nil)

			require.Error(t, result.Err)
			assert.Equal(t, code, providers.CodeOf(result.Err))
			assert.Equal(t, []string{"a"}, calls)
			assert.False(t, result.Fallback.Success)
			assert.Nil(t, result.Fallback.Winner)
			assert.Len(t, result.Fallback.Attempts, 1)
		})
	}
}

func TestExecuteExhaustionKeepsFullAttemptLog(t *testing.T) {
	var calls []string
	steps := []Step[string]{
		failing("a", models.ErrNotFound, &calls),
		failing("b", models.ErrServiceUnavailable, &calls),
		failing("c", models.ErrNetwork, &calls),
	}

	result := Execute(context.Background(), models.CapabilityCURP, steps, nil, nil, nil)

	require.Error(t, result.Err)
	assert.Equal(t, models.ErrNetwork, providers.CodeOf(result.Err))
	assert.False(t, result.Fallback.Success)
	require.Len(t, result.Fallback.Attempts, 3)
	assert.Equal(t, models.ErrNotFound, result.Fallback.Attempts[0].ErrorCode)
	assert.Equal(t, models.ErrServiceUnavailable, result.Fallback.Attempts[1].ErrorCode)
	assert.Equal(t, models.ErrNetwork, result.Fallback.Attempts[2].ErrorCode)
	assert.Equal(t, models.ErrNetwork, result.Fallback.LastCode())
}

func TestExecuteTimeoutOutcome(t *testing.T) {
	var calls []string
	steps := []Step[string]{failing("a", models.ErrTimeout, &calls)}

	result := Execute(context.Background(), models.CapabilityCURP, steps, nil, nil, nil)

	require.Len(t, result.Fallback.Attempts, 1)
	assert.Equal(t, models.OutcomeTimeout, result.Fallback.Attempts[0].Outcome)
	assert.True(t, result.Fallback.AllTimedOut())
}

func TestExecuteEmptyChain(t *testing.T) {
	result := Execute[string](context.Background(), models.CapabilityCURP, nil, nil, nil, nil)

	require.Error(t, result.Err)
	assert.Equal(t, models.ErrServiceUnavailable, providers.CodeOf(result.Err))
	assert.False(t, result.Fallback.Success)
	assert.Empty(t, result.Fallback.Attempts)
}

func TestExecuteStopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var calls []string
	steps := []Step[string]{
		{
			Provider: "a",
			Run: func(ctx context.Context) (string, error) {
				calls = append(calls, "a")
				cancel()
				return "", providers.NewError(models.ErrTimeout, "a", models.CapabilityCURP, "deadline", context.DeadlineExceeded)
			},
		},
		succeeding("b", "value-b", &calls),
	}

	result := Execute(ctx, models.CapabilityCURP, steps, nil, nil, nil)

	require.Error(t, result.Err)
	// b must not run once the enclosing request is gone
	assert.Equal(t, []string{"a"}, calls)
	assert.Len(t, result.Fallback.Attempts, 1)
}

func TestExecuteRecordsLatency(t *testing.T) {
	steps := []Step[string]{
		{
			Provider: "slow",
			Run: func(ctx context.Context) (string, error) {
				time.Sleep(5 * time.Millisecond)
				return "v", nil
			},
		},
	}

	result := Execute(context.Background(), models.CapabilityCURP, steps, nil, nil, nil)

	require.True(t, result.Fallback.Success)
	assert.GreaterOrEqual(t, result.Fallback.Attempts[0].Latency, 5*time.Millisecond)
}
