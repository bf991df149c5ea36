package indexer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryPolicy_Success(t *testing.T) {
	attempts := 0
	policy := RetryPolicy{MaxAttempts: 3, BaseDelay: 10 * time.Millisecond}

	err := policy.Do(context.Background(), nil, func(context.Context) error {
		attempts++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, attempts, "should succeed on first try")
}

func TestRetryPolicy_EventualSuccess(t *testing.T) {
	attempts := 0
	policy := RetryPolicy{MaxAttempts: 5, BaseDelay: time.Millisecond}

	err := policy.Do(context.Background(), nil, func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("temporary error")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts, "should succeed on third attempt")
}

func TestRetryPolicy_AllAttemptsFail(t *testing.T) {
	attempts := 0
	expectedErr := errors.New("persistent error")
	policy := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond}

	err := policy.Do(context.Background(), nil, func(context.Context) error {
		attempts++
		return expectedErr
	})
	require.Error(t, err)
	assert.Equal(t, expectedErr, err, "should return the last error")
	assert.Equal(t, 3, attempts, "should attempt exactly MaxAttempts times")
}

func TestRetryPolicy_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	attempts := 0
	policy := RetryPolicy{MaxAttempts: 10, BaseDelay: 50 * time.Millisecond}

	err := policy.Do(ctx, nil, func(context.Context) error {
		attempts++
		if attempts == 2 {
			cancel()
		}
		return errors.New("error")
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, attempts, "should stop once the context is canceled")
}

func TestRetryPolicy_InvalidMaxAttempts(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 0}
	err := policy.Do(context.Background(), nil, func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
}

func TestRetryPolicy_Delay(t *testing.T) {
	t.Run("doubles per attempt", func(t *testing.T) {
		policy := RetryPolicy{BaseDelay: 100 * time.Millisecond}
		assert.Equal(t, 100*time.Millisecond, policy.delay(1))
		assert.Equal(t, 200*time.Millisecond, policy.delay(2))
		assert.Equal(t, 400*time.Millisecond, policy.delay(3))
	})

	t.Run("capped by MaxDelay", func(t *testing.T) {
		policy := RetryPolicy{BaseDelay: 100 * time.Millisecond, MaxDelay: 250 * time.Millisecond}
		assert.Equal(t, 200*time.Millisecond, policy.delay(2))
		assert.Equal(t, 250*time.Millisecond, policy.delay(3))
		assert.Equal(t, 250*time.Millisecond, policy.delay(10))
	})
}
