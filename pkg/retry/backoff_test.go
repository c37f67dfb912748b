package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func fastConfig(max int) Config {
	return Config{MaxRetries: max, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, Multiplier: 2}
}

func TestWithBackoffRetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := WithBackoff(context.Background(), fastConfig(5), zap.NewNop(), "op", func() error {
		calls++
		if calls < 3 {
			return errors.New("conflict")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithBackoffExhausted(t *testing.T) {
	boom := errors.New("conflict")
	calls := 0
	err := WithBackoff(context.Background(), fastConfig(3), zap.NewNop(), "op", func() error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, ErrExhausted)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls)
}

func TestWithBackoffPermanent(t *testing.T) {
	boom := errors.New("bad input")
	calls := 0
	err := WithBackoff(context.Background(), fastConfig(5), zap.NewNop(), "op", func() error {
		calls++
		return Permanent(boom)
	})
	assert.Equal(t, boom, err)
	assert.Equal(t, 1, calls)
}

func TestWithBackoffCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := WithBackoff(ctx, fastConfig(5), zap.NewNop(), "op", func() error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCalculateBackoffCapped(t *testing.T) {
	cfg := Config{InitialDelay: time.Second, MaxDelay: 3 * time.Second, Multiplier: 2}
	assert.Equal(t, time.Second, calculateBackoff(cfg, 1))
	assert.Equal(t, 2*time.Second, calculateBackoff(cfg, 2))
	assert.Equal(t, 3*time.Second, calculateBackoff(cfg, 5))
}
