package resilience

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	t.Parallel()

	b := NewBreaker(BreakerConfig{Name: "test", MaxFailures: 2, OpenTimeout: time.Hour}, nil)
	boom := errors.New("boom")

	calls := 0
	op := func() error {
		calls++
		return boom
	}

	assert.ErrorIs(t, b.Do(op), boom)
	assert.ErrorIs(t, b.Do(op), boom)
	assert.Equal(t, "open", b.State())

	err := b.Do(op)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, 2, calls)
}

func TestBreaker_SuccessResetsFailures(t *testing.T) {
	t.Parallel()

	b := NewBreaker(BreakerConfig{Name: "test", MaxFailures: 2}, nil)
	boom := errors.New("boom")

	assert.Error(t, b.Do(func() error { return boom }))
	require.NoError(t, b.Do(func() error { return nil }))
	assert.Error(t, b.Do(func() error { return boom }))
	assert.Equal(t, "closed", b.State())
}

func TestBreaker_HalfOpenProbe(t *testing.T) {
	t.Parallel()

	b := NewBreaker(BreakerConfig{Name: "test", MaxFailures: 1, OpenTimeout: 10 * time.Millisecond}, nil)
	require.Error(t, b.Do(func() error { return errors.New("boom") }))
	assert.Equal(t, "open", b.State())

	require.Eventually(t, func() bool { return b.State() == "half-open" }, time.Second, 5*time.Millisecond)
	require.NoError(t, b.Do(func() error { return nil }))
	assert.Equal(t, "closed", b.State())
}
