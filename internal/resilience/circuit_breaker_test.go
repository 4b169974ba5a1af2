package resilience

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var errBoom = errors.New("boom")

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(Config{
		FailureThreshold: 3,
		RecoveryTimeout:  time.Minute,
		SuccessThreshold: 1,
	})

	for i := 0; i < 3; i++ {
		err := cb.Call(func() error { return errBoom })
		assert.ErrorIs(t, err, errBoom)
	}
	assert.Equal(t, StateOpen, cb.State())

	// Calls are shed without invoking fn.
	invoked := false
	err := cb.Call(func() error { invoked = true; return nil })
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, invoked)
}

func TestCircuitBreakerRecovers(t *testing.T) {
	cb := NewCircuitBreaker(Config{
		FailureThreshold: 1,
		RecoveryTimeout:  time.Millisecond,
		SuccessThreshold: 2,
	})

	assert.Error(t, cb.Call(func() error { return errBoom }))
	assert.Equal(t, StateOpen, cb.State())

	time.Sleep(5 * time.Millisecond)

	assert.NoError(t, cb.Call(func() error { return nil }))
	assert.Equal(t, StateHalfOpen, cb.State())
	assert.NoError(t, cb.Call(func() error { return nil }))
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker(Config{
		FailureThreshold: 1,
		RecoveryTimeout:  time.Millisecond,
		SuccessThreshold: 2,
	})

	assert.Error(t, cb.Call(func() error { return errBoom }))
	time.Sleep(5 * time.Millisecond)

	assert.Error(t, cb.Call(func() error { return errBoom }))
	assert.Equal(t, StateOpen, cb.State())
}

func TestCircuitBreakerSuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker(Config{FailureThreshold: 2, RecoveryTimeout: time.Minute, SuccessThreshold: 1})

	assert.Error(t, cb.Call(func() error { return errBoom }))
	assert.NoError(t, cb.Call(func() error { return nil }))
	assert.Error(t, cb.Call(func() error { return errBoom }))
	// One failure after a success is below the threshold of two.
	assert.Equal(t, StateClosed, cb.State())
}
