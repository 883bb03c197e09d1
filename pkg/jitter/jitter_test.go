package jitter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDuration(t *testing.T) {
	base := time.Second

	for i := 0; i < 100; i++ {
		got := Duration(base, DefaultJitter)
		assert.GreaterOrEqual(t, got, base)
		assert.LessOrEqual(t, got, base+base/2)
	}
}

func TestExponentialBackoff(t *testing.T) {
	base := time.Second
	max := 30 * time.Second

	// Без джиттера рост строго экспоненциальный с ограничением сверху
	assert.Equal(t, time.Second, ExponentialBackoff(base, max, 0, 0))
	assert.Equal(t, 2*time.Second, ExponentialBackoff(base, max, 1, 0))
	assert.Equal(t, 16*time.Second, ExponentialBackoff(base, max, 4, 0))
	assert.Equal(t, max, ExponentialBackoff(base, max, 10, 0))
	assert.Equal(t, max, ExponentialBackoff(base, max, 100, 0))
}
