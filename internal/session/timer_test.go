package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimerCountdown(t *testing.T) {
	timer := NewTimer(1) // 60 秒

	assert.False(t, timer.Unlimited())
	assert.Equal(t, 60, timer.Remaining())

	for i := 0; i < 59; i++ {
		assert.False(t, timer.Tick())
	}
	assert.Equal(t, 1, timer.Remaining())

	// 归零的那一拍到期，且只报告一次
	assert.True(t, timer.Tick())
	assert.Equal(t, 0, timer.Remaining())
	assert.False(t, timer.Tick())
	assert.Equal(t, 0, timer.Remaining())
}

func TestTimerUnlimited(t *testing.T) {
	timer := NewTimer(0)

	assert.True(t, timer.Unlimited())
	for i := 0; i < 10; i++ {
		assert.False(t, timer.Tick())
	}
	assert.Equal(t, 0, timer.Remaining())
}

func TestTimerStop(t *testing.T) {
	timer := NewTimer(1)
	timer.Tick()
	timer.Stop()

	remaining := timer.Remaining()
	assert.False(t, timer.Tick())
	assert.Equal(t, remaining, timer.Remaining())
}

func TestTimerReset(t *testing.T) {
	timer := NewTimer(1)
	for i := 0; i < 60; i++ {
		timer.Tick()
	}
	assert.Equal(t, 0, timer.Remaining())

	timer.Reset()
	assert.Equal(t, 60, timer.Remaining())
	assert.False(t, timer.Tick())
	assert.Equal(t, 59, timer.Remaining())
}
