package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestThrottle(t *testing.T) {
	limit := &throttle{interval: 16 * time.Millisecond}
	now := time.Now()

	assert.True(t, limit.allow(now))
	assert.False(t, limit.allow(now.Add(10*time.Millisecond)))
	assert.True(t, limit.allow(now.Add(16*time.Millisecond)))
	assert.False(t, limit.allow(now.Add(20*time.Millisecond)))
}
