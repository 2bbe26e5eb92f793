package mq

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryPolicy_Next(t *testing.T) {
	p := NewRetryPolicy(time.Second, 10*time.Second)

	want := []time.Duration{
		time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		10 * time.Second,
		10 * time.Second,
	}
	for attempt, w := range want {
		assert.Equal(t, w, p.Next(attempt), "attempt %d", attempt)
	}

	assert.Equal(t, time.Duration(0), RetryPolicy{}.Next(3))
	assert.Equal(t, 3*time.Second, RetryPolicy{Initial: 3 * time.Second}.Next(4))
}
