package mq

import (
	"time"
)

// RetryPolicy describes exponential backoff between connection attempts.
type RetryPolicy struct {
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
}

func NewRetryPolicy(initial, max time.Duration) RetryPolicy {
	return RetryPolicy{Initial: initial, Max: max, Multiplier: 2}
}

// Next returns the wait after the given zero-based failed attempt.
func (p RetryPolicy) Next(attempt int) time.Duration {
	if p.Initial <= 0 {
		return 0
	}
	multiplier := p.Multiplier
	if multiplier < 1 {
		multiplier = 1
	}

	wait := float64(p.Initial)
	for i := 0; i < attempt; i++ {
		wait *= multiplier
		if p.Max > 0 && wait >= float64(p.Max) {
			return p.Max
		}
	}
	if p.Max > 0 && time.Duration(wait) > p.Max {
		return p.Max
	}
	return time.Duration(wait)
}
