package google

import "time"

// RetryPolicy bounds the attempts made for one record.
//
// Delay is waited before every attempt, including the first. It is a fixed
// self-throttle that keeps the sequential request rate under the provider's
// quota, not a backoff: it does not grow with the attempt number.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

// DefaultRetryPolicy returns three attempts with a 300ms delay before each.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Delay:       300 * time.Millisecond,
	}
}

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}
