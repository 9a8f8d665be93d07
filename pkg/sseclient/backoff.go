package sseclient

import "time"

// Backoff returns base doubled attempt times, capped at ceiling. A non-positive
// ceiling means no cap.
func Backoff(base, ceiling time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	d := base
	for i := 0; i < attempt; i++ {
		if ceiling > 0 && d >= ceiling {
			return ceiling
		}
		d *= 2
	}
	if ceiling > 0 && d > ceiling {
		return ceiling
	}
	return d
}
