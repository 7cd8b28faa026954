package ndl

import "time"

// RequestPolicy controls per-attempt timeout and retry behavior for upstream
// catalog calls. MaxRetries counts additional attempts after the first, so
// the total attempt budget is MaxRetries+1.
type RequestPolicy struct {
	TimeoutSeconds       float64
	MaxRetries           int
	RetryableStatusCodes map[int]struct{}
}

// DefaultRequestPolicy mirrors the upstream defaults: 10s timeout, one
// retry, and the usual transient status codes.
func DefaultRequestPolicy() RequestPolicy {
	return RequestPolicy{
		TimeoutSeconds:       10,
		MaxRetries:           1,
		RetryableStatusCodes: defaultRetryableStatusCodes(),
	}
}

func defaultRetryableStatusCodes() map[int]struct{} {
	return map[int]struct{}{
		429: {},
		500: {},
		502: {},
		503: {},
		504: {},
	}
}

func (p RequestPolicy) timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds * float64(time.Second))
}

func (p RequestPolicy) isRetryableStatus(status int) bool {
	codes := p.RetryableStatusCodes
	if codes == nil {
		codes = defaultRetryableStatusCodes()
	}
	_, ok := codes[status]
	return ok
}
