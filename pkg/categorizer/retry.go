package categorizer

import (
	"context"
	"net/http"
	"time"
)

// RetryPolicy controls how rate-limited and failed transport calls are retried.
type RetryPolicy struct {
	MaxAttempts     int
	InitialDelay    time.Duration
	BackoffMultiple float64
}

// DefaultRetryPolicy is three attempts waiting 1s then 2s.
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts:     3,
	InitialDelay:    1000 * time.Millisecond,
	BackoffMultiple: 2.0,
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultRetryPolicy.MaxAttempts
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = DefaultRetryPolicy.InitialDelay
	}
	if p.BackoffMultiple < 1 {
		p.BackoffMultiple = DefaultRetryPolicy.BackoffMultiple
	}
	return p
}

// next returns the delay to use after d.
func (p RetryPolicy) next(d time.Duration) time.Duration {
	return time.Duration(float64(d) * p.BackoffMultiple)
}

// attemptAction is what the loop does after a single attempt.
type attemptAction int

const (
	actionDone attemptAction = iota
	actionRetry
	actionFatal
)

// classifyStatus decides what to do with an HTTP status. Only 429 is retried;
// every other non-2xx status, upstream 5xx included, is terminal.
func classifyStatus(status int, lastAttempt bool) attemptAction {
	switch {
	case status >= 200 && status < 300:
		return actionDone
	case status == http.StatusTooManyRequests && !lastAttempt:
		return actionRetry
	default:
		return actionFatal
	}
}

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
