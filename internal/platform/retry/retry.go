package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy bounds retries of an operation against an unreliable endpoint.
type Policy struct {
	MaxRetries      int           `yaml:"max_retries" envconfig:"MAX_RETRIES"`
	InitialInterval time.Duration `yaml:"initial_interval" envconfig:"INITIAL_INTERVAL"`
	MaxInterval     time.Duration `yaml:"max_interval" envconfig:"MAX_INTERVAL"`
	AttemptTimeout  time.Duration `yaml:"attempt_timeout" envconfig:"ATTEMPT_TIMEOUT"`
}

// Default returns three retries starting at 200ms, each attempt capped at 10s.
func Default() Policy {
	return Policy{
		MaxRetries:      3,
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		AttemptTimeout:  10 * time.Second,
	}
}

// Notify is called after a failed attempt that will be retried.
type Notify func(err error, wait time.Duration)

// Permanent marks err as not worth retrying.
func Permanent(err error) error { return backoff.Permanent(err) }

// Do runs op until it succeeds, returns a Permanent error, the retry budget
// is spent or ctx ends. Each attempt gets its own AttemptTimeout.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error, notify Notify) error {
	eb := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		eb.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		eb.MaxInterval = p.MaxInterval
	}
	eb.MaxElapsedTime = 0

	retries := p.MaxRetries
	if retries < 0 {
		retries = 0
	}
	b := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(retries)), ctx)

	attempt := func() error {
		if p.AttemptTimeout <= 0 {
			return op(ctx)
		}
		actx, cancel := context.WithTimeout(ctx, p.AttemptTimeout)
		defer cancel()
		return op(actx)
	}
	return backoff.RetryNotify(attempt, b, backoff.Notify(notify))
}
