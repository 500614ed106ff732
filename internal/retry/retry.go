// Package retry implements the retry loop (C9): it runs one orchestrator
// action, and on failure logs and retries it according to a configured
// tolerance policy.
package retry

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/repliq/repliq/internal/metrics"
	"github.com/repliq/repliq/internal/orchestrate"
)

// Tolerance selects how many attempts a Policy allows before giving up.
type Tolerance int

const (
	// RetryNThenRethrow retries up to Attempts times, then returns the last
	// error.
	RetryNThenRethrow Tolerance = iota
	// RetryForeverOnTypedError retries forever, but only while the error
	// satisfies TypedErrorIs; any other error is rethrown immediately.
	RetryForeverOnTypedError
	// RetryForeverOnAnyError retries forever regardless of error.
	RetryForeverOnAnyError
)

// DefaultAttempts is the default N for RetryNThenRethrow.
const DefaultAttempts = 10

// DefaultPause is the default pause between attempts.
const DefaultPause = time.Second

// Policy configures Loop's retry behavior.
type Policy struct {
	Tolerance Tolerance
	// Attempts bounds RetryNThenRethrow; zero means DefaultAttempts.
	Attempts int
	// Pause is the sleep between attempts; zero means DefaultPause.
	Pause time.Duration
	// TypedErrorIs gates RetryForeverOnTypedError; nil means "retry on any
	// error" (equivalent to RetryForeverOnAnyError).
	TypedErrorIs func(error) bool
}

func (p Policy) attempts() int {
	if p.Attempts <= 0 {
		return DefaultAttempts
	}
	return p.Attempts
}

func (p Policy) pause() time.Duration {
	if p.Pause <= 0 {
		return DefaultPause
	}
	return p.Pause
}

// Action is one full pass of an orchestrator (C6, C7, or C8).
type Action func(ctx context.Context) error

// Loop runs action under policy. It logs an event as each attempt starts,
// an event with the attempt count and failure reason on every failed
// attempt, and sleeps Pause before retrying. Loop returns nil on the first
// success. An error matching orchestrate.ErrNonMonotonicTime is returned
// at once under every tolerance; otherwise Loop returns according to
// policy.Tolerance:
//   - RetryNThenRethrow: the last error, once Attempts attempts are spent.
//   - RetryForeverOnTypedError: the error immediately, the moment it stops
//     matching TypedErrorIs.
//   - RetryForeverOnAnyError: never - it retries until ctx is canceled.
//
// Loop also stops and returns ctx.Err() if ctx is canceled between
// attempts. topic labels the attempt counter in internal/metrics.
func Loop(ctx context.Context, topic string, action Action, policy Policy) error {
	attempt := 0
	for {
		attempt++
		metrics.RetryAttempts.WithLabelValues(topic).Inc()
		log.WithField("topic", topic).WithField("attempt", attempt).Info("retry: action starting")

		err := action(ctx)
		if err == nil {
			return nil
		}
		if errors.Is(err, orchestrate.ErrNonMonotonicTime) {
			log.WithField("attempt", attempt).WithField("error", err).Error("retry: invariant violation, not retrying")
			return err
		}

		log.WithField("attempt", attempt).WithField("error", err).Warn("retry: action failed, will retry")

		switch policy.Tolerance {
		case RetryNThenRethrow:
			if attempt >= policy.attempts() {
				return err
			}
		case RetryForeverOnTypedError:
			matches := policy.TypedErrorIs == nil || policy.TypedErrorIs(err)
			if !matches {
				return err
			}
		case RetryForeverOnAnyError:
			// always retry
		default:
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(policy.pause()):
		}

		log.WithField("attempt", attempt+1).WithField("pause", policy.pause()).Debug("retry: sleeping before next attempt")
	}
}

// IsSentinel returns a TypedErrorIs predicate that matches errors.Is(err,
// target), a convenient helper for constructing RetryForeverOnTypedError
// policies around a known transient-error sentinel.
func IsSentinel(target error) func(error) bool {
	return func(err error) bool { return errors.Is(err, target) }
}
