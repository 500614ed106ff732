package orchestrate

import "errors"

// ErrNonMonotonicTime is returned when a saver observes a record whose time
// precedes the running checkpoint. It signals a source that does not honor
// the ordering contract and is never retried: retry.Loop returns it at
// once under every tolerance (see internal/retry).
var ErrNonMonotonicTime = errors.New("orchestrate: non-monotonic record time")

// ErrAborted is the synthetic error a worker raises at a poll point once a
// peer has already recorded the first failure; the caller should look at
// the latch's First() error, not this one, to learn what actually failed.
var ErrAborted = errors.New("orchestrate: aborted due to a peer failure")
