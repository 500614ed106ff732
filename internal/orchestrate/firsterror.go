package orchestrate

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

// firstLatch accumulates at most one error: the first one observed by any
// cooperating worker. Later errors are logged and discarded. Every worker's
// sleep/poll loop checks IsSet before continuing, so all workers unwind
// within one poll interval of the first failure (P7).
type firstLatch struct {
	mu    sync.Mutex
	first error
}

// SetIfNil records err as the first failure if none is set yet; a failure
// recorded after the first is logged and ignored.
func (f *firstLatch) SetIfNil(err error) {
	if err == nil {
		return
	}
	f.mu.Lock()
	if f.first == nil {
		f.first = err
	} else {
		log.WithField("error", err).Debug("orchestrate: ignoring subsequent error after first failure")
	}
	f.mu.Unlock()
}

// IsSet reports whether a failure has been recorded.
func (f *firstLatch) IsSet() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.first != nil
}

// First returns the recorded failure, or nil if none occurred.
func (f *firstLatch) First() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.first
}
