package goform

import (
	"sync"
	"time"
)

// DefaultLoadingDelay is how long a status change takes to reach the loading
// flag, so fast round-trips still show feedback.
const DefaultLoadingDelay = 400 * time.Millisecond

// timer is the part of *time.Timer the indicator needs.
type timer interface {
	Stop() bool
}

// Loading derives the "show a spinner" flag from the submission status:
// true while Submitting or Succeeded, applied after a delay that restarts on
// every status change.
type Loading struct {
	delay     time.Duration
	afterFunc func(time.Duration, func()) timer

	mu      sync.Mutex
	on      bool
	gen     uint64
	pending timer
	subs    []func(bool)
}

// NewLoading builds an indicator. delay == 0 selects DefaultLoadingDelay and a
// negative delay applies changes immediately.
func NewLoading(delay time.Duration) *Loading {
	if delay == 0 {
		delay = DefaultLoadingDelay
	}
	return &Loading{
		delay: delay,
		afterFunc: func(d time.Duration, f func()) timer {
			return time.AfterFunc(d, f)
		},
	}
}

// On reports the current flag.
func (l *Loading) On() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.on
}

// OnChange registers fn for flag changes. fn runs on the timer goroutine.
func (l *Loading) OnChange(fn func(bool)) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	l.subs = append(l.subs, fn)
	l.mu.Unlock()
}

// Observe schedules the flag for status s, cancelling any earlier schedule.
func (l *Loading) Observe(s Status) {
	target := s == Submitting || s == Succeeded

	l.mu.Lock()
	l.gen++
	gen := l.gen
	if l.pending != nil {
		l.pending.Stop()
		l.pending = nil
	}
	if l.delay < 0 {
		l.mu.Unlock()
		l.apply(gen, target)
		return
	}
	l.pending = l.afterFunc(l.delay, func() { l.apply(gen, target) })
	l.mu.Unlock()
}

// Stop cancels a pending change.
func (l *Loading) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen++
	if l.pending != nil {
		l.pending.Stop()
		l.pending = nil
	}
}

func (l *Loading) apply(gen uint64, on bool) {
	l.mu.Lock()
	if gen != l.gen {
		// superseded by a later status change
		l.mu.Unlock()
		return
	}
	l.pending = nil
	changed := l.on != on
	l.on = on
	subs := append([]func(bool){}, l.subs...)
	l.mu.Unlock()

	if !changed {
		return
	}
	for _, fn := range subs {
		fn(on)
	}
}
