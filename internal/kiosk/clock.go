package kiosk

import "time"

// Clock schedules deferred work. The real implementation wraps time.AfterFunc;
// tests inject a fake to drive the idle machinery deterministically.
type Clock interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// Timer is a single pending callback. Stop reports whether the callback was
// prevented from running.
type Timer interface {
	Stop() bool
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// NewClock returns a Clock backed by the runtime timers.
func NewClock() Clock { return realClock{} }
