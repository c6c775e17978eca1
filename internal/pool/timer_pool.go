// Package pool provides reusable timers for the transport's retry and
// shutdown waits, which arm and discard timers on every driver tick.
package pool

import (
	"sync"
	"time"
)

var timerPool sync.Pool

// GetTimer returns a pooled timer armed with duration d.
//
// Release it with PutTimer when it is no longer needed.
func GetTimer(d time.Duration) *time.Timer {
	v := timerPool.Get()
	if v == nil {
		return time.NewTimer(d)
	}

	t, _ := v.(*time.Timer) // the pool only ever holds *time.Timer
	if t.Reset(d) {
		// The timer was still active; drain a fire that may have raced in.
		select {
		case <-t.C:
		default:
		}
	}

	return t
}

// PutTimer stops t and returns it to the pool.
//
// The caller must not use t afterwards.
func PutTimer(t *time.Timer) {
	if !t.Stop() {
		// Drain the fire the caller did not consume.
		select {
		case <-t.C:
		default:
		}
	}
	timerPool.Put(t)
}
