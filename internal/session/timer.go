package session

import (
	"sync"
	"time"
)

// retimer is a re-armable single-shot timer. Scheduling replaces any
// pending fire, so repeated arming never stacks callbacks; a stale fire
// from a replaced schedule is dropped.
type retimer struct {
	mu    sync.Mutex
	gen   uint64
	timer *time.Timer
}

func (r *retimer) Schedule(d time.Duration, fire func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen++
	gen := r.gen
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = time.AfterFunc(d, func() {
		r.mu.Lock()
		stale := gen != r.gen
		r.mu.Unlock()
		if stale {
			return
		}
		fire()
	})
}

func (r *retimer) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen++
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}
