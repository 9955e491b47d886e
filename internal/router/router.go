// Package router serializes asynchronous pushes into a single ordered command stream. Radio
// callbacks (scan sightings, connection updates, characteristic notifications) must never mutate
// session state directly; they post a command here, and exactly one consuming goroutine executes
// commands in arrival order. Commands posted while another command runs are processed after
// everything already queued.
package router

import (
	"context"
	"sync"

	"github.com/epdlink/panel-command/internal/log"
)

// Router owns an unbounded FIFO queue of commands and the single goroutine that drains it.
type Router struct {
	mu      sync.Mutex
	wake    *sync.Cond
	queue   []func()
	running bool
	stopped bool
	done    chan struct{}
}

func New() *Router {
	r := &Router{done: make(chan struct{})}
	r.wake = sync.NewCond(&r.mu)
	return r
}

// Start launches the consuming goroutine. Returns an error if ctx expires before the consumer is
// ready, mirroring the contract of long-lived service starters elsewhere in this module.
func (r *Router) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running || r.stopped {
		r.mu.Unlock()
		return nil
	}
	r.running = true
	r.mu.Unlock()

	ready := make(chan struct{})
	go r.drain(ready)
	select {
	case <-ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Post places fn at the back of the queue. It never blocks. Commands posted after Stop are
// dropped, since the session they would have mutated is gone; Post reports whether the command
// was accepted so callers waiting on a command's side effects can bail out.
func (r *Router) Post(fn func()) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		log.Debug("router: dropping command posted after stop")
		return false
	}
	r.queue = append(r.queue, fn)
	r.wake.Signal()
	return true
}

// Stop terminates the consumer after the command currently executing (if any) returns. Queued but
// unprocessed commands are discarded. Stop is idempotent and safe to call from any goroutine
// except the consumer itself.
func (r *Router) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	running := r.running
	r.wake.Signal()
	r.mu.Unlock()
	if running {
		<-r.done
	}
}

func (r *Router) drain(ready chan<- struct{}) {
	defer close(r.done)
	close(ready)
	for {
		r.mu.Lock()
		for len(r.queue) == 0 && !r.stopped {
			r.wake.Wait()
		}
		if r.stopped {
			r.mu.Unlock()
			return
		}
		fn := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()

		fn()
	}
}
