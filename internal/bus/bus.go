// Package bus implements the single-consumer dispatch queue that serializes
// every proof-tree, scheduler, and UI mutation onto one goroutine.
//
// Producers (the stdout/stderr reader goroutines, the UI key-reader) never
// mutate shared state directly; they enqueue a closure. The dispatcher
// drains the queue on its own goroutine, swapping it for a fresh empty slice
// before running the batch so producers never block on a callback in
// progress.
package bus

import "sync"

// Dispatcher is a FIFO of zero-argument actions, executed in arrival order
// by exactly one goroutine.
type Dispatcher struct {
	mu      sync.Mutex
	cond    *sync.Cond
	queue   []func()
	stopped bool
}

// New creates a Dispatcher. Call Run to start consuming, typically in its
// own goroutine via life.Guard.Go.
func New() *Dispatcher {
	d := &Dispatcher{}
	d.cond = sync.NewCond(&d.mu)
	return d
}

// Post enqueues action for later execution on the dispatcher goroutine. Safe
// to call from any goroutine, including the dispatcher's own.
func (d *Dispatcher) Post(action func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.queue = append(d.queue, action)
	d.cond.Signal()
}

// Stop wakes the dispatcher and causes Run to return once any in-flight
// batch finishes draining. Pending actions enqueued after Stop are dropped.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.cond.Signal()
}

// Run blocks, executing posted actions in order, until Stop is called. It is
// meant to be the body of a single dedicated goroutine.
func (d *Dispatcher) Run() {
	for {
		batch := d.takeBatch()
		if batch == nil {
			return
		}
		for _, action := range batch {
			action()
		}
	}
}

// takeBatch blocks until there is work or the dispatcher has been stopped,
// then atomically swaps the queue for a fresh one and returns the drained
// batch. A nil return means Run should exit.
func (d *Dispatcher) takeBatch() []func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for len(d.queue) == 0 && !d.stopped {
		d.cond.Wait()
	}
	if len(d.queue) == 0 && d.stopped {
		return nil
	}
	batch := d.queue
	d.queue = nil
	return batch
}
