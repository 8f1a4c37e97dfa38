package navigation

import (
	"context"
	"sync"
)

// Dispatcher runs persistence tasks outside the caller's goroutine.
type Dispatcher interface {
	// Dispatch queues task. Tasks submitted after Close are dropped.
	Dispatch(task func(ctx context.Context))
	// Wait blocks until every queued task has finished or ctx is done.
	Wait(ctx context.Context) error
	// Close drains the queue and releases the dispatcher.
	Close() error
}

// SerialDispatcher runs tasks on a single worker goroutine in the order they
// were dispatched. Dispatch never blocks.
type SerialDispatcher struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	queue  []func(context.Context)
	closed bool
	wake   chan struct{}
	done   chan struct{}
	track  tracker
}

// NewSerialDispatcher starts the worker goroutine.
func NewSerialDispatcher() *SerialDispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	d := &SerialDispatcher{
		ctx:    ctx,
		cancel: cancel,
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	go d.run()
	return d
}

// Dispatch implements [Dispatcher].
func (d *SerialDispatcher) Dispatch(task func(ctx context.Context)) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.queue = append(d.queue, task)
	d.track.add()
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
}

func (d *SerialDispatcher) run() {
	defer close(d.done)
	for {
		task, ok, closed := d.next()
		if ok {
			task(d.ctx)
			d.track.done()
			continue
		}
		if closed {
			return
		}
		<-d.wake
	}
}

func (d *SerialDispatcher) next() (func(context.Context), bool, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.queue) == 0 {
		return nil, false, d.closed
	}
	task := d.queue[0]
	d.queue[0] = nil
	d.queue = d.queue[1:]
	return task, true, false
}

// Wait implements [Dispatcher].
func (d *SerialDispatcher) Wait(ctx context.Context) error { return d.track.wait(ctx) }

// Close stops accepting tasks, runs the ones already queued and waits for the
// worker to exit.
func (d *SerialDispatcher) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
	<-d.done
	d.cancel()
	return nil
}

// InlineDispatcher runs each task synchronously inside Dispatch.
type InlineDispatcher struct{}

// Dispatch implements [Dispatcher].
func (InlineDispatcher) Dispatch(task func(ctx context.Context)) { task(context.Background()) }

// Wait implements [Dispatcher].
func (InlineDispatcher) Wait(context.Context) error { return nil }

// Close implements [Dispatcher].
func (InlineDispatcher) Close() error { return nil }

// tracker counts outstanding work and lets callers wait for it to reach zero.
// The zero value is ready to use.
type tracker struct {
	mu   sync.Mutex
	n    int
	idle chan struct{}
}

func (t *tracker) add() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.n == 0 {
		t.idle = make(chan struct{})
	}
	t.n++
}

func (t *tracker) done() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.n--
	if t.n == 0 {
		close(t.idle)
	}
}

func (t *tracker) wait(ctx context.Context) error {
	t.mu.Lock()
	if t.n == 0 {
		t.mu.Unlock()
		return nil
	}
	idle := t.idle
	t.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
