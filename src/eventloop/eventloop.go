package eventloop

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// ErrStopped is returned by Run after Stop.
var ErrStopped = errors.New("event loop stopped")

// Loop is a single-goroutine cooperative dispatcher. Work posted with Post runs
// on the loop goroutine in arrival order; work posted while an iteration is
// running is picked up by the next iteration, never the current one.
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	wake    chan struct{}
	stop    chan struct{}
	stopped atomic.Bool
	tasks   []*periodic
}

type periodic struct {
	every  time.Duration
	fn     func()
	queued atomic.Bool
}

func New() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
		stop: make(chan struct{}),
	}
}

// Post queues fn for the next iteration. Safe to call from any goroutine.
func (l *Loop) Post(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Every registers fn to run on the loop every d once Run starts. A tick is
// skipped while the previous one is still queued.
func (l *Loop) Every(d time.Duration, fn func()) {
	if d <= 0 || fn == nil {
		return
	}
	l.tasks = append(l.tasks, &periodic{every: d, fn: fn})
}

// Stop makes Run return after the current iteration.
func (l *Loop) Stop() {
	if l.stopped.CompareAndSwap(false, true) {
		close(l.stop)
	}
}

// RunPending runs one iteration: everything queued before the call, in order.
// It reports how many functions ran.
func (l *Loop) RunPending() int {
	l.mu.Lock()
	batch := l.queue
	l.queue = nil
	l.mu.Unlock()
	for _, fn := range batch {
		fn()
	}
	return len(batch)
}

// Drain runs iterations until the queue is empty or max iterations have run.
func (l *Loop) Drain(max int) {
	for i := 0; i < max; i++ {
		if l.RunPending() == 0 {
			return
		}
	}
}

// Run dispatches queued work until ctx is done or Stop is called.
func (l *Loop) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	for _, t := range l.tasks {
		go l.tick(ctx, t)
	}
	for {
		l.RunPending()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.stop:
			return ErrStopped
		case <-l.wake:
		}
	}
}

func (l *Loop) tick(ctx context.Context, t *periodic) {
	ticker := time.NewTicker(t.every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !t.queued.CompareAndSwap(false, true) {
				continue
			}
			l.Post(func() {
				t.queued.Store(false)
				t.fn()
			})
		}
	}
}
