// Package foreground provides a single goroutine that runs posted tasks in
// order. The SDK uses it as the caller's scheduling context: ad state changes
// and result callbacks all execute there, one at a time.
package foreground

import (
	"sync"

	"go.uber.org/zap"
)

// Loop runs posted functions sequentially on one goroutine. Posting never
// blocks; the queue is unbounded.
type Loop struct {
	logger *zap.Logger

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []func()
	closed bool
	done   chan struct{}
}

// New starts a loop. Close must be called to stop it.
func New(logger *zap.Logger) *Loop {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Loop{
		logger: logger.Named("foreground"),
		done:   make(chan struct{}),
	}
	l.cond = sync.NewCond(&l.mu)
	go l.run()
	return l
}

// Post queues fn for execution. It reports false if the loop is closed, in
// which case fn is not run.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return false
	}
	l.queue = append(l.queue, fn)
	l.cond.Signal()
	return true
}

// Do runs fn on the loop and waits for it to return. It reports false without
// running fn if the loop is closed. Do must not be called from a task already
// running on the loop.
func (l *Loop) Do(fn func()) bool {
	ran := make(chan struct{})
	if !l.Post(func() {
		defer close(ran)
		fn()
	}) {
		return false
	}
	<-ran
	return true
}

// Flush waits until every task posted before the call has run.
func (l *Loop) Flush() {
	l.Do(func() {})
}

// Stop stops accepting tasks and returns without waiting. Tasks already
// queued still run. Unlike Close, it may be called from a task on the loop.
func (l *Loop) Stop() {
	l.mu.Lock()
	if !l.closed {
		l.closed = true
		l.cond.Signal()
	}
	l.mu.Unlock()
}

// Done is closed once the loop goroutine has run its last task.
func (l *Loop) Done() <-chan struct{} { return l.done }

// Close stops accepting tasks, runs everything already queued and waits for
// the loop goroutine to exit. It is safe to call more than once, but not from
// a task running on the loop; use Stop there.
func (l *Loop) Close() {
	l.Stop()
	<-l.done
}

func (l *Loop) run() {
	defer close(l.done)
	for {
		l.mu.Lock()
		for len(l.queue) == 0 && !l.closed {
			l.cond.Wait()
		}
		if len(l.queue) == 0 && l.closed {
			l.mu.Unlock()
			return
		}
		fn := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.mu.Unlock()

		l.exec(fn)
	}
}

// exec runs one task, keeping the loop alive if it panics.
func (l *Loop) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("foreground task panicked", zap.Any("panic", r), zap.Stack("stack"))
		}
	}()
	fn()
}
