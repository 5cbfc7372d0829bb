package manager

import (
	"context"
	"time"

	"github.com/xfce-go/xsmd/internal/arch"
)

// Loop serializes every mutation of a Manager onto a single goroutine: the
// one thread that multiplexes XSMP/ICE I/O readiness callbacks, timer
// expirations, and external IPC method calls, so no lock is ever needed
// across the manager's queues.
type Loop struct {
	tasks chan func()
}

// NewLoop returns a Loop with a buffered task queue. The buffer absorbs
// bursts (a global SaveYourself fanning out to many clients at once)
// without blocking the transport goroutines that call Submit.
func NewLoop() *Loop {
	return &Loop{tasks: make(chan func(), 256)}
}

// Submit enqueues a task to run on the loop goroutine. Safe to call from
// any goroutine. Submit never blocks the caller except under sustained
// backpressure past the buffer size, which indicates the loop itself is
// stuck.
func (l *Loop) Submit(task func()) {
	l.tasks <- task
}

// Run drains tasks until ctx is cancelled or done is closed, whichever
// comes first. It must be invoked from exactly one goroutine.
func (l *Loop) Run(ctx context.Context, done <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case task := <-l.tasks:
			task()
		}
	}
}

// SerializingTimeProvider wraps a base arch.TimeProvider so that timer
// callbacks fire through Submit instead of on the timer's own goroutine,
// keeping every Manager mutation on the single loop goroutine.
type SerializingTimeProvider struct {
	Base arch.TimeProvider
	Loop *Loop
}

func (s SerializingTimeProvider) Now() time.Time {
	return s.Base.Now()
}

func (s SerializingTimeProvider) AfterFunc(d time.Duration, f func()) arch.Timer {
	return s.Base.AfterFunc(d, func() {
		s.Loop.Submit(f)
	})
}
