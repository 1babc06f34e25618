// Package optimistic implements the write contract used by the signup
// flow: the caller gets a provisional success as soon as the write is
// queued, while a background worker performs it, retries transient
// failures, and publishes permanent failures to a feed the UI can poll.
package optimistic

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// WriteFunc performs the actual store write.
type WriteFunc func(ctx context.Context) error

// Failure describes a write that was given up on.
type Failure struct {
	Op     string    `json:"op"`
	Detail string    `json:"detail"`
	At     time.Time `json:"at"`
}

type job struct {
	op string
	fn WriteFunc
}

// Writer is a single-worker async write queue.
type Writer struct {
	log      *zap.SugaredLogger
	jobs     chan job
	timeout  time.Duration
	attempts int

	mu       sync.Mutex
	failures []Failure
	feedCap  int

	closeMu   sync.RWMutex
	closed    bool
	closeOnce sync.Once
	done      chan struct{}
}

// ErrQueueFull is returned by Enqueue when the writer cannot accept
// more work; callers treat it like any other store failure.
var ErrQueueFull = errors.New("optimistic writer queue is full")

// ErrClosed is returned by Enqueue once Close has been called.
var ErrClosed = errors.New("optimistic writer is closed")

// NewWriter starts the worker goroutine. feedCap bounds how many
// failures are retained for the feed; older entries fall off.
func NewWriter(log *zap.SugaredLogger, queueSize, feedCap int, timeout time.Duration) *Writer {
	if queueSize <= 0 {
		queueSize = 64
	}
	if feedCap <= 0 {
		feedCap = 32
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	w := &Writer{
		log:      log,
		jobs:     make(chan job, queueSize),
		timeout:  timeout,
		attempts: 3,
		feedCap:  feedCap,
		done:     make(chan struct{}),
	}
	go w.run()
	return w
}

// Enqueue hands a write to the worker without waiting for it. op names
// the operation in logs and the failure feed.
func (w *Writer) Enqueue(op string, fn WriteFunc) error {
	w.closeMu.RLock()
	defer w.closeMu.RUnlock()
	if w.closed {
		return ErrClosed
	}
	select {
	case w.jobs <- job{op: op, fn: fn}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Failures returns a snapshot of the recent permanent failures, newest
// last.
func (w *Writer) Failures() []Failure {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Failure, len(w.failures))
	copy(out, w.failures)
	return out
}

// Close stops accepting work and waits for queued writes to finish.
func (w *Writer) Close() {
	w.closeOnce.Do(func() {
		w.closeMu.Lock()
		w.closed = true
		close(w.jobs)
		w.closeMu.Unlock()
		<-w.done
	})
}

func (w *Writer) run() {
	defer close(w.done)
	for j := range w.jobs {
		w.execute(j)
	}
}

func (w *Writer) execute(j job) {
	var err error
	for attempt := 1; attempt <= w.attempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		err = j.fn(ctx)
		cancel()
		if err == nil {
			return
		}
		w.log.Warnw("optimistic write attempt failed",
			"op", j.op, "attempt", attempt, "error", err)
		if attempt < w.attempts {
			time.Sleep(time.Duration(attempt) * 100 * time.Millisecond)
		}
	}

	w.log.Errorw("optimistic write abandoned", "op", j.op, "error", err)
	w.mu.Lock()
	w.failures = append(w.failures, Failure{Op: j.op, Detail: err.Error(), At: time.Now().UTC()})
	if len(w.failures) > w.feedCap {
		w.failures = w.failures[len(w.failures)-w.feedCap:]
	}
	w.mu.Unlock()
}
