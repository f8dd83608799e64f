package parwork

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// Returned when a job is submitted to an executor that has been closed.
	ErrExecutorClosed = errors.New("This executor has been closed")

	// Returned when ReleaseCurrentWorker is called from a goroutine that is
	// not running a job on an executor.
	ErrNotWorkerThread = errors.New("The calling goroutine is not an executor worker")

	// Returned when ReleaseCurrentWorker is called twice from the same job.
	ErrWorkerDetached = errors.New("The current worker has already been released")
)

// Executor runs submitted jobs across a fixed set of worker goroutines, one
// queue per worker, stealing work between queues to keep the workers busy.
type Executor struct {
	id     string
	logger *zap.Logger

	// Queues are chosen in round-robin fashion; the counter only has to
	// hand out distinct values, wraparound is benign.
	next   atomic.Uint64
	queues []*queue

	stealThreshold int

	stopped atomic.Bool
	closed  atomic.Bool
	wg      sync.WaitGroup

	// Protects the two worker lists. The queue count is fixed for the
	// executor's life, but the worker list grows when jobs release their
	// workers.
	workerMu   sync.Mutex
	allWorkers []*worker
	released   []*worker

	// statistics, exported through the prometheus collector
	submitted atomic.Uint64
	completed atomic.Uint64
	stolen    atomic.Uint64
	steals    atomic.Uint64
}

// Option configures an executor at construction.
type Option func(*Executor)

// Sets the logger used for lifecycle events and recovered job panics. The
// default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Executor) {
		e.logger = logger
	}
}

// Sets the minimum number of jobs a queue must hold before half of it may be
// stolen. The default is 8.
func WithStealThreshold(n int) Option {
	return func(e *Executor) {
		if n < 2 {
			panic(errors.New("Invalid input to WithStealThreshold"))
		}
		e.stealThreshold = n
	}
}

// The number of workers New uses when none is given: one per CPU.
func DefaultThreadCount() int {
	return runtime.NumCPU()
}

// Creates a new executor with the given number of workers and starts them.
// Panics if threads is zero or negative.
func New(threads int, opts ...Option) *Executor {
	if threads <= 0 {
		panic(errors.New("Invalid thread count provided to New"))
	}

	e := &Executor{
		id:             uuid.New().String(),
		logger:         zap.NewNop(),
		stealThreshold: defaultStealThreshold,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.queues = make([]*queue, threads)
	for i := range e.queues {
		e.queues[i] = newQueue()
	}

	e.allWorkers = make([]*worker, 0, threads)
	for i := range e.queues {
		w := newWorker(e, e.queues[i])
		e.allWorkers = append(e.allWorkers, w)
		e.wg.Add(1)
		go w.run()
	}

	e.logger.Info("executor started",
		zap.String("executor", e.id),
		zap.Int("threads", threads))
	return e
}

// Returns the number of worker queues. Constant for the executor's life.
func (e *Executor) ThreadCount() int {
	return len(e.queues)
}

// Submits a job for execution on one of the pool's workers, chosen in
// round-robin fashion. Safe to call from any goroutine, including from jobs.
// Returns ErrExecutorClosed once Close has begun.
func (e *Executor) Submit(fn func()) error {
	if e.stopped.Load() {
		return ErrExecutorClosed
	}
	idx := e.next.Add(1) % uint64(len(e.queues))
	e.submitTo(int(idx), fn)
	return nil
}

// Enqueues fn on a specific queue. The job record is allocated from that
// queue's pool inside its critical section; the wake-up is sent after the
// lock is dropped.
func (e *Executor) submitTo(idx int, fn func()) {
	q := e.queues[idx]
	q.push(fn)
	q.cond.Signal()
	e.submitted.Add(1)
}

// Attempts to steal jobs for own from another queue. Victims are scanned
// from the next queue upward, wrapping around; both queue mutexes are taken
// in index order so that two thieves can never close a lock cycle. Returns
// true once a transfer happened.
func (e *Executor) steal(own *queue) bool {
	ownIdx := -1
	for i, q := range e.queues {
		if q == own {
			ownIdx = i
			break
		}
	}

	for n := 1; n < len(e.queues); n++ {
		victimIdx := (ownIdx + n) % len(e.queues)
		victim := e.queues[victimIdx]

		lo, hi := own, victim
		if victimIdx < ownIdx {
			lo, hi = victim, own
		}
		lo.mu.Lock()
		hi.mu.Lock()
		moved := victim.stealHalf(own, e.stealThreshold)
		hi.mu.Unlock()
		lo.mu.Unlock()

		if moved > 0 {
			e.steals.Add(1)
			e.stolen.Add(uint64(moved))
			return true
		}
	}
	return false
}

// Returns the executor whose worker is running the current job, or nil if
// the calling goroutine is not a worker.
func CurrentExecutor() *Executor {
	if w := currentWorker(); w != nil {
		return w.exec
	}
	return nil
}

// Detaches the calling worker from its queue and installs a replacement
// worker on it, reusing a previously released worker when one is in the
// pool (it may still be finishing its own released job).
// Must be called from within a running job; long-running jobs call this
// first so their queue keeps being serviced while they block. When the
// current job finishes, the detached worker parks itself until the executor
// reuses or stops it. Returns once the replacement is responsible for the
// queue.
func ReleaseCurrentWorker() error {
	w := currentWorker()
	if w == nil {
		return ErrNotWorkerThread
	}
	q := w.queue.Load()
	if q == nil {
		return ErrWorkerDetached
	}
	e := w.exec

	// Detach first: when the current job returns, the loop observes the nil
	// pointer and parks.
	w.queue.Store(nil)

	e.workerMu.Lock()
	if n := len(e.released); n > 0 {
		r := e.released[n-1]
		e.released = e.released[:n-1]
		r.queue.Store(q)
		r.wake()
	} else {
		r := newWorker(e, q)
		e.allWorkers = append(e.allWorkers, r)
		e.wg.Add(1)
		go r.run()
	}
	e.released = append(e.released, w)
	e.workerMu.Unlock()

	e.logger.Debug("worker released", zap.String("executor", e.id))
	return nil
}

// Stops the workers and waits for them to exit. Jobs still queued are
// discarded without being executed; jobs already running finish. Submitting
// after Close returns ErrExecutorClosed. Close is idempotent.
func (e *Executor) Close() {
	if !e.closed.CompareAndSwap(false, true) {
		return
	}
	e.stopped.Store(true)

	// Taking each lock before broadcasting orders the stop flag before any
	// waiter's re-check.
	for _, q := range e.queues {
		q.mu.Lock()
		q.mu.Unlock()
		q.cond.Broadcast()
	}

	e.workerMu.Lock()
	workers := make([]*worker, len(e.allWorkers))
	copy(workers, e.allWorkers)
	e.workerMu.Unlock()
	for _, w := range workers {
		w.suspendMu.Lock()
		w.suspendMu.Unlock()
		w.suspendCond.Broadcast()
	}

	e.wg.Wait()

	var dropped int
	for _, q := range e.queues {
		dropped += q.discard()
	}

	e.logger.Info("executor closed",
		zap.String("executor", e.id),
		zap.Uint64("submitted", e.submitted.Load()),
		zap.Uint64("completed", e.completed.Load()),
		zap.Uint64("stolen", e.stolen.Load()),
		zap.Int("dropped", dropped))
}
