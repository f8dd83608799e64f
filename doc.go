// parwork is a fixed-size worker pool with work stealing for Go programs. It
// queues and executes opaque jobs across a set of worker goroutines, each
// with its own queue and local job pool; idle workers steal the newer half
// of a busy neighbour's queue.
//
// A global executor is provided for simple use-cases. To use it:
//
//	import (
//		"git.sr.ht/~sircmpwn/parwork"
//	)
//
//	// ...
//	parwork.Submit(func() {
//		// Work to be done in the background...
//	})
//
// The job will be executed in the background on one of the pool's workers,
// chosen in round-robin fashion. The first time a job is submitted to the
// global executor, it will be initialized with one worker per CPU and start
// running in the background.
//
// You may also manage your own executors. Use New() to obtain an executor,
// Executor.Submit() to enqueue jobs, and Executor.Close() to stop the
// workers, discarding any jobs still queued:
//
//	exec := parwork.New(4)
//	defer exec.Close()
//
//	done := parwork.NewCounter[int](0)
//	for i := 0; i < 100; i++ {
//		done.Inc()
//		exec.Submit(func() {
//			defer done.DecSignal()
//			// ...
//		})
//	}
//	done.Wait()
//
// A job which is about to block its worker for a long time may call
// ReleaseCurrentWorker() first; the executor installs a replacement worker
// on the queue so that the remaining jobs keep flowing.
//
// The package also provides the synchronization primitives pools are
// commonly driven with: Event, Future, Counter, Semaphore, and a
// deadlock-free Mutex which tolerates inconsistent lock ordering between
// goroutines.
package parwork
