package parwork

import (
	"sync"
)

var (
	globalMu       sync.Mutex
	globalExecutor *Executor
)

func ensureExecutor() *Executor {
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalExecutor == nil {
		globalExecutor = New(DefaultThreadCount())
	}
	return globalExecutor
}

// Ensures that the global executor is started. threads sets the number of
// workers; pass no argument to use one worker per CPU. Has no effect if the
// global executor is already running.
func Start(threads ...int) {
	if len(threads) == 0 {
		ensureExecutor()
		return
	}
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalExecutor == nil {
		globalExecutor = New(threads[0])
	}
}

// Submits a job to the global executor, starting it first if necessary.
// See (*Executor).Submit.
func Submit(fn func()) error {
	return ensureExecutor().Submit(fn)
}

// Stops the global executor, discarding any jobs still queued. The global
// executor may be started again afterwards.
func Shutdown() {
	globalMu.Lock()
	exec := globalExecutor
	globalExecutor = nil
	globalMu.Unlock()
	if exec != nil {
		exec.Close()
	}
}
