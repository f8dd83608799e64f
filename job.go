package parwork

import (
	eq "github.com/eapache/queue"
)

// Keeping an unbounded free list would pin the high-water mark of a burst
// forever; past this many spare records the pool hands them to the GC.
const maxPooledJobs = 1024

// A job is a unit of work queued on an executor. The record is allocated
// from the local pool of the queue it was submitted to and carries a
// back-pointer to that queue: a stolen job still executes on another worker,
// but its record must be recycled through the pool it came from, under that
// queue's lock.
type job struct {
	fn    func()
	owner *queue
}

// jobPool is a per-queue free list of job records. It does no locking of its
// own; every call happens under the owning queue's mutex.
type jobPool struct {
	free *eq.Queue
}

func newJobPool() *jobPool {
	return &jobPool{free: eq.New()}
}

// Returns a job record, reusing a previously recycled one when available.
// The caller must hold the owning queue's mutex.
func (p *jobPool) get() *job {
	if p.free.Length() > 0 {
		return p.free.Remove().(*job)
	}
	return &job{}
}

// Recycles a job record. The callable is dropped first so the free list does
// not keep the job's captures alive. The caller must hold the owning queue's
// mutex.
func (p *jobPool) put(j *job) {
	j.fn = nil
	j.owner = nil
	if p.free.Length() < maxPooledJobs {
		p.free.Add(j)
	}
}

// Recycles a finished or abandoned job through the queue that allocated it.
// This is the one place a worker may touch a queue other than its own with a
// single lock: the record goes back where it came from, even after a steal.
func (j *job) release() {
	owner := j.owner
	owner.mu.Lock()
	owner.pool.put(j)
	owner.mu.Unlock()
}
