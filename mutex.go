package parwork

import (
	"sort"
	"sync"
	"sync/atomic"
)

// Mutex is a deadlock-free mutual exclusion lock. Goroutines may acquire any
// number of Mutexes in any order at any call site: whenever an acquisition
// contends, the goroutine releases every Mutex it holds that ranks above the
// contended one, blocks on the contended one, and re-acquires the released
// set in rank order. Every goroutine that holds several Mutexes therefore
// holds them in one global order, so a waits-for cycle cannot close.
//
// The lock is re-entrant: a goroutine may lock a Mutex it already holds, and
// must unlock it as many times.
//
// The zero value is ready to use.
type Mutex struct {
	base reentrantLock

	// Rank in the global acquisition order, assigned on first use.
	rank atomic.Uint64
}

var mutexRanks atomic.Uint64

// A Mutex's place in the total order, assigned lazily from a global counter
// so that the zero value works.
func (m *Mutex) order() uint64 {
	if r := m.rank.Load(); r != 0 {
		return r
	}
	m.rank.CompareAndSwap(0, mutexRanks.Add(1))
	return m.rank.Load()
}

// Locks the mutex, releasing and re-acquiring higher-ranked held Mutexes if
// it contends.
func (m *Mutex) Lock() {
	gid := goroutineID()
	table := heldLocks(gid)

	if m.base.tryLock(gid) {
		table.insert(m)
		return
	}

	// Contended. Record the acquisition first; its position in the table
	// identifies which held Mutexes rank above it.
	pos := table.insert(m)
	above := table.entries[pos+1:]

	for _, held := range above {
		held.base.unlock(gid)
	}
	m.base.lock(gid)
	for _, held := range above {
		held.base.lock(gid)
	}
}

// Tries to lock the mutex without blocking on it. Higher-ranked held Mutexes
// are still released and re-acquired around the attempt. Returns whether the
// lock was taken.
func (m *Mutex) TryLock() bool {
	gid := goroutineID()
	table := heldLocks(gid)

	if m.base.tryLock(gid) {
		table.insert(m)
		return true
	}

	pos := table.insert(m)
	above := table.entries[pos+1:]

	for _, held := range above {
		held.base.unlock(gid)
	}
	ok := m.base.tryLock(gid)
	for _, held := range above {
		held.base.lock(gid)
	}
	if !ok {
		table.remove(pos)
		dropIfEmpty(gid, table)
	}
	return ok
}

// Unlocks the mutex.
func (m *Mutex) Unlock() {
	gid := goroutineID()
	table := heldLocks(gid)

	m.base.unlock(gid)
	table.erase(m)
	dropIfEmpty(gid, table)
}

// reentrantLock is a mutex that the owning goroutine may re-acquire. The
// relock step above may take a lock the goroutine already holds through
// another entry in its table, so plain sync.Mutex is not enough underneath.
type reentrantLock struct {
	mu    sync.Mutex
	owner atomic.Uint64
	count int
}

func (l *reentrantLock) tryLock(gid uint64) bool {
	if l.owner.Load() == gid {
		l.count++
		return true
	}
	if !l.mu.TryLock() {
		return false
	}
	l.owner.Store(gid)
	l.count = 1
	return true
}

func (l *reentrantLock) lock(gid uint64) {
	if l.owner.Load() == gid {
		l.count++
		return
	}
	l.mu.Lock()
	l.owner.Store(gid)
	l.count = 1
}

func (l *reentrantLock) unlock(gid uint64) {
	if l.owner.Load() != gid {
		panic("parwork: unlock of a Mutex not held by this goroutine")
	}
	l.count--
	if l.count == 0 {
		l.owner.Store(0)
		l.mu.Unlock()
	}
}

// lockTable is one goroutine's multiset of held Mutexes, kept sorted by
// rank. Re-entrant acquisitions add entries. Only the owning goroutine ever
// touches its table.
type lockTable struct {
	entries []*Mutex
}

// Inserts m at the upper bound of its rank and returns the index, so that
// everything after the index ranks strictly above m.
func (t *lockTable) insert(m *Mutex) int {
	rank := m.order()
	i := sort.Search(len(t.entries), func(i int) bool {
		return t.entries[i].order() > rank
	})
	t.entries = append(t.entries, nil)
	copy(t.entries[i+1:], t.entries[i:])
	t.entries[i] = m
	return i
}

func (t *lockTable) remove(i int) {
	copy(t.entries[i:], t.entries[i+1:])
	t.entries = t.entries[:len(t.entries)-1]
}

// Erases one entry for m.
func (t *lockTable) erase(m *Mutex) {
	for i, held := range t.entries {
		if held == m {
			t.remove(i)
			return
		}
	}
}

// Held-lock tables by goroutine id. Entries are created on a goroutine's first
// lock attempt and dropped when the goroutine holds nothing, so the map stays
// small.
var (
	lockTablesMu sync.Mutex
	lockTables   = make(map[uint64]*lockTable)
)

func heldLocks(gid uint64) *lockTable {
	lockTablesMu.Lock()
	t := lockTables[gid]
	if t == nil {
		t = &lockTable{}
		lockTables[gid] = t
	}
	lockTablesMu.Unlock()
	return t
}

func dropIfEmpty(gid uint64, t *lockTable) {
	if len(t.entries) != 0 {
		return
	}
	lockTablesMu.Lock()
	if len(t.entries) == 0 {
		delete(lockTables, gid)
	}
	lockTablesMu.Unlock()
}
