// Worker pool for parallel indexing.
//
// The divide-and-conquer indexer forks one half of each split onto the
// pool and computes the other half on the calling goroutine. The pool is
// a weighted semaphore: when no slot is free the fork simply runs inline,
// so indexing never blocks waiting for parallelism it can live without.
package lines

import (
	"runtime"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Pool bounds the number of goroutines used during index construction.
// The zero Pool is not usable; use NewPool or leave Config.Pool nil to
// share the process-wide default.
type Pool struct {
	sem *semaphore.Weighted
}

// NewPool returns a pool allowing up to n concurrent indexing goroutines.
// n < 1 is treated as 1.
func NewPool(n int) *Pool {
	if n < 1 {
		n = 1
	}
	return &Pool{sem: semaphore.NewWeighted(int64(n))}
}

// tryAcquire claims a slot without blocking. Callers that fail to acquire
// do the work inline instead.
func (p *Pool) tryAcquire() bool {
	return p.sem.TryAcquire(1)
}

func (p *Pool) release() {
	p.sem.Release(1)
}

// The default pool is shared by every File that does not supply its own.
// Created lazily on first use and lives for the process lifetime.
var (
	defaultPool     *Pool
	defaultPoolOnce sync.Once
)

func sharedPool() *Pool {
	defaultPoolOnce.Do(func() {
		defaultPool = NewPool(runtime.NumCPU())
	})
	return defaultPool
}
