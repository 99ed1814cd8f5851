package parallel

import (
	"runtime"
	"sync"
)

type (
	WorkerFunc func(func())
	WaitFunc   func(done bool)
	CancelFunc func()
)

// Pool runs submitted jobs on a fixed set of goroutines. With a single
// worker jobs run inline on the caller.
type Pool struct {
	wg      sync.WaitGroup
	workers int
	Do      WorkerFunc
	Wait    WaitFunc
	Cancel  CancelFunc
}

func Start(numWorkers int) *Pool {
	if numWorkers < 1 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	pool := &Pool{
		workers: numWorkers,
		Do: func(f func()) {
			f()
		},
		Wait:   func(bool) {},
		Cancel: func() {},
	}

	if numWorkers > 1 {
		jobs := make(chan func(), numWorkers)

		for range numWorkers {
			pool.wg.Go(func() {
				for f := range jobs {
					f()
				}
			})
		}

		pool.Do = func(f func()) {
			jobs <- f
		}
		pool.Cancel = sync.OnceFunc(func() { close(jobs) })
		pool.Wait = func(done bool) {
			if done {
				pool.Cancel()
			}
			pool.wg.Wait()
		}
	}

	return pool
}

func (p *Pool) Workers() int {
	return p.workers
}

// ForEach submits fn once per item and waits for all of them. The pool
// cannot take more work afterwards.
func ForEach[T any](do WorkerFunc, wait WaitFunc, items []T, fn func(T)) {
	for _, item := range items {
		do(func() { fn(item) })
	}
	wait(true)
}
