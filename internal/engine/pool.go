package engine

import (
	"context"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
)

// pool is a fixed set of execution goroutines. The same pool runs all
// scatter tasks to completion and then all merge tasks; when task count
// exceeds pool size the excess queue inside ants.
type pool struct {
	inner *ants.Pool
}

func newPool(size int) (*pool, error) {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	p, err := ants.NewPool(size)
	if err != nil {
		return nil, err
	}
	return &pool{inner: p}, nil
}

// submit schedules fn and routes its error to collect. The WaitGroup is the
// counting latch the coordinator blocks on at the phase barrier.
func (p *pool) submit(wg *sync.WaitGroup, fn func() error, collect func(error)) {
	wg.Add(1)
	if err := p.inner.Submit(func() {
		defer wg.Done()
		collect(fn())
	}); err != nil {
		wg.Done()
		collect(err)
	}
}

func (p *pool) release() { p.inner.Release() }

// firstError keeps the first error any task reports and trips the phase
// context so sibling tasks stop at their next cancellation poll.
type firstError struct {
	mu     sync.Mutex
	err    error
	cancel context.CancelFunc
}

func (f *firstError) report(err error) {
	if err == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err == nil {
		f.err = err
		if f.cancel != nil {
			f.cancel()
		}
	}
}

func (f *firstError) get() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}
