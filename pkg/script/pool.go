package script

import (
	"context"
	"sync"
	"time"
)

// Pool keeps between min and max runners of a script engine. Runners are not safe for concurrent
// use, a runner taken from the pool belongs to the caller until it is returned.
type Pool[R any] struct {
	pool        chan R
	newRunner   func() R
	activeCount int
	activeMu    sync.Mutex
	maxSize     int
	minSize     int
}

func NewPool[R any](ctx context.Context, newRunner func() R, maxSize int, minSize int) *Pool[R] {
	if maxSize < minSize {
		panic("vm pool min size is bigger than vm pool max size")
	}
	p := &Pool[R]{
		pool:      make(chan R, maxSize),
		newRunner: newRunner,
		maxSize:   maxSize,
		minSize:   minSize,
	}
	for range minSize {
		p.pool <- newRunner()
		p.activeCount++
	}

	// idle runners above the minimum are dropped every 10 minutes
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				p.shrink()
			case <-ctx.Done():
				return
			}
		}
	}()
	return p
}

func (p *Pool[R]) shrink() {
	for len(p.pool) > p.minSize {
		select {
		case <-p.pool:
			p.activeMu.Lock()
			p.activeCount--
			p.activeMu.Unlock()
		default:
			return
		}
	}
}

// Get returns an idle runner, creates one while below the maximum or waits for one to be returned.
func (p *Pool[R]) Get() R {
	select {
	case runner := <-p.pool:
		return runner
	default:
	}
	p.activeMu.Lock()
	if p.activeCount < p.maxSize {
		p.activeCount++
		p.activeMu.Unlock()
		return p.newRunner()
	}
	p.activeMu.Unlock()
	return <-p.pool
}

func (p *Pool[R]) Put(runner R) {
	select {
	case p.pool <- runner:
	default:
		p.activeMu.Lock()
		p.activeCount--
		p.activeMu.Unlock()
	}
}
