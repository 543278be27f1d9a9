package script

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type countingRunner struct {
	id int
}

func TestPoolReusesRunners(t *testing.T) {
	// setup
	created := 0
	var mu sync.Mutex
	pool := NewPool(t.Context(), func() *countingRunner {
		mu.Lock()
		defer mu.Unlock()
		created++
		return &countingRunner{id: created}
	}, 2, 1)

	// when
	first := pool.Get()
	second := pool.Get()
	pool.Put(first)
	third := pool.Get()

	// then
	assert.Equal(t, 2, created)
	assert.NotSame(t, first, second)
	assert.Same(t, first, third)
}

func TestPoolBlocksAtMaximum(t *testing.T) {
	// setup
	pool := NewPool(t.Context(), func() *countingRunner { return &countingRunner{} }, 1, 1)
	runner := pool.Get()

	// when
	got := make(chan *countingRunner)
	go func() {
		got <- pool.Get()
	}()
	pool.Put(runner)

	// then
	assert.Same(t, runner, <-got)
}

func TestPoolShrinksToMinimum(t *testing.T) {
	// setup
	pool := NewPool(t.Context(), func() *countingRunner { return &countingRunner{} }, 3, 1)
	runners := []*countingRunner{pool.Get(), pool.Get(), pool.Get()}
	for _, r := range runners {
		pool.Put(r)
	}

	// when
	pool.shrink()

	// then
	assert.Len(t, pool.pool, 1)
	assert.Equal(t, 1, pool.activeCount)
}
