package bus

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueFIFO(t *testing.T) {
	q := NewQueue[int](8)
	for i := 0; i < 8; i++ {
		require.NoError(t, q.Push(i))
	}
	for i := 0; i < 8; i++ {
		v, ok := q.Pop()
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
	assert.True(t, q.Empty())
}

func TestQueueTryPushFull(t *testing.T) {
	q := NewQueue[string](1)
	require.NoError(t, q.TryPush("a"))
	assert.ErrorIs(t, q.TryPush("b"), ErrQueueFull)

	v, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, "a", v)
	require.NoError(t, q.TryPush("b"))
}

func TestQueueTryPopEmpty(t *testing.T) {
	q := NewQueue[int](4)
	_, ok := q.TryPop()
	assert.False(t, ok)
}

func TestQueuePushBlocksUntilSpace(t *testing.T) {
	q := NewQueue[int](1)
	require.NoError(t, q.Push(1))

	done := make(chan struct{})
	go func() {
		_ = q.Push(2)
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("push returned while queue was full")
	case <-time.After(20 * time.Millisecond):
	}

	v, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, 1, v)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("push did not complete after space opened")
	}
}

func TestQueueCloseDrains(t *testing.T) {
	q := NewQueue[int](4)
	require.NoError(t, q.Push(1))
	require.NoError(t, q.Push(2))
	q.Close()

	assert.ErrorIs(t, q.Push(3), ErrQueueClosed)
	assert.ErrorIs(t, q.TryPush(3), ErrQueueClosed)

	v, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, 1, v)
	v, ok = q.Pop()
	require.True(t, ok)
	assert.Equal(t, 2, v)

	_, ok = q.Pop()
	assert.False(t, ok)
}

func TestQueueCloseIdempotent(t *testing.T) {
	q := NewQueue[int](1)
	q.Close()
	q.Close()
	_, ok := q.Pop()
	assert.False(t, ok)
}

func TestQueueConcurrentProducers(t *testing.T) {
	const producers = 4
	const perProducer = 250

	q := NewQueue[int](16)
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				assert.NoError(t, q.Push(i))
			}
		}()
	}
	go func() {
		wg.Wait()
		q.Close()
	}()

	total := 0
	for {
		_, ok := q.Pop()
		if !ok {
			break
		}
		total++
	}
	assert.Equal(t, producers*perProducer, total)
}
