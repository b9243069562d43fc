package ring

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFIFO_PushTailPopHead_OrderPreserved(t *testing.T) {
	q := New(0)
	for i := 0; i < 5; i++ {
		q.PushTail(i)
	}
	for i := 0; i < 5; i++ {
		v, ok := q.PopHead()
		require.True(t, ok)
		require.Equal(t, i, v)
	}
	_, ok := q.PopHead()
	require.False(t, ok)
	require.Equal(t, 0, q.Size())
}

func TestFIFO_PushHeadPopTail_OrderPreserved(t *testing.T) {
	q := New(0)
	for i := 0; i < 5; i++ {
		q.PushHead(i)
	}
	// last pushed to head is now at the front; popping the tail yields
	// push order 0,1,2,3,4.
	for i := 0; i < 5; i++ {
		v, ok := q.PopTail()
		require.True(t, ok)
		require.Equal(t, i, v)
	}
}

func TestFIFO_PopOnEmpty_DoesNotBlock(t *testing.T) {
	q := New(0)
	v, ok := q.PopHead()
	require.False(t, ok)
	require.Nil(t, v)
	v, ok = q.PopTail()
	require.False(t, ok)
	require.Nil(t, v)
}

// TestFIFO_ConcurrentProducersSingleConsumer pushes from several concurrent
// producers, each tagged with (producer, seq); the single consumer must
// observe each producer's items in relative order, and the queue must
// drain to empty.
func TestFIFO_ConcurrentProducersSingleConsumer(t *testing.T) {
	const producers = 4
	const perProducer = 10000

	type tagged struct {
		producer, seq int
	}

	q := New(0)
	var wg sync.WaitGroup
	wg.Add(producers)
	for p := 0; p < producers; p++ {
		go func(p int) {
			defer wg.Done()
			for s := 0; s < perProducer; s++ {
				q.PushTail(tagged{producer: p, seq: s})
			}
		}(p)
	}
	wg.Wait()

	require.Equal(t, producers*perProducer, q.Size())

	next := make([]int, producers)
	received := 0
	for {
		v, ok := q.PopHead()
		if !ok {
			break
		}
		it := v.(tagged)
		require.Equal(t, next[it.producer], it.seq)
		next[it.producer]++
		received++
	}
	require.Equal(t, producers*perProducer, received)
	require.Equal(t, 0, q.Size())
}
