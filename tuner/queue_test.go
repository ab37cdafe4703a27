package tuner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-tuner/algorithms/common"
)

func chunkAt(pos int64) common.SampleData {
	return common.SampleData{Samples: []float64{float64(pos)}, SampleRate: 8000, FramePosition: pos}
}

func TestFrameQueueDropsOldest(t *testing.T) {
	q := NewFrameQueue(2)
	assert.False(t, q.Push(chunkAt(0)))
	assert.False(t, q.Push(chunkAt(1)))
	assert.True(t, q.Push(chunkAt(2)))
	assert.Equal(t, 2, q.Len())
	assert.Equal(t, int64(1), q.Dropped())

	ctx := context.Background()
	for _, want := range []int64{1, 2} {
		got, err := q.Pop(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got.FramePosition)
	}
}

func TestFrameQueueClose(t *testing.T) {
	q := NewFrameQueue(4)
	q.Push(chunkAt(0))
	q.Close()
	assert.True(t, q.Push(chunkAt(1)), "pushing to a closed queue drops")

	got, err := q.Pop(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.FramePosition)
	_, err = q.Pop(context.Background())
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestFrameQueueWaits(t *testing.T) {
	q := NewFrameQueue(1)
	got := make(chan int64, 1)
	go func() {
		data, err := q.Pop(context.Background())
		if err == nil {
			got <- data.FramePosition
		}
	}()

	time.Sleep(10 * time.Millisecond)
	q.Push(chunkAt(42))
	select {
	case pos := <-got:
		assert.Equal(t, int64(42), pos)
	case <-time.After(5 * time.Second):
		t.Fatal("Pop did not wake up")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := q.Pop(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
