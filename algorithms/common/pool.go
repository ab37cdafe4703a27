package common

import (
	"sync"
	"sync/atomic"
)

// Pool recycles fixed-size slices keyed by their length. At most maxPerSize
// idle slices are kept per length; a released slice arriving at a full
// bucket is dropped for the garbage collector.
//
// A nil *Pool is valid and allocates a fresh slice on every Acquire
type Pool[T any] struct {
	mu         sync.Mutex
	maxPerSize int
	idle       map[int][][]T

	allocated atomic.Int64
	reused    atomic.Int64
	discarded atomic.Int64
}

// PoolStats reports pool activity counters
type PoolStats struct {
	Allocated int64 `json:"allocated"` // slices created because no idle slice was available
	Reused    int64 `json:"reused"`    // acquisitions served from the idle lists
	Discarded int64 `json:"discarded"` // releases dropped because the bucket was full
}

// NewPool creates a pool keeping up to maxPerSize idle slices per length
func NewPool[T any](maxPerSize int) *Pool[T] {
	if maxPerSize < 0 {
		maxPerSize = 0
	}
	return &Pool[T]{
		maxPerSize: maxPerSize,
		idle:       make(map[int][][]T),
	}
}

// Acquire returns a handle to a zeroed slice of the given length holding one
// reference
func (p *Pool[T]) Acquire(size int) *Handle[T] {
	h := &Handle[T]{pool: p}
	h.refs.Store(1)

	if p != nil {
		p.mu.Lock()
		bucket := p.idle[size]
		if n := len(bucket); n > 0 {
			h.data = bucket[n-1]
			bucket[n-1] = nil
			p.idle[size] = bucket[:n-1]
		}
		p.mu.Unlock()
	}

	if h.data == nil {
		h.data = make([]T, size)
		if p != nil {
			p.allocated.Add(1)
		}
	} else {
		clear(h.data)
		p.reused.Add(1)
	}
	return h
}

// Idle returns the number of idle slices of the given length
func (p *Pool[T]) Idle(size int) int {
	if p == nil {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.idle[size])
}

// Stats returns a copy of the activity counters
func (p *Pool[T]) Stats() PoolStats {
	if p == nil {
		return PoolStats{}
	}
	return PoolStats{
		Allocated: p.allocated.Load(),
		Reused:    p.reused.Load(),
		Discarded: p.discarded.Load(),
	}
}

func (p *Pool[T]) put(data []T) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	size := len(data)
	if len(p.idle[size]) >= p.maxPerSize {
		p.discarded.Add(1)
		return
	}
	p.idle[size] = append(p.idle[size], data)
}

// Handle owns a pooled slice. The slice returns to its pool when the last
// reference is released and must not be used afterwards
type Handle[T any] struct {
	pool *Pool[T]
	data []T
	refs atomic.Int32
}

// Data returns the underlying slice
func (h *Handle[T]) Data() []T {
	return h.data
}

// Len returns the slice length
func (h *Handle[T]) Len() int {
	return len(h.data)
}

// Refs returns the current reference count
func (h *Handle[T]) Refs() int {
	return int(h.refs.Load())
}

// Retain adds a reference and returns h
func (h *Handle[T]) Retain() *Handle[T] {
	if h.refs.Add(1) <= 1 {
		panic("common: retain of released handle")
	}
	return h
}

// Release drops a reference. Releasing more often than acquired and
// retained panics
func (h *Handle[T]) Release() {
	switch n := h.refs.Add(-1); {
	case n == 0:
		data := h.data
		h.data = nil
		h.pool.put(data)
	case n < 0:
		panic("common: handle released too often")
	}
}
