package field

import "sync"

// Pool recycles per-sample work buffers of a fixed length. The solver
// draws its transient per-step arrays from it. Buffers come back dirty;
// callers overwrite them in full.
type Pool[T float64 | complex128] struct {
	pool sync.Pool
	size int
}

func NewPool[T float64 | complex128](size int) *Pool[T] {
	return &Pool[T]{
		size: size,
		pool: sync.Pool{
			New: func() interface{} {
				buf := make([]T, size)
				return &buf
			},
		},
	}
}

func (p *Pool[T]) Get() []T {
	return *p.pool.Get().(*[]T)
}

func (p *Pool[T]) Put(buf []T) {
	if len(buf) != p.size {
		return
	}
	p.pool.Put(&buf)
}
