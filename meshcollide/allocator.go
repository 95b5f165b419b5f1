package meshcollide

import (
	"sync"
	"sync/atomic"
)

// Allocator supplies query descriptors. Hosts can install an arena or a counting
// allocator with SetAllocator before any query runs.
type Allocator interface {
	Alloc() *Descriptor
	Free(d *Descriptor)
}

// PoolAllocator recycles descriptors through a sync.Pool
type PoolAllocator struct {
	pool sync.Pool
}

func NewPoolAllocator() *PoolAllocator {
	return &PoolAllocator{
		pool: sync.Pool{
			New: func() interface{} {
				return &Descriptor{}
			},
		},
	}
}

func (a *PoolAllocator) Alloc() *Descriptor {
	return a.pool.Get().(*Descriptor)
}

func (a *PoolAllocator) Free(d *Descriptor) {
	a.pool.Put(d)
}

type allocatorHolder struct {
	Allocator
}

var allocator atomic.Pointer[allocatorHolder]

func init() {
	allocator.Store(&allocatorHolder{NewPoolAllocator()})
}

// SetAllocator replaces the process wide allocator. A nil allocator restores the pool.
func SetAllocator(a Allocator) {
	if a == nil {
		a = NewPoolAllocator()
	}
	allocator.Store(&allocatorHolder{a})
}

// Acquire returns a reset descriptor from the current allocator
func Acquire() *Descriptor {
	d := allocator.Load().Alloc()
	d.Reset()
	return d
}

// Release hands d back to the current allocator. d must not be used afterwards.
func Release(d *Descriptor) {
	if d == nil {
		return
	}
	allocator.Load().Free(d)
}
