package pim

import (
	"fmt"
	"sync"
)

// MemType tags where a buffer nominally lives. The host emulation keeps all
// memory on the host; the tag is informational.
type MemType int

const (
	MemHost   MemType = iota // Host memory
	MemDevice                // Device (GPU) memory
	MemPIM                   // PIM-resident memory
)

// String returns the memory type name
func (m MemType) String() string {
	switch m {
	case MemHost:
		return "Host"
	case MemDevice:
		return "Device"
	case MemPIM:
		return "PIM"
	default:
		return "Unknown"
	}
}

// Allocator supplies and reclaims raw memory for buffers.
// Implementations must be safe for concurrent use.
type Allocator interface {
	// Alloc returns a slice of exactly size bytes or an error if the
	// request cannot be satisfied.
	Alloc(size int) ([]byte, error)
	// Free releases memory previously returned by Alloc.
	Free(p []byte) error
}

// MemoryPool is the default Allocator. It tracks live allocations, keeps a
// free list of released blocks for reuse and refuses requests that would
// push live memory past its limit.
type MemoryPool struct {
	mu         sync.Mutex
	allocated  map[*byte]*allocation
	freeList   []*allocation
	limit      int64
	totalAlloc int64
	peakAlloc  int64
}

type allocation struct {
	buf  []byte
	used bool
}

// NewMemoryPool creates a pool that holds at most limit bytes of live memory.
func NewMemoryPool(limit int64) *MemoryPool {
	return &MemoryPool{
		allocated: make(map[*byte]*allocation),
		limit:     limit,
	}
}

// Alloc allocates size bytes from the pool. Reused blocks are not cleared.
func (mp *MemoryPool) Alloc(size int) ([]byte, error) {
	if size < 0 {
		return nil, NewAllocError("Alloc", fmt.Sprintf("negative size %d", size), nil)
	}
	if size == 0 {
		return []byte{}, nil
	}

	mp.mu.Lock()
	defer mp.mu.Unlock()

	// Round up to alignment
	alignedSize := (size + MemoryAlignment - 1) &^ (MemoryAlignment - 1)

	// Try to reuse from free list
	for i, alloc := range mp.freeList {
		if len(alloc.buf) >= alignedSize {
			if mp.totalAlloc+int64(len(alloc.buf)) > mp.limit {
				break
			}
			mp.freeList = append(mp.freeList[:i], mp.freeList[i+1:]...)
			alloc.used = true
			mp.track(len(alloc.buf))
			return alloc.buf[:size:size], nil
		}
	}

	if mp.totalAlloc+int64(alignedSize) > mp.limit {
		return nil, ErrOutOfMemory
	}

	buf := make([]byte, alignedSize)
	alloc := &allocation{buf: buf, used: true}
	mp.allocated[&buf[0]] = alloc
	mp.track(alignedSize)

	return buf[:size:size], nil
}

func (mp *MemoryPool) track(n int) {
	mp.totalAlloc += int64(n)
	if mp.totalAlloc > mp.peakAlloc {
		mp.peakAlloc = mp.totalAlloc
	}
}

// Free returns memory to the pool. Freeing an empty slice is a no-op.
func (mp *MemoryPool) Free(p []byte) error {
	if cap(p) == 0 {
		return nil
	}

	mp.mu.Lock()
	defer mp.mu.Unlock()

	alloc, ok := mp.allocated[&p[:1][0]]
	if !ok {
		return NewAllocError("Free", "pointer not found in allocation pool", nil)
	}
	if !alloc.used {
		return ErrDoubleFree
	}

	alloc.used = false
	mp.totalAlloc -= int64(len(alloc.buf))
	if len(mp.freeList) < FreeListThreshold {
		mp.freeList = append(mp.freeList, alloc)
	} else {
		delete(mp.allocated, &alloc.buf[0])
	}
	return nil
}

// Stats returns live and peak bytes held by the pool
func (mp *MemoryPool) Stats() (allocated, peak int64) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return mp.totalAlloc, mp.peakAlloc
}

// ErrDoubleFree indicates a block was released twice
var ErrDoubleFree = NewAllocError("Free", "double free detected", nil)
