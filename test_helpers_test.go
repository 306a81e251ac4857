package pim

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// trackingAllocator is an Allocator test double that counts allocations
// and can be told to refuse requests.
type trackingAllocator struct {
	mu     sync.Mutex
	live   map[*byte]int
	allocs int
	frees  int
	refuse bool
}

func newTrackingAllocator() *trackingAllocator {
	return &trackingAllocator{live: make(map[*byte]int)}
}

func (a *trackingAllocator) Alloc(size int) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.refuse {
		return nil, ErrOutOfMemory
	}
	if size == 0 {
		return []byte{}, nil
	}
	buf := make([]byte, size)
	a.live[&buf[0]] = size
	a.allocs++
	return buf, nil
}

func (a *trackingAllocator) Free(p []byte) error {
	if cap(p) == 0 {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	key := &p[:1][0]
	if _, ok := a.live[key]; !ok {
		return ErrDoubleFree
	}
	delete(a.live, key)
	a.frees++
	return nil
}

func (a *trackingAllocator) setRefuse(v bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.refuse = v
}

func (a *trackingAllocator) liveCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.live)
}

// newTestRuntime returns a runtime backed by a tracking allocator
func newTestRuntime(t testing.TB, policy StagePolicy) (*Runtime, *trackingAllocator) {
	t.Helper()
	alloc := newTrackingAllocator()
	return New(Config{Allocator: alloc, StagePolicy: policy}), alloc
}

// CreateOrFail creates an FP16 buffer of shape (n, c, h, w) and registers
// its destruction with t.Cleanup.
func CreateOrFail(t testing.TB, rt *Runtime, n, c, h, w int) *Buffer {
	t.Helper()
	bo, err := rt.CreateBo(w, h, c, n, FP16, MemHost, nil)
	require.NoError(t, err, "CreateBo(%d, %d, %d, %d)", n, c, h, w)
	t.Cleanup(func() {
		if !bo.destroyed {
			_ = rt.DestroyBo(bo)
		}
	})
	return bo
}

// CreateFilledOrFail creates a buffer and stores vals into it
func CreateFilledOrFail(t testing.TB, rt *Runtime, n, c, h, w int, vals ...float32) *Buffer {
	t.Helper()
	bo := CreateOrFail(t, rt, n, c, h, w)
	require.Len(t, vals, bo.Elements(), "value count for shape %s", bo.Shape)
	bo.Half().CopyFromFloat32(vals)
	return bo
}

// fillSentinel sets every element of bo to a recognisable value
func fillSentinel(bo *Buffer) {
	bo.Half().Fill(HalfFromFloat32(-7.5))
}

// hv rounds f to fp16 and back, giving the value an fp16 store would hold
func hv(f float32) float32 {
	return HalfFromFloat32(f).Float32()
}

// bits returns the raw fp16 bit patterns of bo
func bits(bo *Buffer) []uint16 {
	s := bo.Half()
	out := make([]uint16, s.Len())
	for i := range out {
		out[i] = s.Get(i).Bits()
	}
	return out
}
