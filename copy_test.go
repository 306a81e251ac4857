package pim

import (
	"bytes"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyMemory(t *testing.T) {
	rt, _ := newTestRuntime(t, FailFast)
	src := []byte{1, 2, 3, 4, 5}
	dst := make([]byte, 5)

	require.NoError(t, rt.CopyMemory(dst, src, 3, HostToDevice))
	assert.Equal(t, []byte{1, 2, 3, 0, 0}, dst)

	tests := []struct {
		name     string
		dst, src []byte
		size     int
	}{
		{"nil dst", nil, src, 1},
		{"nil src", dst, nil, 1},
		{"zero size", dst, src, 0},
		{"exceeds dst", dst[:2], src, 3},
		{"exceeds src", dst, src[:2], 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := rt.CopyMemory(tt.dst, tt.src, tt.size, HostToHost)
			assert.Equal(t, CopyError, StatusOf(err))
		})
	}
}

// Round trip host -> X -> host preserves bytes for every transfer kind.
func TestCopyBoRoundTrip(t *testing.T) {
	rt, _ := newTestRuntime(t, FailFast)
	rng := rand.New(rand.NewSource(1))

	pairs := []struct {
		mid      MemType
		to, from MemcpyKind
	}{
		{MemHost, HostToHost, HostToHost},
		{MemDevice, HostToDevice, DeviceToHost},
		{MemPIM, HostToPIM, PIMToHost},
	}
	for _, p := range pairs {
		t.Run(p.to.String(), func(t *testing.T) {
			in := CreateOrFail(t, rt, 1, 1, 1, inLength)
			vals := make([]float32, inLength)
			for i := range vals {
				vals[i] = rng.Float32() * 0.5
			}
			in.Half().CopyFromFloat32(vals)

			mid, err := rt.CreateBo(inLength, 1, 1, 1, FP16, p.mid, nil)
			require.NoError(t, err)
			defer rt.DestroyBo(mid)
			out := CreateOrFail(t, rt, 1, 1, 1, inLength)

			require.NoError(t, rt.CopyBo(mid, in, p.to))
			require.NoError(t, rt.CopyBo(out, mid, p.from))
			assert.True(t, bytes.Equal(in.Data(), out.Data()))
		})
	}
}

func TestCopyBoHostDevicePIMChain(t *testing.T) {
	rt, _ := newTestRuntime(t, FailFast)
	in := CreateFilledOrFail(t, rt, 1, 1, 1, 4, 1, 2, 3, 4)
	dev := CreateOrFail(t, rt, 1, 1, 1, 4)
	pim := CreateOrFail(t, rt, 1, 1, 1, 4)
	out := CreateOrFail(t, rt, 1, 1, 1, 4)

	require.NoError(t, rt.CopyBo(dev, in, HostToDevice))
	require.NoError(t, rt.CopyBo(pim, dev, DeviceToPIM))
	require.NoError(t, rt.CopyBo(dev, pim, PIMToDevice))
	require.NoError(t, rt.CopyBo(out, dev, DeviceToHost))
	assert.Equal(t, in.Data(), out.Data())
}

func TestCopyBoErrors(t *testing.T) {
	rt, _ := newTestRuntime(t, FailFast)
	a := CreateOrFail(t, rt, 1, 1, 1, 8)
	b := CreateOrFail(t, rt, 1, 1, 1, 4)
	freed := CreateOrFail(t, rt, 1, 1, 1, 8)
	require.NoError(t, rt.FreeBo(freed))
	empty := CreateOrFail(t, rt, 0, 1, 1, 8)

	assert.Equal(t, CopyError, StatusOf(rt.CopyBo(a, b, HostToHost)), "size mismatch")
	assert.Equal(t, CopyError, StatusOf(rt.CopyBo(a, freed, HostToHost)), "src without data")
	assert.Equal(t, CopyError, StatusOf(rt.CopyBo(freed, a, HostToHost)), "dst without data")
	assert.Equal(t, CopyError, StatusOf(rt.CopyBo(empty, empty, HostToHost)), "zero size")
	assert.Equal(t, CopyError, StatusOf(rt.CopyBo(nil, a, HostToHost)), "nil dst")
}

// ones returns n fp16 ones
func ones(n int) []float32 {
	v := make([]float32, n)
	for i := range v {
		v[i] = 1
	}
	return v
}

// Copy a 2x2x2 cube between a 4x4x3 host array and a 4x4x3 PIM buffer and back.
func TestCopyRect3DCube(t *testing.T) {
	rt, _ := newTestRuntime(t, FailFast)

	hostVals := ones(48)
	for _, i := range []int{21, 22, 25, 26, 37, 38, 41, 42} {
		hostVals[i] = 42
	}
	host := make([]byte, 96)
	NewHalfSlice(host).CopyFromFloat32(hostVals)

	wantDevice := ones(48)
	for _, i := range []int{4, 5, 8, 9, 20, 21, 24, 25} {
		wantDevice[i] = 42
	}

	device := CreateFilledOrFail(t, rt, 1, 3, 4, 4, ones(48)...)

	h2d := &Copy3D{
		SrcXInBytes: 2, // one fp16 element
		SrcY:        1,
		SrcZ:        1,
		SrcMemType:  MemHost,
		SrcPtr:      host,
		SrcPitch:    8, // four fp16 elements per row
		SrcHeight:   4,

		DstY:       1,
		DstMemType: MemPIM,
		DstBo:      device,

		WidthInBytes: 4,
		Height:       2,
		Depth:        2,
	}
	require.NoError(t, rt.CopyRect3D(h2d))
	assert.Equal(t, wantDevice, device.Half().Float32s())

	hostCheck := make([]byte, 96)
	NewHalfSlice(hostCheck).CopyFromFloat32(ones(48))

	d2h := &Copy3D{
		SrcY:       1,
		SrcMemType: MemPIM,
		SrcBo:      device,

		DstXInBytes: 2,
		DstY:        1,
		DstZ:        1,
		DstMemType:  MemHost,
		DstPtr:      hostCheck,
		DstPitch:    8,
		DstHeight:   4,

		WidthInBytes: 4,
		Height:       2,
		Depth:        2,
	}
	require.NoError(t, rt.CopyRect3D(d2h))
	assert.Equal(t, host, hostCheck)
}

// Equal pitch and zero offsets reduce to a flat copy of the bounding box.
func TestCopyRect3DFlatEquivalence(t *testing.T) {
	rt, _ := newTestRuntime(t, FailFast)
	src := make([]byte, 3*5*12)
	for i := range src {
		src[i] = byte(i)
	}
	dst := make([]byte, len(src))

	err := rt.CopyRect3D(&Copy3D{
		SrcPtr: src, SrcPitch: 12, SrcHeight: 5,
		DstPtr: dst, DstPitch: 12, DstHeight: 5,
		WidthInBytes: 12, Height: 5, Depth: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, src, dst)
}

// Independently varied geometry moves exactly the requested cuboid.
func TestCopyRect3DSentinel(t *testing.T) {
	rt, _ := newTestRuntime(t, FailFast)
	const sentinel = 0xEE

	const (
		sPitch, sRows, sPlanes = 10, 6, 3
		dPitch, dRows, dPlanes = 7, 4, 4
		width, height, depth   = 3, 2, 2
		sx, sy, sz             = 4, 3, 1
		dx, dy, dz             = 2, 1, 2
	)
	src := make([]byte, sPitch*sRows*sPlanes)
	for i := range src {
		src[i] = byte(i % 251)
	}
	dst := bytes.Repeat([]byte{sentinel}, dPitch*dRows*dPlanes)

	err := rt.CopyRect3D(&Copy3D{
		SrcXInBytes: sx, SrcY: sy, SrcZ: sz,
		SrcPtr: src, SrcPitch: sPitch, SrcHeight: sRows,
		DstXInBytes: dx, DstY: dy, DstZ: dz,
		DstPtr: dst, DstPitch: dPitch, DstHeight: dRows,
		WidthInBytes: width, Height: height, Depth: depth,
	})
	require.NoError(t, err)

	for z := 0; z < dPlanes; z++ {
		for y := 0; y < dRows; y++ {
			for x := 0; x < dPitch; x++ {
				got := dst[(z*dRows+y)*dPitch+x]
				inside := z >= dz && z < dz+depth && y >= dy && y < dy+height && x >= dx && x < dx+width
				if !inside {
					assert.Equal(t, byte(sentinel), got, "outside byte (%d,%d,%d) changed", x, y, z)
					continue
				}
				want := src[((z-dz+sz)*sRows+(y-dy+sy))*sPitch+(x-dx+sx)]
				assert.Equal(t, want, got, "byte (%d,%d,%d)", x, y, z)
			}
		}
	}
}

// Buffer sides derive pitch and plane rows from the buffer shape.
func TestCopyRect3DBufferGeometry(t *testing.T) {
	rt, _ := newTestRuntime(t, FailFast)
	src := CreateOrFail(t, rt, 1, 2, 3, 5) // pitch 10 bytes, 3 rows per plane
	for i := 0; i < src.Elements(); i++ {
		src.Half().SetFloat32(i, float32(i))
	}
	dst := CreateOrFail(t, rt, 1, 2, 3, 5)
	fillSentinel(dst)

	// Copy elements [1,3) of row 2 in plane 1.
	err := rt.CopyRect3D(&Copy3D{
		SrcXInBytes: 2, SrcY: 2, SrcZ: 1, SrcBo: src,
		DstXInBytes: 2, DstY: 2, DstZ: 1, DstBo: dst,
		WidthInBytes: 4, Height: 1, Depth: 1,
	})
	require.NoError(t, err)

	got := dst.Half()
	for i := 0; i < dst.Elements(); i++ {
		if i == src.Shape.Offset(0, 1, 2, 1) || i == src.Shape.Offset(0, 1, 2, 2) {
			assert.Equal(t, float32(i), got.GetFloat32(i))
		} else {
			assert.Equal(t, float32(-7.5), got.GetFloat32(i), "index %d", i)
		}
	}
}

func TestCopyRect3DErrors(t *testing.T) {
	rt, _ := newTestRuntime(t, FailFast)
	buf := make([]byte, 64)
	freed := CreateOrFail(t, rt, 1, 1, 4, 4)
	require.NoError(t, rt.FreeBo(freed))

	valid := func() *Copy3D {
		return &Copy3D{
			SrcPtr: buf, SrcPitch: 8, SrcHeight: 4,
			DstPtr: make([]byte, 64), DstPitch: 8, DstHeight: 4,
			WidthInBytes: 8, Height: 4, Depth: 2,
		}
	}
	require.NoError(t, rt.CopyRect3D(valid()))

	tests := []struct {
		name   string
		mutate func(p *Copy3D)
	}{
		{"no source", func(p *Copy3D) { p.SrcPtr = nil }},
		{"no destination", func(p *Copy3D) { p.DstPtr = nil }},
		{"zero source pitch", func(p *Copy3D) { p.SrcPitch = 0 }},
		{"zero destination height", func(p *Copy3D) { p.DstHeight = 0 }},
		{"source buffer without data", func(p *Copy3D) { p.SrcBo = freed }},
		{"negative offset", func(p *Copy3D) { p.DstY = -1 }},
		{"source overrun", func(p *Copy3D) { p.SrcZ = 1 }},
		{"destination overrun", func(p *Copy3D) { p.DstXInBytes = 1 }},
		{"depth overrun", func(p *Copy3D) { p.Depth = 3 }},
		{"source plane offset overflow", func(p *Copy3D) { p.SrcZ = math.MaxInt / 2 }},
		{"destination row offset overflow", func(p *Copy3D) { p.DstY = math.MaxInt }},
		{"width overflow", func(p *Copy3D) { p.WidthInBytes = math.MaxInt }},
		{"depth overflow", func(p *Copy3D) { p.Depth = math.MaxInt }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid()
			tt.mutate(p)
			before := append([]byte(nil), p.DstPtr...)
			err := rt.CopyRect3D(p)
			assert.Equal(t, CopyError, StatusOf(err))
			assert.Equal(t, before, p.DstPtr, "destination must be unchanged")
		})
	}

	assert.Equal(t, CopyError, StatusOf(rt.CopyRect3D(nil)))
}

// Offsets that wrap around int must not reach the copy loop.
func TestCopyRect3DOffsetOverflow(t *testing.T) {
	rt, _ := newTestRuntime(t, FailFast)
	dst := make([]byte, 96)
	p := &Copy3D{
		SrcPtr: make([]byte, 96), SrcPitch: 3, SrcHeight: 4, SrcZ: math.MaxInt/4 + 1,
		DstPtr: dst, DstPitch: 3, DstHeight: 4,
		WidthInBytes: 2, Height: 1, Depth: 1,
	}
	var err error
	require.NotPanics(t, func() { err = rt.CopyRect3D(p) })
	assert.Equal(t, CopyError, StatusOf(err))
	assert.Equal(t, make([]byte, 96), dst)
}
