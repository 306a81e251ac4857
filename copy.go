package pim

import (
	"fmt"
	"math"
)

// MemcpyKind specifies the direction of a memory transfer.
// In the host emulation every direction is a plain host copy; the kind is
// accepted for compatibility and not checked against the buffers' MemType.
type MemcpyKind int

const (
	HostToHost     MemcpyKind = iota // Host to host transfer
	HostToDevice                     // Host to device transfer
	DeviceToHost                     // Device to host transfer
	DeviceToDevice                   // Device to device transfer
	HostToPIM                        // Host to PIM transfer
	PIMToHost                        // PIM to host transfer
	DeviceToPIM                      // Device to PIM transfer
	PIMToDevice                      // PIM to device transfer
)

// String returns the transfer direction name
func (k MemcpyKind) String() string {
	switch k {
	case HostToHost:
		return "HostToHost"
	case HostToDevice:
		return "HostToDevice"
	case DeviceToHost:
		return "DeviceToHost"
	case DeviceToDevice:
		return "DeviceToDevice"
	case HostToPIM:
		return "HostToPIM"
	case PIMToHost:
		return "PIMToHost"
	case DeviceToPIM:
		return "DeviceToPIM"
	case PIMToDevice:
		return "PIMToDevice"
	default:
		return "Unknown"
	}
}

// CopyMemory copies size bytes from src to dst.
func (rt *Runtime) CopyMemory(dst, src []byte, size int, kind MemcpyKind) error {
	if dst == nil || src == nil || size <= 0 {
		return NewCopyError("CopyMemory", "nil pointer or zero size")
	}
	if len(dst) < size || len(src) < size {
		return NewCopyError("CopyMemory",
			fmt.Sprintf("copy of %d bytes exceeds dst (%d) or src (%d)", size, len(dst), len(src)))
	}
	copy(dst[:size], src[:size])
	return nil
}

// CopyBo copies the whole of src into dst. Both buffers must hold memory
// and have the same byte size.
//
// TODO: check kind against dst.MemType and src.MemType once a backend with
// distinct memory spaces needs it.
func (rt *Runtime) CopyBo(dst, src *Buffer, kind MemcpyKind) error {
	if dst == nil || src == nil || dst.data == nil || src.data == nil || src.size == 0 {
		return NewCopyError("CopyBo", "buffer without data")
	}
	if src.size != dst.size {
		return NewCopyError("CopyBo", fmt.Sprintf("size mismatch: dst %d bytes, src %d bytes", dst.size, src.size))
	}
	rt.log.Debug("copy buffer", "kind", kind.String(), "from", src.MemType.String(), "to", dst.MemType.String(), "bytes", src.size)
	copy(dst.data, src.data)
	return nil
}

// Copy3D describes a rectangular copy of a WidthInBytes x Height x Depth
// region. Each side is given either as a Buffer (pitch and plane rows taken
// from its shape) or as a raw slice with explicit Pitch and Height. The
// Buffer wins when both are set.
type Copy3D struct {
	// Source
	SrcXInBytes int
	SrcY        int
	SrcZ        int
	SrcMemType  MemType
	SrcPtr      []byte
	SrcPitch    int // bytes per row
	SrcHeight   int // rows per plane
	SrcBo       *Buffer

	// Destination
	DstXInBytes int
	DstY        int
	DstZ        int
	DstMemType  MemType
	DstPtr      []byte
	DstPitch    int
	DstHeight   int
	DstBo       *Buffer

	// Region
	WidthInBytes int
	Height       int
	Depth        int
}

// rectSide is one resolved side of a rectangular copy
type rectSide struct {
	base      []byte
	pitch     int
	planeRows int
	origin    int // byte offset of the region's first byte
}

func resolveRectSide(name string, bo *Buffer, ptr []byte, pitch, height, x, y, z int) (rectSide, error) {
	var s rectSide
	switch {
	case bo != nil:
		s.base = bo.data
		s.pitch = bo.Shape.Pitch(bo.Precision)
		s.planeRows = bo.Shape.PlaneRows()
	case ptr != nil:
		s.base = ptr
		s.pitch = pitch
		s.planeRows = height
	default:
		return s, NewCopyError("CopyRect3D", name+": neither pointer nor buffer given")
	}
	if s.base == nil || s.pitch <= 0 || s.planeRows <= 0 {
		return s, NewCopyError("CopyRect3D", name+": nil base, zero pitch or zero height")
	}
	if x < 0 || y < 0 || z < 0 {
		return s, NewCopyError("CopyRect3D", name+": negative offset")
	}
	rows, ok := mulAdd(z, s.planeRows, y)
	if ok {
		s.origin, ok = mulAdd(rows, s.pitch, x)
	}
	if !ok {
		return s, NewCopyError("CopyRect3D", name+": offset overflows")
	}
	return s, nil
}

// mulAdd returns a*b + c for non-negative operands, or false on overflow.
func mulAdd(a, b, c int) (int, bool) {
	if a != 0 && b > (math.MaxInt-c)/a {
		return 0, false
	}
	return a*b + c, true
}

// end returns the byte offset one past the last byte of a depth x height x
// width region, or false if it overflows.
func (s rectSide) end(depth, height, width int) (int, bool) {
	rows, ok := mulAdd(depth-1, s.planeRows, height-1)
	if !ok {
		return 0, false
	}
	last, ok := mulAdd(rows, s.pitch, s.origin)
	if !ok || last > math.MaxInt-width {
		return 0, false
	}
	return last + width, true
}

// rowOffset returns the byte offset of row within plane, relative to the base
func (s rectSide) rowOffset(plane, row int) int {
	return s.origin + (plane*s.planeRows+row)*s.pitch
}

// CopyRect3D moves a WidthInBytes x Height x Depth cuboid between
// independently strided source and destination regions, row by row.
//
// The last byte touched on each side is checked against its backing slice
// before anything is written, so a malformed request leaves dst unchanged.
// Offsets and extents that overflow int are rejected the same way.
func (rt *Runtime) CopyRect3D(p *Copy3D) error {
	if p == nil {
		return NewCopyError("CopyRect3D", "nil request")
	}
	src, err := resolveRectSide("source", p.SrcBo, p.SrcPtr, p.SrcPitch, p.SrcHeight, p.SrcXInBytes, p.SrcY, p.SrcZ)
	if err != nil {
		return err
	}
	dst, err := resolveRectSide("destination", p.DstBo, p.DstPtr, p.DstPitch, p.DstHeight, p.DstXInBytes, p.DstY, p.DstZ)
	if err != nil {
		return err
	}
	if p.WidthInBytes < 0 || p.Height < 0 || p.Depth < 0 {
		return NewCopyError("CopyRect3D", "negative region extent")
	}
	if p.WidthInBytes == 0 || p.Height == 0 || p.Depth == 0 {
		return nil
	}

	srcEnd, ok := src.end(p.Depth, p.Height, p.WidthInBytes)
	if !ok {
		return NewCopyError("CopyRect3D", "source region overflows")
	}
	dstEnd, ok := dst.end(p.Depth, p.Height, p.WidthInBytes)
	if !ok {
		return NewCopyError("CopyRect3D", "destination region overflows")
	}
	if srcEnd > len(src.base) {
		return NewCopyError("CopyRect3D", fmt.Sprintf("region ends at byte %d, source holds %d", srcEnd, len(src.base)))
	}
	if dstEnd > len(dst.base) {
		return NewCopyError("CopyRect3D", fmt.Sprintf("region ends at byte %d, destination holds %d", dstEnd, len(dst.base)))
	}

	for d := 0; d < p.Depth; d++ {
		for h := 0; h < p.Height; h++ {
			so := src.rowOffset(d, h)
			do := dst.rowOffset(d, h)
			copy(dst.base[do:do+p.WidthInBytes], src.base[so:so+p.WidthInBytes])
		}
	}
	return nil
}
