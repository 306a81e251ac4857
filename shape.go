package pim

import (
	"fmt"
	"math"
)

// Precision identifies the element type stored in a buffer
type Precision int

const (
	FP16 Precision = iota // IEEE binary16
	INT8                  // signed 8-bit integer
)

// String returns the precision name
func (p Precision) String() string {
	switch p {
	case FP16:
		return "FP16"
	case INT8:
		return "INT8"
	default:
		return fmt.Sprintf("Precision(%d)", int(p))
	}
}

// ElementSize returns the size in bytes of one element of precision p.
// FP16 is two bytes; INT8 and any unknown precision are one byte.
func ElementSize(p Precision) int {
	switch p {
	case FP16:
		return 2
	default:
		return 1
	}
}

// Shape describes a tensor as four extents in the fixed (N, C, H, W) order.
// W is the fastest-varying axis in memory. Padded marks an allocated
// ("real") shape as opposed to the logical one.
type Shape struct {
	W, H, C, N uint32
	Padded     bool
}

// checkExtents rejects extents that are negative, do not fit a Shape axis,
// or whose byte size overflows int.
func checkExtents(op string, n, c, h, w int) error {
	bytes, ok := 2, true // widest element
	for _, v := range [...]int{n, c, h, w} {
		if v < 0 || uint64(v) > math.MaxUint32 {
			ok = false
			break
		}
		if bytes, ok = mulAdd(bytes, v, 0); !ok {
			break
		}
	}
	if !ok {
		return NewAllocError(op, fmt.Sprintf("extent out of range (n=%d, c=%d, h=%d, w=%d)", n, c, h, w), nil)
	}
	return nil
}

// NewShape builds a logical shape from (n, c, h, w). Callers validate the
// extents with checkExtents.
func NewShape(n, c, h, w int) Shape {
	return Shape{W: uint32(w), H: uint32(h), C: uint32(c), N: uint32(n)}
}

// Elements returns the number of elements covered by the shape
func (s Shape) Elements() int {
	return int(s.N) * int(s.C) * int(s.H) * int(s.W)
}

// Bytes returns the byte size of the shape stored at precision p
func (s Shape) Bytes(p Precision) int {
	return s.Elements() * ElementSize(p)
}

// Strides returns the element strides of the n, c, h and w axes
func (s Shape) Strides() (n, c, h, w int) {
	w = 1
	h = int(s.W)
	c = h * int(s.H)
	n = c * int(s.C)
	return n, c, h, w
}

// Offset returns the flat element index of (n, c, h, w)
func (s Shape) Offset(n, c, h, w int) int {
	sn, sc, sh, _ := s.Strides()
	return n*sn + c*sc + h*sh + w
}

// Pitch returns the byte length of one row (the W axis) at precision p
func (s Shape) Pitch(p Precision) int {
	return int(s.W) * ElementSize(p)
}

// PlaneRows returns the number of rows in one plane (the H axis)
func (s Shape) PlaneRows() int {
	return int(s.H)
}

// SameExtents reports whether s and o have identical extents, ignoring Padded
func (s Shape) SameExtents(o Shape) bool {
	return s.W == o.W && s.H == o.H && s.C == o.C && s.N == o.N
}

// String formats the shape as (n, c, h, w)
func (s Shape) String() string {
	return fmt.Sprintf("(n=%d, c=%d, h=%d, w=%d)", s.N, s.C, s.H, s.W)
}
